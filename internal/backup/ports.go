// Package backup defines the outbound port for off-site expense
// backups plus row conversion shared by its adapters.
package backup

import (
	"context"

	"pocketpal/internal/core"
)

// Exporter appends a committed expense to an external backup target.
type Exporter interface {
	// Append writes one expense row and returns an adapter-specific
	// reference for it (row range, synthetic id, ...).
	Append(ctx context.Context, e core.Expense) (ref string, err error)
}

// Row flattens an expense into the column order every adapter writes:
// date, description, amount (decimal units), category, user id, shared flag.
func Row(e core.Expense) []any {
	return []any{
		e.Date.String(),
		e.Description,
		e.Amount.Units(),
		e.Category,
		e.UserID,
		e.IsShared,
	}
}
