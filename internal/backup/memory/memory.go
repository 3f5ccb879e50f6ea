// Package memory provides an in-memory Exporter for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"pocketpal/internal/backup"
	"pocketpal/internal/core"
)

type Client struct {
	mu   sync.Mutex
	rows [][]any

	// FailNext makes the next Append call return an error. Tests use it
	// to exercise retry paths.
	FailNext bool
}

var _ backup.Exporter = (*Client)(nil)

func New() *Client {
	return &Client{}
}

func (c *Client) Append(_ context.Context, e core.Expense) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailNext {
		c.FailNext = false
		return "", fmt.Errorf("append failed")
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	c.rows = append(c.rows, backup.Row(e))
	return fmt.Sprintf("mem:%d", len(c.rows)), nil
}

// Rows returns a copy of the appended rows.
func (c *Client) Rows() [][]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([][]any, len(c.rows))
	copy(out, c.rows)
	return out
}
