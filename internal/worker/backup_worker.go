// Package worker consumes expense-recorded events and appends the
// expenses to the off-site backup sheet.
package worker

import (
	"context"
	"errors"
	"fmt"

	"pocketpal/internal/amqp"
	"pocketpal/internal/backup"
	"pocketpal/internal/core"
	"pocketpal/internal/log"
)

// ExpenseReader is the slice of the store the worker needs.
type ExpenseReader interface {
	GetExpense(ctx context.Context, id string) (*core.Expense, error)
}

// BackupWorker resolves event ids against storage and exports the
// expense rows. It is driven by the AMQP consumer loop.
type BackupWorker struct {
	store    ExpenseReader
	exporter backup.Exporter
	logger   *log.Logger
}

func NewBackupWorker(store ExpenseReader, exporter backup.Exporter, logger *log.Logger) *BackupWorker {
	return &BackupWorker{
		store:    store,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleExpenseRecorded processes one event. A missing expense is
// dropped without error: the row was deleted between publish and
// consume, and requeueing would loop forever. Exporter failures are
// returned so the message gets redelivered.
func (w *BackupWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	e, err := w.store.GetExpense(ctx, msg.ExpenseID)
	if errors.Is(err, core.ErrExpenseNotFound) {
		w.logger.WarnContext(ctx, "Expense gone before backup, dropping event",
			log.FieldExpenseID, msg.ExpenseID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense %s: %w", msg.ExpenseID, err)
	}

	ref, err := w.exporter.Append(ctx, *e)
	if err != nil {
		return fmt.Errorf("export expense %s: %w", msg.ExpenseID, err)
	}

	w.logger.InfoContext(ctx, "Expense backed up",
		log.FieldExpenseID, msg.ExpenseID,
		log.FieldUserID, msg.UserID,
		"backup_ref", ref)
	return nil
}
