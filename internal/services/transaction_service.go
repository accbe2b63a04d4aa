// Package services orchestrates writes across the transaction store and
// the spreadsheet-sync message bus.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finflow/internal/amqp"
	"finflow/internal/core"
	"finflow/internal/store"
)

// TransactionService is the single write path for transactions. Every
// entry surface (web form, slash command, shorthand message) funnels
// through Create so normalization and sign handling happen exactly once.
type TransactionService struct {
	store      store.TransactionStore
	amqpClient *amqp.Client
	now        func() time.Time
}

// NewTransactionService wires the service. amqpClient may be nil; sync
// publishing is then skipped, which keeps local and test setups light.
func NewTransactionService(s store.TransactionStore, amqpClient *amqp.Client) *TransactionService {
	return &TransactionService{
		store:      s,
		amqpClient: amqpClient,
		now:        time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *TransactionService) SetClock(now func() time.Time) {
	s.now = now
}

// Create normalizes the intent, persists the result, and queues a sheet
// sync. A failed publish never fails the request: the transaction is
// already safe in the store and the worker's catch-up pass will find it.
func (s *TransactionService) Create(ctx context.Context, ownerID string, intent core.AddIntent, occurredAt time.Time) (core.Transaction, error) {
	tx, err := core.Normalize(ownerID, intent, occurredAt, s.now())
	if err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.Append(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	tx.ID = id

	s.publish(ctx, amqp.OpUpsert, id)
	return tx, nil
}

// Update applies a partial edit on behalf of ownerID. When kind or
// amount change, the caller supplies the magnitude and this method
// re-derives the signed value so no read site ever branches on kind.
func (s *TransactionService) Update(ctx context.Context, ownerID, id string, update store.TransactionUpdate) error {
	if update.Empty() {
		return nil
	}
	if err := s.store.UpdateByID(ctx, ownerID, id, update); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.OpUpsert, id)
	return nil
}

// Delete removes a transaction on behalf of ownerID.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteByID(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.OpDelete, id)
	return nil
}

func (s *TransactionService) publish(ctx context.Context, op amqp.Op, id string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishSync(ctx, op, id); err != nil {
		// Non-fatal: the periodic worker pass re-syncs pending rows.
		slog.ErrorContext(ctx, "Failed to publish sync message", "op", op, "id", id, "error", err)
	}
}
