// Package worker runs the sheet-export side of the sync pipeline. It
// consumes sync messages from the queue and, on a timer, sweeps the
// database for rows a lost message left behind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finflow/internal/amqp"
	"finflow/internal/core"
	"finflow/internal/sheets"
	"finflow/internal/store"
)

// SyncStore is the slice of the repository the worker needs.
type SyncStore interface {
	GetByID(ctx context.Context, id string) (core.Transaction, error)
	ListPendingSync(ctx context.Context, limit int) ([]core.Transaction, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

type Exporter interface {
	sheets.RowWriter
	sheets.RowDeleter
}

type SyncWorker struct {
	store     SyncStore
	exporter  Exporter
	batchSize int
}

func NewSyncWorker(st SyncStore, exporter Exporter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &SyncWorker{store: st, exporter: exporter, batchSize: batchSize}
}

// HandleSyncMessage processes one queued message. The message carries
// only an id; the current row is always re-read from the database.
func (w *SyncWorker) HandleSyncMessage(msg *amqp.SyncMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch msg.Op {
	case amqp.OpUpsert:
		return w.exportByID(ctx, msg.TransactionID)
	case amqp.OpDelete:
		return w.exporter.DeleteTransaction(ctx, msg.TransactionID)
	default:
		// Unknown op; drop rather than requeue forever.
		slog.WarnContext(ctx, "Unknown sync op, skipping",
			"op", msg.Op,
			"transaction_id", msg.TransactionID)
		return nil
	}
}

func (w *SyncWorker) exportByID(ctx context.Context, id string) error {
	t, err := w.store.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		// Deleted between publish and consume; the delete message will
		// clean up the sheet.
		slog.InfoContext(ctx, "Transaction gone before export, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", id, err)
	}
	return w.export(ctx, t)
}

func (w *SyncWorker) export(ctx context.Context, t core.Transaction) error {
	if _, err := w.exporter.AppendTransaction(ctx, t); err != nil {
		if markErr := w.store.MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID, "error", markErr)
		}
		return fmt.Errorf("export transaction %s: %w", t.ID, err)
	}
	if err := w.store.MarkSynced(ctx, t.ID); err != nil {
		return fmt.Errorf("mark synced %s: %w", t.ID, err)
	}
	return nil
}

// ProcessPending is the catch-up pass. Publish failures on the write
// path are non-fatal, so rows can sit in pending with no message in
// flight; this sweep picks them up.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.store.ListPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending sync: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending sync rows", "count", len(pending))
	var failed int
	for _, t := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.export(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Pending export failed", "id", t.ID, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pending exports failed", failed, len(pending))
	}
	return nil
}

// RunPendingLoop calls ProcessPending on every tick until ctx ends.
func (w *SyncWorker) RunPendingLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "Pending sync pass failed", "error", err)
			}
		}
	}
}
