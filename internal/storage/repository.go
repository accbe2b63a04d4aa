// Package storage is the SQLite implementation of the store ports, plus
// the sync bookkeeping the sheet-export worker reads.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finflow/internal/core"
	"finflow/internal/store"
)

// Sync statuses for the sheet-export pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

const txColumns = "id, owner_id, kind, amount_cents, category, description, occurred_at, created_at, updated_at"

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ store.TransactionStore = (*SQLiteRepository)(nil)
	_ store.BindingStore     = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+txColumns+`, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, t.OwnerID, string(t.Kind), t.Amount.Cents, t.Category, t.Description,
		encodeTime(t.OccurredAt), encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt),
		SyncPending)
	if err != nil {
		return "", unavailable("insert transaction", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"owner_id", t.OwnerID,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents,
		"category", t.Category)
	return id, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE owner_id = ?
		 ORDER BY occurred_at DESC, created_at DESC, id ASC`,
		ownerID)
	if err != nil {
		return nil, unavailable("query transactions", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate transactions", err)
	}
	return out, nil
}

func (r *SQLiteRepository) UpdateByID(ctx context.Context, ownerID, id string, update store.TransactionUpdate) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin update", err)
	}
	defer dbTx.Rollback()

	t, err := r.ownedTx(ctx, dbTx, ownerID, id)
	if err != nil {
		return err
	}

	if update.Kind != nil {
		t.Kind = *update.Kind
	}
	if update.AmountCents != nil {
		t.Amount = core.Money{Cents: *update.AmountCents}
	}
	if update.Category != nil {
		t.Category = *update.Category
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	if update.OccurredAt != nil {
		t.OccurredAt = *update.OccurredAt
	}
	t.UpdatedAt = time.Now().UTC()

	if err := t.Validate(); err != nil {
		return err
	}

	_, err = dbTx.ExecContext(ctx,
		`UPDATE transactions
		 SET kind = ?, amount_cents = ?, category = ?, description = ?,
		     occurred_at = ?, updated_at = ?, sync_status = ?
		 WHERE id = ?`,
		string(t.Kind), t.Amount.Cents, t.Category, t.Description,
		encodeTime(t.OccurredAt), encodeTime(t.UpdatedAt), SyncPending, id)
	if err != nil {
		return unavailable("update transaction", err)
	}
	if err := dbTx.Commit(); err != nil {
		return unavailable("commit update", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, ownerID, id string) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin delete", err)
	}
	defer dbTx.Rollback()

	if _, err := r.ownedTx(ctx, dbTx, ownerID, id); err != nil {
		return err
	}
	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return unavailable("delete transaction", err)
	}
	if err := dbTx.Commit(); err != nil {
		return unavailable("commit delete", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ownerID)
	return nil
}

// ownedTx loads a record inside dbTx and enforces ownership before any
// mutation. Forbidden and not-found stay distinct here; boundaries
// collapse them when rendering.
func (r *SQLiteRepository) ownedTx(ctx context.Context, dbTx *sql.Tx, ownerID, id string) (core.Transaction, error) {
	row := dbTx.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, unavailable("load transaction", err)
	}
	if t.OwnerID != ownerID {
		return core.Transaction{}, store.ErrForbidden
	}
	return t, nil
}

// GetByID fetches a transaction without an ownership check. Only the
// sync worker uses it; user-facing paths go through the owned methods.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+txColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, unavailable("load transaction", err)
	}
	return t, nil
}

// ListPendingSync returns transactions the worker still has to push to
// the spreadsheet, oldest first.
func (r *SQLiteRepository) ListPendingSync(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+txColumns+` FROM transactions
		 WHERE sync_status = ?
		 ORDER BY created_at ASC
		 LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, unavailable("query pending sync", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, SyncDone)
}

func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	return r.setSyncStatus(ctx, id, SyncError)
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return unavailable("set sync status", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateLinkToken(ctx context.Context, ownerID string) (string, error) {
	token := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO link_tokens (token, owner_id, created_at) VALUES (?, ?, ?)`,
		token, ownerID, encodeTime(time.Now().UTC()))
	if err != nil {
		return "", unavailable("insert link token", err)
	}
	return token, nil
}

func (r *SQLiteRepository) BindChat(ctx context.Context, token, chatID string) (string, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable("begin bind", err)
	}
	defer dbTx.Rollback()

	var ownerID string
	err = dbTx.QueryRowContext(ctx,
		`SELECT owner_id FROM link_tokens WHERE token = ?`, token).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrInvalidToken
	}
	if err != nil {
		return "", unavailable("load link token", err)
	}

	// One-time token; rebinding replaces any existing owner for the chat.
	if _, err := dbTx.ExecContext(ctx, `DELETE FROM link_tokens WHERE token = ?`, token); err != nil {
		return "", unavailable("consume link token", err)
	}
	_, err = dbTx.ExecContext(ctx,
		`INSERT INTO chat_bindings (chat_id, owner_id, linked_at) VALUES (?, ?, ?)
		 ON CONFLICT (chat_id) DO UPDATE SET owner_id = excluded.owner_id, linked_at = excluded.linked_at`,
		chatID, ownerID, encodeTime(time.Now().UTC()))
	if err != nil {
		return "", unavailable("bind chat", err)
	}
	if err := dbTx.Commit(); err != nil {
		return "", unavailable("commit bind", err)
	}

	slog.InfoContext(ctx, "Chat linked", "chat_id", chatID, "owner_id", ownerID)
	return ownerID, nil
}

func (r *SQLiteRepository) OwnerForChat(ctx context.Context, chatID string) (string, error) {
	var ownerID string
	err := r.db.QueryRowContext(ctx,
		`SELECT owner_id FROM chat_bindings WHERE chat_id = ?`, chatID).Scan(&ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", unavailable("load chat binding", err)
	}
	return ownerID, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                     core.Transaction
		kind                  string
		occurred, created, up string
	)
	err := row.Scan(&t.ID, &t.OwnerID, &kind, &t.Amount.Cents, &t.Category,
		&t.Description, &occurred, &created, &up)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.Kind(kind)
	if t.OccurredAt, err = decodeTime(occurred); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = decodeTime(created); err != nil {
		return core.Transaction{}, err
	}
	if t.UpdatedAt, err = decodeTime(up); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Timestamps are stored as fixed-width RFC 3339 UTC strings so lexical
// ORDER BY is chronological down to the nanosecond.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, store.ErrUnavailable)
}
