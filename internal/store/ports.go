// Package store defines the narrow contract the application requires
// from the transaction document store. Implementations live in
// store/memory and storage (SQLite); nothing above this boundary knows
// which one is in use.
package store

import (
	"context"
	"errors"
	"time"

	"finflow/internal/core"
)

var (
	// ErrNotFound means the record does not exist.
	ErrNotFound = errors.New("transaction not found")
	// ErrForbidden means the record exists but belongs to someone else.
	// Boundaries must render it exactly like ErrNotFound so existence
	// never leaks.
	ErrForbidden = errors.New("not allowed")
	// ErrUnavailable wraps transport or backend failures.
	ErrUnavailable = errors.New("store unavailable")
	// ErrInvalidToken means a chat link token is unknown or already used.
	ErrInvalidToken = errors.New("invalid link token")
)

// TransactionUpdate carries the fields an edit may change. Nil means
// "leave as is". Amount is the signed value; callers go through
// core.Normalize-equivalent logic before building one of these.
type TransactionUpdate struct {
	Kind        *core.Kind
	AmountCents *int64
	Category    *string
	Description *string
	OccurredAt  *time.Time
}

// Empty reports whether the update would change nothing.
func (u TransactionUpdate) Empty() bool {
	return u.Kind == nil && u.AmountCents == nil && u.Category == nil &&
		u.Description == nil && u.OccurredAt == nil
}

type (
	// TransactionStore is the read/write contract for transactions.
	TransactionStore interface {
		// Append persists a new transaction and returns its assigned id.
		Append(ctx context.Context, t core.Transaction) (string, error)

		// ListByOwner returns the owner's transactions ordered by
		// occurredAt descending. Equal dates tie-break by createdAt
		// descending, then id ascending, so ordering is deterministic.
		ListByOwner(ctx context.Context, ownerID string) ([]core.Transaction, error)

		// UpdateByID applies a partial update and refreshes updatedAt.
		// Returns ErrNotFound for unknown ids and ErrForbidden when the
		// record belongs to a different owner.
		UpdateByID(ctx context.Context, ownerID, id string, update TransactionUpdate) error

		// DeleteByID removes a transaction, with the same failure modes
		// as UpdateByID.
		DeleteByID(ctx context.Context, ownerID, id string) error
	}

	// BindingStore manages chat identity bindings and the one-time
	// tokens used to establish them.
	BindingStore interface {
		// CreateLinkToken issues a one-time token for the owner.
		CreateLinkToken(ctx context.Context, ownerID string) (string, error)

		// BindChat consumes a token and binds the chat id to the
		// token's owner, replacing any previous binding for that chat.
		// Returns ErrInvalidToken for unknown or spent tokens.
		BindChat(ctx context.Context, token, chatID string) (ownerID string, err error)

		// OwnerForChat resolves a chat id to its bound owner, or
		// ErrNotFound when the chat was never linked.
		OwnerForChat(ctx context.Context, chatID string) (string, error)
	}
)
