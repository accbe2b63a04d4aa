// Package memory is an in-process store backend used for local runs and
// tests. It honors the same ordering and authorization rules as the
// SQLite backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"finflow/internal/core"
	"finflow/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string]core.Transaction
	bindings     map[string]string // chatID -> ownerID
	tokens       map[string]string // token -> ownerID
	now          func() time.Time
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.BindingStore     = (*Store)(nil)
)

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		bindings:     make(map[string]string),
		tokens:       make(map[string]string),
		now:          time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Append(_ context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = uuid.NewString()
	s.transactions[t.ID] = t
	return t.ID, nil
}

func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.OccurredAt.Equal(b.OccurredAt) {
			return a.OccurredAt.After(b.OccurredAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) UpdateByID(_ context.Context, ownerID, id string, update store.TransactionUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.owned(ownerID, id)
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
	t.UpdatedAt = s.now()

	if err := t.Validate(); err != nil {
		return err
	}
	s.transactions[id] = t
	return nil
}

func (s *Store) DeleteByID(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.owned(ownerID, id); err != nil {
		return err
	}
	delete(s.transactions, id)
	return nil
}

// owned looks a record up and enforces ownership. Caller holds the lock.
func (s *Store) owned(ownerID, id string) (core.Transaction, error) {
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	if t.OwnerID != ownerID {
		return core.Transaction{}, store.ErrForbidden
	}
	return t, nil
}

func (s *Store) CreateLinkToken(_ context.Context, ownerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = ownerID
	return token, nil
}

func (s *Store) BindChat(_ context.Context, token, chatID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ownerID, ok := s.tokens[token]
	if !ok {
		return "", store.ErrInvalidToken
	}
	delete(s.tokens, token)
	s.bindings[chatID] = ownerID
	return ownerID, nil
}

func (s *Store) OwnerForChat(_ context.Context, chatID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ownerID, ok := s.bindings[chatID]
	if !ok {
		return "", store.ErrNotFound
	}
	return ownerID, nil
}
