package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind distinguishes money coming in from money going out.
	Kind string

	// Money is an amount in cents. Transactions carry a signed value:
	// income is non-negative, expense is non-positive.
	Money struct {
		Cents int64
	}

	// Transaction is the canonical financial event. Amount sign always
	// agrees with Kind, so aggregation is a plain sum.
	Transaction struct {
		ID          string
		OwnerID     string
		Kind        Kind
		Amount      Money
		Category    string
		Description string
		OccurredAt  time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// ChatBinding links an external chat identity to an owning user.
	ChatBinding struct {
		OwnerID  string
		ChatID   string
		LinkedAt time.Time
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrMissingCategory = errors.New("missing category")
	ErrMissingOwner    = errors.New("missing owner")
)

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Sign returns +1 for income and -1 for expense.
func (k Kind) Sign() int64 {
	if k == KindExpense {
		return -1
	}
	return 1
}

// ParseKind accepts a kind token case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindIncome:
		return KindIncome, nil
	case KindExpense:
		return KindExpense, nil
	}
	return "", ErrInvalidKind
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.OwnerID) == "" {
		return ErrMissingOwner
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	// Stored sign must agree with the kind.
	if t.Kind == KindIncome && t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if t.Kind == KindExpense && t.Amount.Cents > 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	if len(t.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	if t.OccurredAt.IsZero() {
		return errors.New("occurred date cannot be zero")
	}
	return nil
}
