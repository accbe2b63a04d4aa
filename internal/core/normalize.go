package core

import (
	"strings"
	"time"
)

// AddIntent is a validated request to record a transaction, produced by
// the web form handler or either chat parser. AmountCents is always the
// positive magnitude; the sign is applied during normalization.
type AddIntent struct {
	Kind        Kind
	AmountCents int64
	Category    string
	Description string
}

// Normalize turns an AddIntent into a complete Transaction ready for the
// store. It is a pure function: persistence is the caller's job.
//
// The signed amount is derived here and nowhere else. occurredAt may be
// zero (chat entries carry no explicit date) and then defaults to now.
func Normalize(ownerID string, intent AddIntent, occurredAt, now time.Time) (Transaction, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Transaction{}, ErrMissingOwner
	}
	if !intent.Kind.Valid() {
		return Transaction{}, ErrInvalidKind
	}
	if intent.AmountCents <= 0 {
		return Transaction{}, ErrInvalidAmount
	}
	category := strings.TrimSpace(intent.Category)
	if category == "" {
		return Transaction{}, ErrMissingCategory
	}
	if occurredAt.IsZero() {
		occurredAt = now
	}

	t := Transaction{
		OwnerID:     ownerID,
		Kind:        intent.Kind,
		Amount:      Money{Cents: intent.Kind.Sign() * intent.AmountCents},
		Category:    category,
		Description: strings.TrimSpace(intent.Description),
		OccurredAt:  occurredAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}
