package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finflow/internal/core"
	"finflow/internal/store"
	"finflow/internal/store/memory"
)

var testNow = time.Date(2025, time.August, 29, 10, 0, 0, 0, time.UTC)

func newTestService() (*TransactionService, *memory.Store) {
	mem := memory.New()
	svc := NewTransactionService(mem, nil) // no AMQP in tests
	svc.SetClock(func() time.Time { return testNow })
	return svc, mem
}

func TestCreateSignsAmount(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tx, err := svc.Create(ctx, "user-1", core.AddIntent{
		Kind:        core.KindExpense,
		AmountCents: 2550,
		Category:    "Food",
	}, time.Time{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if tx.ID == "" {
		t.Error("Create did not assign an id")
	}
	if tx.Amount.Cents != -2550 {
		t.Errorf("amount = %d, want -2550", tx.Amount.Cents)
	}
	if !tx.OccurredAt.Equal(testNow) {
		t.Errorf("occurredAt = %v, want now default", tx.OccurredAt)
	}
}

func TestCreateRejectsBadIntent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "user-1", core.AddIntent{
		Kind:        core.KindExpense,
		AmountCents: 0,
		Category:    "Food",
	}, time.Time{})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("error = %v, want ErrInvalidAmount", err)
	}
}

func TestUpdatePropagatesAuthorization(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tx, err := svc.Create(ctx, "user-1", core.AddIntent{
		Kind:        core.KindIncome,
		AmountCents: 1000,
		Category:    "Salary",
	}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	category := "Bonus"
	err = svc.Update(ctx, "intruder", tx.ID, store.TransactionUpdate{Category: &category})
	if !errors.Is(err, store.ErrForbidden) {
		t.Errorf("update by non-owner = %v, want ErrForbidden", err)
	}

	if err := svc.Update(ctx, "user-1", tx.ID, store.TransactionUpdate{Category: &category}); err != nil {
		t.Errorf("update by owner: %v", err)
	}
}

func TestUpdateEmptyIsNoop(t *testing.T) {
	svc, _ := newTestService()

	// No fields set, no store call, no error even for a bogus id.
	if err := svc.Update(context.Background(), "user-1", "missing", store.TransactionUpdate{}); err != nil {
		t.Errorf("empty update: %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc, mem := newTestService()
	ctx := context.Background()

	tx, err := svc.Create(ctx, "user-1", core.AddIntent{
		Kind:        core.KindExpense,
		AmountCents: 500,
		Category:    "Food",
	}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "user-2", tx.ID); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("delete by non-owner = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, "user-1", tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	remaining, err := mem.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("len after delete = %d, want 0", len(remaining))
	}
}
