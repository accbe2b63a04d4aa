package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"finflow/internal/core"
	"finflow/internal/store"
)

func testTx(ownerID string, occurred, created time.Time) core.Transaction {
	return core.Transaction{
		OwnerID:    ownerID,
		Kind:       core.KindExpense,
		Amount:     core.Money{Cents: -1000},
		Category:   "Food",
		OccurredAt: occurred,
		CreatedAt:  created,
		UpdatedAt:  created,
	}
}

func TestAppendAssignsID(t *testing.T) {
	s := New()
	now := time.Now()

	id, err := s.Append(context.Background(), testTx("user-1", now, now))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if id == "" {
		t.Error("Append returned empty id")
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	bad := testTx("user-1", time.Now(), time.Now())
	bad.Amount = core.Money{Cents: 1000} // positive expense

	if _, err := s.Append(context.Background(), bad); err == nil {
		t.Error("expected validation error for sign/kind mismatch")
	}
}

func TestListByOwnerOrdering(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	older := testTx("user-1", day.AddDate(0, 0, -1), day)
	newer := testTx("user-1", day, day)
	if _, err := s.Append(ctx, older); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(ctx, newer); err != nil {
		t.Fatal(err)
	}
	// Someone else's record never shows up.
	if _, err := s.Append(ctx, testTx("user-2", day, day)); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].OccurredAt.After(got[1].OccurredAt) {
		t.Error("expected occurredAt descending")
	}
}

func TestListByOwnerTieBreakIsDeterministic(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)

	// Same occurredAt, different createdAt: newer createdAt first.
	a := testTx("user-1", day, day.Add(time.Hour))
	b := testTx("user-1", day, day)
	idA, err := s.Append(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Append(ctx, b); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].ID != idA {
		t.Errorf("expected createdAt-descending tie-break, got %v first", got[0].CreatedAt)
	}

	// Identical timestamps: id ascending.
	s2 := New()
	for i := 0; i < 5; i++ {
		if _, err := s2.Append(ctx, testTx("user-1", day, day)); err != nil {
			t.Fatal(err)
		}
	}
	first, err := s2.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Fatalf("expected id-ascending tie-break, got %q before %q", first[i-1].ID, first[i].ID)
		}
	}
}

func TestDeleteByIDAuthorization(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now()

	id, err := s.Append(ctx, testTx("user-1", now, now))
	if err != nil {
		t.Fatal(err)
	}

	// Wrong owner must get ErrForbidden, not ErrNotFound.
	if err := s.DeleteByID(ctx, "user-2", id); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("delete by non-owner = %v, want ErrForbidden", err)
	}
	if err := s.DeleteByID(ctx, "user-1", "no-such-id"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete unknown id = %v, want ErrNotFound", err)
	}
	if err := s.DeleteByID(ctx, "user-1", id); err != nil {
		t.Errorf("delete by owner: %v", err)
	}
}

func TestUpdateByIDRefreshesUpdatedAt(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(48 * time.Hour)
	s.SetClock(func() time.Time { return later })

	id, err := s.Append(ctx, testTx("user-1", created, created))
	if err != nil {
		t.Fatal(err)
	}

	category := "Groceries"
	if err := s.UpdateByID(ctx, "user-1", id, store.TransactionUpdate{Category: &category}); err != nil {
		t.Fatalf("UpdateByID: %v", err)
	}

	got, err := s.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Category != "Groceries" {
		t.Errorf("category = %q, want Groceries", got[0].Category)
	}
	if !got[0].UpdatedAt.Equal(later) {
		t.Errorf("updatedAt = %v, want %v", got[0].UpdatedAt, later)
	}
	if !got[0].CreatedAt.Equal(created) {
		t.Errorf("createdAt changed on update: %v", got[0].CreatedAt)
	}

	if err := s.UpdateByID(ctx, "user-2", id, store.TransactionUpdate{Category: &category}); !errors.Is(err, store.ErrForbidden) {
		t.Errorf("update by non-owner = %v, want ErrForbidden", err)
	}
}

func TestBindingLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.OwnerForChat(ctx, "chat-9"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unbound chat = %v, want ErrNotFound", err)
	}

	token, err := s.CreateLinkToken(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	ownerID, err := s.BindChat(ctx, token, "chat-9")
	if err != nil {
		t.Fatalf("BindChat: %v", err)
	}
	if ownerID != "user-1" {
		t.Errorf("bound owner = %q, want user-1", ownerID)
	}

	got, err := s.OwnerForChat(ctx, "chat-9")
	if err != nil || got != "user-1" {
		t.Errorf("OwnerForChat = %q, %v", got, err)
	}

	// Tokens are one-time.
	if _, err := s.BindChat(ctx, token, "chat-10"); !errors.Is(err, store.ErrInvalidToken) {
		t.Errorf("reused token = %v, want ErrInvalidToken", err)
	}

	// Re-binding the same chat replaces the owner.
	token2, err := s.CreateLinkToken(ctx, "user-2")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.BindChat(ctx, token2, "chat-9"); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.OwnerForChat(ctx, "chat-9"); got != "user-2" {
		t.Errorf("owner after rebind = %q, want user-2", got)
	}
}
