package bot

import (
	"context"
	"strings"
	"testing"
	"time"

	"finflow/internal/core"
	"finflow/internal/services"
	"finflow/internal/store/memory"
)

var engineNow = time.Date(2025, time.August, 29, 10, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	mem := memory.New()
	svc := services.NewTransactionService(mem, nil)
	svc.SetClock(func() time.Time { return engineNow })
	return NewEngine(svc, mem, mem), mem
}

// linkChat binds chatID to ownerID through the normal token flow.
func linkChat(t *testing.T, e *Engine, mem *memory.Store, ownerID, chatID string) {
	t.Helper()
	token, err := mem.CreateLinkToken(context.Background(), ownerID)
	if err != nil {
		t.Fatal(err)
	}
	reply := e.Handle(context.Background(), chatID, "/start "+token)
	if !strings.Contains(reply, "linked") {
		t.Fatalf("link reply = %q", reply)
	}
}

func TestHandleStartWithoutToken(t *testing.T) {
	e, _ := newTestEngine(t)

	reply := e.Handle(context.Background(), "chat-1", "/start")
	if !strings.Contains(reply, "Welcome to FinFlow Bot") {
		t.Errorf("reply = %q, want welcome text", reply)
	}
}

func TestHandleStartWithBadToken(t *testing.T) {
	e, _ := newTestEngine(t)

	reply := e.Handle(context.Background(), "chat-1", "/start bogus")
	if !strings.Contains(reply, "invalid") {
		t.Errorf("reply = %q, want invalid-token message", reply)
	}
}

func TestHandleUnboundChat(t *testing.T) {
	e, _ := newTestEngine(t)

	reply := e.Handle(context.Background(), "chat-1", "Food 200")
	if !strings.Contains(reply, "isn't linked") {
		t.Errorf("reply = %q, want link prompt", reply)
	}
}

func TestHandleShorthandAdd(t *testing.T) {
	e, mem := newTestEngine(t)
	ctx := context.Background()
	linkChat(t, e, mem, "user-1", "chat-1")

	reply := e.Handle(ctx, "chat-1", "Food 200")
	if !strings.Contains(reply, "Transaction added") {
		t.Fatalf("reply = %q", reply)
	}
	if !strings.Contains(reply, "Food") || !strings.Contains(reply, "200.00") {
		t.Errorf("reply = %q, want category and amount echoed", reply)
	}

	stored, err := mem.ListByOwner(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored = %d, want 1", len(stored))
	}
	if stored[0].Kind != core.KindExpense || stored[0].Amount.Cents != -20000 {
		t.Errorf("stored transaction = %+v", stored[0])
	}
	if !stored[0].OccurredAt.Equal(engineNow) {
		t.Errorf("occurredAt = %v, want now default", stored[0].OccurredAt)
	}
}

func TestHandleBalance(t *testing.T) {
	e, mem := newTestEngine(t)
	ctx := context.Background()
	linkChat(t, e, mem, "user-1", "chat-1")

	e.Handle(ctx, "chat-1", "/income 1000 Salary")
	e.Handle(ctx, "chat-1", "/expense 200 Rent")
	e.Handle(ctx, "chat-1", "/expense 50 Food")

	reply := e.Handle(ctx, "chat-1", "/balance")
	if !strings.Contains(reply, "750.00") {
		t.Errorf("balance reply = %q, want it to contain 750.00", reply)
	}
}

func TestHandleRecentLimitsToFive(t *testing.T) {
	e, mem := newTestEngine(t)
	ctx := context.Background()
	linkChat(t, e, mem, "user-1", "chat-1")

	reply := e.Handle(ctx, "chat-1", "/recent")
	if !strings.Contains(reply, "No transactions yet") {
		t.Errorf("empty /recent reply = %q", reply)
	}

	for _, line := range []string{
		"Food 1", "Food 2", "Food 3", "Food 4", "Food 5", "Food 6", "Food 7",
	} {
		e.Handle(ctx, "chat-1", line)
	}

	reply = e.Handle(ctx, "chat-1", "/recent")
	lines := strings.Split(reply, "\n")
	// Header plus at most five entries.
	if len(lines) != 6 {
		t.Errorf("recent lines = %d (%q), want 6", len(lines), reply)
	}
}

func TestHandleParseErrorIsRendered(t *testing.T) {
	e, mem := newTestEngine(t)
	linkChat(t, e, mem, "user-1", "chat-1")

	reply := e.Handle(context.Background(), "chat-1", "/expense abc Food")
	if !strings.Contains(reply, "Invalid amount") {
		t.Errorf("reply = %q, want invalid amount message", reply)
	}

	reply = e.Handle(context.Background(), "chat-1", "/expense 25.50")
	if !strings.Contains(reply, "Missing category") {
		t.Errorf("reply = %q, want missing category message", reply)
	}
}

func TestHandleUnrecognizedGetsUsageHint(t *testing.T) {
	e, _ := newTestEngine(t)

	// Usage hints never require a binding.
	reply := e.Handle(context.Background(), "chat-1", "what is my balance?")
	if !strings.Contains(reply, "Category Amount") {
		t.Errorf("reply = %q, want usage hint", reply)
	}
}

func TestHandleHelp(t *testing.T) {
	e, _ := newTestEngine(t)

	reply := e.Handle(context.Background(), "chat-1", "/help")
	for _, want := range []string{"/balance", "/recent", "/expense"} {
		if !strings.Contains(reply, want) {
			t.Errorf("help reply missing %q: %q", want, reply)
		}
	}
}
