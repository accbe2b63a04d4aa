package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finflow/internal/core"
	"finflow/internal/store"
)

// recentLimit is the fixed size of the /recent listing.
const recentLimit = 5

const welcomeText = "Welcome to FinFlow Bot! 👋\n\n" +
	"To add a transaction, simply send a message in this format:\n\n" +
	"Category Amount\n\n" +
	"For example:\nFood 200\nTransport 50.5\nRent 1500\n\n" +
	"Link this chat to your FinFlow account with /start <token> " +
	"(get a token from Settings → Telegram Bot)."

const usageHint = "Please use the format: Category Amount\n\n" +
	"Examples:\nFood 200\nTransport 50.5\n\nSend /help for all commands."

const helpText = "FinFlow Bot commands:\n" +
	"/add <income|expense> <amount> <category> [description]\n" +
	"/expense <amount> <category> [description]\n" +
	"/income <amount> <category> [description]\n" +
	"/balance — current balance\n" +
	"/recent — last 5 transactions\n" +
	"Or just send: Category Amount (logged as an expense)"

// TransactionCreator is the slice of the transaction service the engine
// needs for writes.
type TransactionCreator interface {
	Create(ctx context.Context, ownerID string, intent core.AddIntent, occurredAt time.Time) (core.Transaction, error)
}

// Engine processes one inbound chat message at a time and always
// answers with text: parser and store failures are rendered, never
// propagated to the transport.
type Engine struct {
	creator      TransactionCreator
	transactions store.TransactionStore
	bindings     store.BindingStore
}

func NewEngine(creator TransactionCreator, transactions store.TransactionStore, bindings store.BindingStore) *Engine {
	return &Engine{
		creator:      creator,
		transactions: transactions,
		bindings:     bindings,
	}
}

// Handle processes one raw message from an external chat identity and
// returns the reply text to relay verbatim.
func (e *Engine) Handle(ctx context.Context, chatID, text string) string {
	intent, err := Parse(text)
	if err != nil {
		return UserMessage(err)
	}

	switch it := intent.(type) {
	case Start:
		return e.handleStart(ctx, chatID, it.Token)
	case Help:
		return helpText
	case Unrecognized:
		return usageHint
	}

	// Everything below needs an attributed owner.
	ownerID, err := e.bindings.OwnerForChat(ctx, chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "This chat isn't linked to a FinFlow account yet.\n" +
				"Send /start <token> with a token from Settings → Telegram Bot."
		}
		slog.ErrorContext(ctx, "Chat binding lookup failed", "chat_id", chatID, "error", err)
		return "Something went wrong. Please try again."
	}

	switch it := intent.(type) {
	case Add:
		return e.handleAdd(ctx, ownerID, it.Intent)
	case Balance:
		return e.handleBalance(ctx, ownerID)
	case Recent:
		return e.handleRecent(ctx, ownerID)
	}
	return usageHint
}

func (e *Engine) handleStart(ctx context.Context, chatID, token string) string {
	if token == "" {
		return welcomeText
	}
	if _, err := e.bindings.BindChat(ctx, token, chatID); err != nil {
		if errors.Is(err, store.ErrInvalidToken) {
			return "That link token is invalid or already used. Generate a new one from Settings → Telegram Bot."
		}
		slog.ErrorContext(ctx, "Chat bind failed", "chat_id", chatID, "error", err)
		return "Something went wrong linking this chat. Please try again."
	}
	return "✅ Account linked! You can now log expenses by sending: Category Amount"
}

func (e *Engine) handleAdd(ctx context.Context, ownerID string, intent core.AddIntent) string {
	// Chat entries carry no explicit date; Create defaults it to now.
	tx, err := e.creator.Create(ctx, ownerID, intent, time.Time{})
	if err != nil {
		if isValidation(err) {
			return UserMessage(err)
		}
		slog.ErrorContext(ctx, "Chat transaction save failed", "owner_id", ownerID, "error", err)
		return "❌ Error saving your transaction. Please try again."
	}
	return fmt.Sprintf("✅ Transaction added!\nCategory: %s\nAmount: %s",
		tx.Category, tx.Amount.Abs())
}

func (e *Engine) handleBalance(ctx context.Context, ownerID string) string {
	transactions, err := e.transactions.ListByOwner(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Balance read failed", "owner_id", ownerID, "error", err)
		return "❌ Could not read your balance. Please try again."
	}
	return fmt.Sprintf("Your current balance is %s", core.CurrentBalance(transactions))
}

func (e *Engine) handleRecent(ctx context.Context, ownerID string) string {
	transactions, err := e.transactions.ListByOwner(ctx, ownerID)
	if err != nil {
		slog.ErrorContext(ctx, "Recent read failed", "owner_id", ownerID, "error", err)
		return "❌ Could not read your transactions. Please try again."
	}
	if len(transactions) == 0 {
		return "No transactions yet. Send something like: Food 200"
	}
	if len(transactions) > recentLimit {
		transactions = transactions[:recentLimit]
	}

	var b strings.Builder
	b.WriteString("Your recent transactions:\n")
	for _, t := range transactions {
		fmt.Fprintf(&b, "%s  %s  %s", t.OccurredAt.Format("2006-01-02"), t.Category, t.Amount)
		if t.Description != "" {
			fmt.Fprintf(&b, "  (%s)", t.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func isValidation(err error) bool {
	return errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrMissingCategory) ||
		errors.Is(err, core.ErrInvalidKind)
}
