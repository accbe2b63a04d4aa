// Package bot turns raw chat text into structured intents and renders
// reply text. It knows nothing about the transport delivering the
// messages; the bridge hands in one line and relays one reply.
package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"finflow/internal/core"
)

// Intent is the tagged result of parsing one raw input line. Every
// consumer switches over the concrete variants exhaustively.
type Intent interface {
	isIntent()
}

type (
	// Add asks to record a transaction.
	Add struct {
		Intent core.AddIntent
	}

	// Balance asks for the all-time balance.
	Balance struct{}

	// Recent asks for the last few transactions.
	Recent struct{}

	// Help asks for the command summary.
	Help struct{}

	// Start is the bot-binding surface: an optional link token follows.
	Start struct {
		Token string
	}

	// Unrecognized carries text no parser claimed. It is not an error;
	// the engine answers with a usage hint.
	Unrecognized struct {
		Text string
	}
)

func (Add) isIntent()          {}
func (Balance) isIntent()      {}
func (Recent) isIntent()       {}
func (Help) isIntent()         {}
func (Start) isIntent()        {}
func (Unrecognized) isIntent() {}

// shorthandRe matches the two-token "Category Amount" form: a single
// alphabetic word, whitespace, a non-negative decimal, nothing else.
var shorthandRe = regexp.MustCompile(`^([a-zA-Z]+)\s+(\d+(\.\d+)?)$`)

// Parse tokenizes one line of chat text and selects an intent. Malformed
// commands return an error whose message is safe to show the user
// verbatim; errors never cross the transport boundary as panics.
func Parse(line string) (Intent, error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Unrecognized{Text: line}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "/add":
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: expected income or expense", core.ErrInvalidKind)
		}
		kind, err := core.ParseKind(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not income or expense", core.ErrInvalidKind, fields[1])
		}
		return parseAdd(kind, fields[2:])
	case "/expense":
		return parseAdd(core.KindExpense, fields[1:])
	case "/income":
		return parseAdd(core.KindIncome, fields[1:])
	case "/balance":
		return Balance{}, nil
	case "/recent":
		return Recent{}, nil
	case "/help":
		return Help{}, nil
	case "/start":
		var token string
		if len(fields) > 1 {
			token = fields[1]
		}
		return Start{Token: token}, nil
	}

	if m := shorthandRe.FindStringSubmatch(line); m != nil {
		cents, err := core.ParseAmountToCents(m[2])
		if err != nil {
			return nil, err
		}
		// Category case is preserved as typed.
		return Add{Intent: core.AddIntent{
			Kind:        core.KindExpense,
			AmountCents: cents,
			Category:    m[1],
		}}, nil
	}

	return Unrecognized{Text: line}, nil
}

// parseAdd validates "amount category description..." tokens shared by
// /add, /expense, and /income.
func parseAdd(kind core.Kind, args []string) (Intent, error) {
	if len(args) == 0 {
		return nil, core.ErrInvalidAmount
	}
	cents, err := core.ParseAmountToCents(args[0])
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, core.ErrMissingCategory
	}
	return Add{Intent: core.AddIntent{
		Kind:        kind,
		AmountCents: cents,
		Category:    args[1],
		Description: strings.Join(args[2:], " "),
	}}, nil
}

// UserMessage renders a parse error as the reply text the user sees.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount. Use a positive number like 25.50."
	case errors.Is(err, core.ErrMissingCategory):
		return "Missing category. Example: /expense 25.50 Food Lunch"
	case errors.Is(err, core.ErrInvalidKind):
		return "Unknown transaction type. Use income or expense, e.g. /add expense 25.50 Food"
	}
	return "Sorry, I could not understand that message."
}
