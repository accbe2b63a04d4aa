package bot

import (
	"errors"
	"testing"

	"finflow/internal/core"
)

func TestParseCommands(t *testing.T) {
	tests := []struct {
		name string
		line string
		want core.AddIntent
	}{
		{
			"expense with description",
			"/expense 25.50 Food Lunch with friends",
			core.AddIntent{Kind: core.KindExpense, AmountCents: 2550, Category: "Food", Description: "Lunch with friends"},
		},
		{
			"income without description",
			"/income 1000 Salary",
			core.AddIntent{Kind: core.KindIncome, AmountCents: 100000, Category: "Salary"},
		},
		{
			"add with explicit kind",
			"/add expense 12 Transport Bus ticket",
			core.AddIntent{Kind: core.KindExpense, AmountCents: 1200, Category: "Transport", Description: "Bus ticket"},
		},
		{
			"add kind is case-insensitive",
			"/ADD Income 50 Gift",
			core.AddIntent{Kind: core.KindIncome, AmountCents: 5000, Category: "Gift"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.line, err)
			}
			add, ok := intent.(Add)
			if !ok {
				t.Fatalf("Parse(%q) = %T, want Add", tt.line, intent)
			}
			if add.Intent != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, add.Intent, tt.want)
			}
		})
	}
}

func TestParseShorthand(t *testing.T) {
	intent, err := Parse("Food 200")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	add, ok := intent.(Add)
	if !ok {
		t.Fatalf("Parse = %T, want Add", intent)
	}
	want := core.AddIntent{Kind: core.KindExpense, AmountCents: 20000, Category: "Food"}
	if add.Intent != want {
		t.Errorf("shorthand = %+v, want %+v", add.Intent, want)
	}

	intent, err = Parse("Transport 50.5")
	if err != nil {
		t.Fatal(err)
	}
	if got := intent.(Add).Intent.AmountCents; got != 5050 {
		t.Errorf("amount cents = %d, want 5050", got)
	}

	// Case is preserved for the category.
	intent, err = Parse("food 15")
	if err != nil {
		t.Fatal(err)
	}
	if got := intent.(Add).Intent.Category; got != "food" {
		t.Errorf("category = %q, want %q", got, "food")
	}
}

func TestParseShorthandNonMatchFallsThrough(t *testing.T) {
	for _, line := range []string{
		"Rent",             // no amount
		"Food 200 extra",   // trailing tokens
		"Caffè 3",          // non-ASCII category word
		"200 Food",         // amount first
		"hello there bot",  // free text
		"Food 12,50",       // comma only valid in slash commands
		"",                 // empty line
	} {
		intent, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q): %v", line, err)
		}
		if _, ok := intent.(Unrecognized); !ok {
			t.Errorf("Parse(%q) = %T, want Unrecognized", line, intent)
		}
	}
}

func TestParseQueries(t *testing.T) {
	if intent, err := Parse("/balance"); err != nil {
		t.Fatal(err)
	} else if _, ok := intent.(Balance); !ok {
		t.Errorf("/balance = %T, want Balance", intent)
	}
	if intent, err := Parse("/recent"); err != nil {
		t.Fatal(err)
	} else if _, ok := intent.(Recent); !ok {
		t.Errorf("/recent = %T, want Recent", intent)
	}
	if intent, err := Parse("/help"); err != nil {
		t.Fatal(err)
	} else if _, ok := intent.(Help); !ok {
		t.Errorf("/help = %T, want Help", intent)
	}
	if intent, err := Parse("/start abc123"); err != nil {
		t.Fatal(err)
	} else if start, ok := intent.(Start); !ok || start.Token != "abc123" {
		t.Errorf("/start = %#v, want Start{abc123}", intent)
	}
	if intent, err := Parse("/start"); err != nil {
		t.Fatal(err)
	} else if start, ok := intent.(Start); !ok || start.Token != "" {
		t.Errorf("bare /start = %#v, want Start{}", intent)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{"zero amount", "/expense 0 Food", core.ErrInvalidAmount},
		{"negative amount", "/expense -5 Food", core.ErrInvalidAmount},
		{"junk amount", "/expense abc Food", core.ErrInvalidAmount},
		{"no arguments", "/expense", core.ErrInvalidAmount},
		{"missing category", "/expense 25.50", core.ErrMissingCategory},
		{"bad add kind", "/add transfer 25 Food", core.ErrInvalidKind},
		{"add without kind", "/add", core.ErrInvalidKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			// Every parse error has a user-facing rendering.
			if err != nil && UserMessage(err) == "" {
				t.Error("UserMessage returned empty string")
			}
		})
	}
}

func TestParseUnknownSlashCommand(t *testing.T) {
	intent, err := Parse("/export csv")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := intent.(Unrecognized); !ok {
		t.Errorf("unknown command = %T, want Unrecognized", intent)
	}
}
