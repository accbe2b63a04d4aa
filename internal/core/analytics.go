package core

import (
	"sort"
	"time"
)

type (
	// Period is one calendar month of aggregated activity. Income and
	// Expenses are both positive magnitudes; Savings may be negative.
	Period struct {
		Label       string
		Year        int
		Month       time.Month
		Income      Money
		Expenses    Money
		Savings     Money
		SavingsRate float64
	}

	// CategoryAmount is one slice of the spending breakdown.
	CategoryAmount struct {
		Name   string
		Amount Money
	}
)

// MonthlySeries aggregates transactions into one Period per calendar
// month, oldest first. The series always has exactly window.Months
// entries ending with the window's end month; months without activity
// are zero-filled so charts never show gaps.
func MonthlySeries(transactions []Transaction, window Window) []Period {
	periods := make([]Period, 0, window.Months)
	index := make(map[string]int, window.Months)

	endYear, endMonth, _ := window.End.Date()
	for i := window.Months - 1; i >= 0; i-- {
		total := endYear*12 + int(endMonth) - 1 - i
		y, m := total/12, time.Month(total%12+1)
		index[monthKey(y, m)] = len(periods)
		periods = append(periods, Period{
			Label: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06"),
			Year:  y,
			Month: m,
		})
	}

	for _, t := range transactions {
		if !window.Contains(t.OccurredAt) {
			continue
		}
		y, m, _ := t.OccurredAt.Date()
		pos, ok := index[monthKey(y, m)]
		if !ok {
			continue
		}
		p := &periods[pos]
		switch t.Kind {
		case KindIncome:
			p.Income = p.Income.Add(t.Amount)
		case KindExpense:
			p.Expenses = p.Expenses.Add(t.Amount.Abs())
		}
	}

	for i := range periods {
		p := &periods[i]
		p.Savings = Money{Cents: p.Income.Cents - p.Expenses.Cents}
		if p.Income.Cents > 0 {
			p.SavingsRate = float64(p.Savings.Cents) / float64(p.Income.Cents) * 100
		}
	}
	return periods
}

// CategoryBreakdown totals expense magnitudes per category within the
// window. The result is sorted by amount descending, then name, so the
// pie chart and tests see a deterministic order.
func CategoryBreakdown(transactions []Transaction, window Window) []CategoryAmount {
	totals := make(map[string]int64)
	for _, t := range transactions {
		if t.Kind != KindExpense || !window.Contains(t.OccurredAt) {
			continue
		}
		totals[t.Category] += t.Amount.Abs().Cents
	}

	out := make([]CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, CategoryAmount{Name: name, Amount: Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CurrentBalance sums signed amounts over the entire history. Balance is
// deliberately never window-scoped.
func CurrentBalance(transactions []Transaction) Money {
	var total Money
	for _, t := range transactions {
		total = total.Add(t.Amount)
	}
	return total
}

func monthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
