package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"finflow/internal/core"
)

type periodJSON struct {
	Label        string  `json:"label"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	IncomeCents  int64   `json:"incomeCents"`
	ExpenseCents int64   `json:"expenseCents"`
	SavingsCents int64   `json:"savingsCents"`
	SavingsRate  float64 `json:"savingsRate"`
}

type categoryJSON struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
}

type analyticsResponse struct {
	Window     string         `json:"window"`
	Start      string         `json:"start"`
	End        string         `json:"end"`
	Periods    []periodJSON   `json:"periods"`
	Categories []categoryJSON `json:"categories"`
}

type balanceResponse struct {
	BalanceCents int64  `json:"balanceCents"`
	Balance      string `json:"balance"`
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("window"))
	if name == "" {
		name = core.DefaultWindowName
	}
	window, err := core.ResolveWindow(name, s.now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown window: use 1month, 3months, 6months, or 12months")
		return
	}

	key := s.cacheKey(owner, name)
	if cached, found := s.analyticsCache.Get(key); found {
		slog.DebugContext(r.Context(), "Analytics cache hit", "owner_id", owner, "window", name)
		writeJSON(w, http.StatusOK, cached)
		return
	}

	transactions, err := s.transactions.ListByOwner(r.Context(), owner)
	if err != nil {
		renderError(w, r, err)
		return
	}

	resp := analyticsResponse{
		Window:     name,
		Start:      window.Start.UTC().Format(time.RFC3339),
		End:        window.End.UTC().Format(time.RFC3339),
		Periods:    make([]periodJSON, 0, window.Months),
		Categories: make([]categoryJSON, 0),
	}
	for _, p := range core.MonthlySeries(transactions, window) {
		resp.Periods = append(resp.Periods, periodJSON{
			Label:        p.Label,
			Year:         p.Year,
			Month:        int(p.Month),
			IncomeCents:  p.Income.Cents,
			ExpenseCents: p.Expenses.Cents,
			SavingsCents: p.Savings.Cents,
			SavingsRate:  p.SavingsRate,
		})
	}
	for _, c := range core.CategoryBreakdown(transactions, window) {
		resp.Categories = append(resp.Categories, categoryJSON{
			Name:        c.Name,
			AmountCents: c.Amount.Cents,
			Amount:      c.Amount.String(),
		})
	}

	s.analyticsCache.Set(key, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
		return
	}

	transactions, err := s.transactions.ListByOwner(r.Context(), owner)
	if err != nil {
		renderError(w, r, err)
		return
	}

	balance := core.CurrentBalance(transactions)
	writeJSON(w, http.StatusOK, balanceResponse{
		BalanceCents: balance.Cents,
		Balance:      balance.String(),
	})
}
