package http

import (
	"encoding/json"
	"net/http"
	"time"

	"finflow/internal/core"
	"finflow/internal/store"
)

type transactionJSON struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	OccurredAt  string `json:"occurredAt"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Kind:        string(t.Kind),
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  t.OccurredAt.UTC().Format(time.RFC3339),
		CreatedAt:   t.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type createTransactionRequest struct {
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurredAt"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "kind must be 'income' or 'expense'")
		return
	}
	cents, err := core.ParseAmountToCents(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "amount must be a positive number")
		return
	}

	var occurredAt time.Time
	if req.OccurredAt != "" {
		occurredAt, err = parseDate(req.OccurredAt)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "occurredAt must be YYYY-MM-DD or RFC 3339")
			return
		}
	}

	intent := core.AddIntent{
		Kind:        kind,
		AmountCents: cents,
		Category:    req.Category,
		Description: req.Description,
	}
	tx, err := s.service.Create(r.Context(), owner, intent, occurredAt)
	if err != nil {
		renderError(w, r, err)
		return
	}

	s.invalidateAnalytics(owner)
	writeJSON(w, http.StatusCreated, toTransactionJSON(tx))
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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

	out := make([]transactionJSON, 0, len(transactions))
	for _, t := range transactions {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": out})
}

type updateTransactionRequest struct {
	Kind        *string `json:"kind"`
	Amount      *string `json:"amount"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	OccurredAt  *string `json:"occurredAt"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
		return
	}
	id := r.PathValue("id")

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// The stored amount is signed by kind, so changing either requires
	// both: the magnitude alone does not determine the new value.
	if (req.Amount == nil) != (req.Kind == nil) {
		writeError(w, http.StatusUnprocessableEntity, "kind and amount must be changed together")
		return
	}

	var update store.TransactionUpdate
	if req.Kind != nil {
		kind, err := core.ParseKind(*req.Kind)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "kind must be 'income' or 'expense'")
			return
		}
		cents, err := core.ParseAmountToCents(*req.Amount)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "amount must be a positive number")
			return
		}
		signed := kind.Sign() * cents
		update.Kind = &kind
		update.AmountCents = &signed
	}
	if req.Category != nil {
		update.Category = req.Category
	}
	if req.Description != nil {
		update.Description = req.Description
	}
	if req.OccurredAt != nil {
		occurredAt, err := parseDate(*req.OccurredAt)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "occurredAt must be YYYY-MM-DD or RFC 3339")
			return
		}
		update.OccurredAt = &occurredAt
	}

	if err := s.service.Update(r.Context(), owner, id, update); err != nil {
		renderError(w, r, err)
		return
	}

	s.invalidateAnalytics(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
		return
	}

	if err := s.service.Delete(r.Context(), owner, r.PathValue("id")); err != nil {
		renderError(w, r, err)
		return
	}

	s.invalidateAnalytics(owner)
	w.WriteHeader(http.StatusNoContent)
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
