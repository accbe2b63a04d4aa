package http

import (
	"encoding/json"
	"net/http"
	"strings"
)

// handleChatLink issues a one-time token the owner pastes into the chat
// bot via /start <token>.
func (s *Server) handleChatLink(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing X-Owner-ID header")
		return
	}

	token, err := s.bindings.CreateLinkToken(r.Context(), owner)
	if err != nil {
		renderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": token})
}

type webhookRequest struct {
	ChatID string `json:"chatId"`
	Text   string `json:"text"`
}

// handleBotWebhook receives one inbound chat message and answers with
// the reply text the transport should relay verbatim.
func (s *Server) handleBotWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ChatID) == "" {
		writeError(w, http.StatusBadRequest, "missing chatId")
		return
	}

	reply := s.engine.Handle(r.Context(), req.ChatID, req.Text)

	// A chat message may have recorded a transaction; drop the owner's
	// cached analytics rather than inspecting the reply.
	if owner, err := s.bindings.OwnerForChat(r.Context(), req.ChatID); err == nil {
		s.invalidateAnalytics(owner)
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
