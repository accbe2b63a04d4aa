// Package http exposes the JSON API: transaction CRUD, analytics, chat
// linking, and the bot webhook.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finflow/internal/bot"
	"finflow/internal/cache"
	"finflow/internal/services"
	"finflow/internal/store"
)

type Server struct {
	http.Server
	service      *services.TransactionService
	transactions store.TransactionStore
	bindings     store.BindingStore
	engine       *bot.Engine
	rateLimiter  *rateLimiter

	// Cached analytics per owner and window, invalidated on writes.
	analyticsCache *cache.LRUCache[analyticsResponse]

	now          func() time.Time
	shutdownOnce sync.Once
}

func NewServer(
	addr string,
	service *services.TransactionService,
	transactions store.TransactionStore,
	bindings store.BindingStore,
	engine *bot.Engine,
	cacheSize int,
	cacheTTL time.Duration,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		service:        service,
		transactions:   transactions,
		bindings:       bindings,
		engine:         engine,
		rateLimiter:    newRateLimiter(),
		analyticsCache: cache.NewLRUCache[analyticsResponse](cacheSize, cacheTTL),
		now:            time.Now,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.withMiddleware(s.handleListTransactions))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.withMiddleware(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withMiddleware(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/analytics", s.withMiddleware(s.handleAnalytics))
	mux.HandleFunc("GET /api/balance", s.withMiddleware(s.handleBalance))

	mux.HandleFunc("POST /api/chat/link", s.withMiddleware(s.handleChatLink))
	mux.HandleFunc("POST /api/bot/webhook", s.withMiddleware(s.handleBotWebhook))

	return s
}

// SetClock overrides the time source, for tests.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// Shutdown stops the HTTP server and the limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withMiddleware adds security headers, rate limiting of mutating
// requests, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.DebugContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if mutating(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) cacheKey(owner, window string) string {
	return owner + "|" + window
}

// invalidateAnalytics drops every cached window for the owner. Called
// after any write on the owner's transactions.
func (s *Server) invalidateAnalytics(owner string) {
	s.analyticsCache.DeletePrefix(owner + "|")
}
