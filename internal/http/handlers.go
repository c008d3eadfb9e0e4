package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	appLog "fintrack/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready.Ping(ctx); err != nil {
			appLog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", appLog.FieldError, err)
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", "store unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := s.auth.Signup(r.Context(), req.Name, req.Email, req.Password); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{Message: "account created"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	token, sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := loginResponse{Token: token, TokenType: "Bearer"}
	if !sess.ExpiresAt.IsZero() {
		resp.ExpiresAt = sess.ExpiresAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := r.Context().Value(contextKeyToken).(string); ok {
		s.auth.Logout(token)
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (s *Server) handleList(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := sessionFrom(r.Context())
		txs, err := s.transactions.List(r.Context(), sess.UserID, kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if txs == nil {
			txs = []core.Transaction{}
		}
		writeJSON(w, http.StatusOK, txs)
	}
}

func (s *Server) handleCreate(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var t core.Transaction
		if err := decodeJSON(w, r, &t); err != nil {
			writeError(w, r, err)
			return
		}
		if t.Kind != "" && t.Kind != kind {
			writeError(w, r, &core.ValidationError{Field: "type", Reason: core.ErrInvalidKind})
			return
		}

		sess, _ := sessionFrom(r.Context())
		created, err := s.transactions.Create(r.Context(), sess.UserID, kind, t)
		if err != nil {
			writeError(w, r, err)
			return
		}

		s.reqLog.LogTransactionCreated(r.Context(), created)
		writeJSON(w, http.StatusCreated, created)
	}
}

func (s *Server) handleDelete(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "missing id")
			return
		}
		sess, _ := sessionFrom(r.Context())
		if err := s.transactions.Delete(r.Context(), sess.UserID, kind, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: kind.Title() + " deleted"})
	}
}
