package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/auth"
	appLog "fintrack/internal/log"
)

type contextKey string

const (
	contextKeyToken   contextKey = "token"
	contextKeySession contextKey = "session"
)

// sessionFrom returns the session requireAuth stored in ctx.
func sessionFrom(ctx context.Context) (auth.Session, bool) {
	sess, ok := ctx.Value(contextKeySession).(auth.Session)
	return sess, ok
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		s.reqLog.LogHTTPStart(r.Context(), r, clientIP)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.reqLog.LogHTTPEnd(r.Context(), r, status, time.Since(start).Milliseconds(), clientIP)
	})
}

// rateLimit applies the per-IP limiter to POST requests.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			clientIP := extractClientIP(r)
			if !s.rateLimiter.allow(clientIP) {
				appLog.FromContext(r.Context()).WithComponent(appLog.ComponentRateLimit).
					WarnContext(r.Context(), "Rate limit exceeded", appLog.FieldClientIP, clientIP, appLog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				writeJSONError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a live bearer session and puts the
// session and its token in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		sess, err := s.auth.Authenticate(token)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack", error="invalid_token"`)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyToken, token)
		ctx = context.WithValue(ctx, contextKeySession, sess)
		logger := appLog.FromContext(ctx).With(appLog.FieldUserID, sess.UserID)
		next.ServeHTTP(w, r.WithContext(appLog.NewContext(ctx, logger)))
	})
}
