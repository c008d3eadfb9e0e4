// Package http serves the transaction store API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	appLog "fintrack/internal/log"
	"fintrack/internal/store"
)

const (
	maxBodyBytes    = 1 << 20
	cleanupInterval = 5 * time.Minute
	readyTimeout    = 2 * time.Second
)

// TransactionService is the slice of services.TransactionService the
// handlers use. userID is the authenticated session's user.
type TransactionService interface {
	List(ctx context.Context, userID string, kind core.Kind) ([]core.Transaction, error)
	Create(ctx context.Context, userID string, kind core.Kind, t core.Transaction) (core.Transaction, error)
	Delete(ctx context.Context, userID string, kind core.Kind, id string) error
}

// Authenticator is implemented by *auth.Service.
type Authenticator interface {
	Signup(ctx context.Context, name, email, password string) (core.User, error)
	Login(ctx context.Context, email, password string) (string, auth.Session, error)
	Authenticate(token string) (auth.Session, error)
	Logout(token string)
}

type Options struct {
	Addr         string
	Transactions TransactionService
	Auth         Authenticator
	// Ready is pinged by /readyz when set.
	Ready store.Pinger
	// Logger defaults to an app logger on stdout.
	Logger *appLog.Logger
	// RateLimitPerMinute caps POSTs per client IP. Zero disables it.
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	transactions TransactionService
	auth         Authenticator
	ready        store.Pinger
	logger       *appLog.Logger
	reqLog       *appLog.StructuredLogger
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and returns a server ready for
// ListenAndServe. Callers set timeouts on the embedded http.Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = appLog.New(appLog.DefaultConfig())
	}

	s := &Server{
		transactions: opts.Transactions,
		auth:         opts.Auth,
		ready:        opts.Ready,
		logger:       logger,
		reqLog:       appLog.NewStructuredLogger(logger),
		rateLimiter:  newRateLimiter(opts.RateLimitPerMinute),
	}
	s.Addr = opts.Addr
	s.Handler = s.routes()

	go s.rateLimiter.startCleanup(cleanupInterval)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appLog.Middleware(s.logger, func(r *http.Request) string {
		return middleware.GetReqID(r.Context())
	}))
	r.Use(s.requestLogging)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed here")
	})

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Use(s.rateLimit)

		r.Post("/signup", s.handleSignup)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/logout", s.handleLogout)
			for _, kind := range []core.Kind{core.KindIncome, core.KindExpense} {
				r.Get("/get-"+string(kind)+"s", s.handleList(kind))
				r.Post("/add-"+string(kind), s.handleCreate(kind))
				r.Delete("/delete-"+string(kind)+"/{id}", s.handleDelete(kind))
			}
		})
	})

	return r
}

// Shutdown stops the rate limiter cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
