// Package auth handles accounts and bearer sessions for the store server.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

const (
	tokenLength       = 32
	minPasswordLength = 6
	maxPasswordLength = 72 // bcrypt input limit
	maxNameLength     = 100
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("missing or expired session")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidSignup      = errors.New("invalid signup")
)

// Session is what a bearer token resolves to.
type Session struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

type Options struct {
	SessionTTL  time.Duration
	MaxSessions int
	// Cost is the bcrypt cost. Zero means bcrypt.DefaultCost.
	Cost int
	Now  func() time.Time
}

type Service struct {
	users    store.UserRepository
	sessions *cache.LRU[Session]
	ttl      time.Duration
	cost     int
	now      func() time.Time
}

func NewService(users store.UserRepository, opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	cost := opts.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users: users,
		sessions: cache.New[Session](cache.Options{
			MaxEntries: opts.MaxSessions,
			TTL:        opts.SessionTTL,
			Now:        now,
		}),
		ttl:  opts.SessionTTL,
		cost: cost,
		now:  now,
	}
}

// Sessions exposes the session cache so a janitor can sweep it.
func (s *Service) Sessions() cache.Sweeper {
	return s.sessions
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an account. The email is matched case-insensitively.
func (s *Service) Signup(ctx context.Context, name, email, password string) (core.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	switch {
	case name == "":
		return core.User{}, fmt.Errorf("%w: name is required", ErrInvalidSignup)
	case len(name) > maxNameLength:
		return core.User{}, fmt.Errorf("%w: name too long", ErrInvalidSignup)
	case !validEmail(email):
		return core.User{}, fmt.Errorf("%w: invalid email", ErrInvalidSignup)
	case len(password) < minPasswordLength:
		return core.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignup, minPasswordLength)
	case len(password) > maxPasswordLength:
		return core.User{}, fmt.Errorf("%w: password too long", ErrInvalidSignup)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := core.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return core.User{}, ErrEmailTaken
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User signed up", "user_id", u.ID)
	return u, nil
}

// Login checks the password and opens a session. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (string, Session, error) {
	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", Session{}, ErrInvalidCredentials
		}
		return "", Session{}, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", Session{}, ErrInvalidCredentials
	}

	token, err := generateToken()
	if err != nil {
		return "", Session{}, err
	}
	sess := Session{UserID: u.ID, Email: u.Email}
	if s.ttl > 0 {
		sess.ExpiresAt = s.now().Add(s.ttl)
	}
	s.sessions.Put(token, sess)

	slog.InfoContext(ctx, "User logged in", "user_id", u.ID)
	return token, sess, nil
}

// Authenticate resolves a bearer token to its session.
func (s *Service) Authenticate(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	sess, ok := s.sessions.Get(token)
	if !ok {
		return Session{}, ErrUnauthorized
	}
	return sess, nil
}

// Logout ends a session. Unknown tokens are ignored.
func (s *Service) Logout(token string) {
	s.sessions.Remove(token)
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func generateToken() (string, error) {
	b := make([]byte, tokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
