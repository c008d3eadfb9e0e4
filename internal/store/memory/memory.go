package memory

import (
	"context"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type owned struct {
	userID string
	tx     core.Transaction
}

// Store keeps everything in process memory. It is the default backend and
// the one used by tests.
type Store struct {
	mu    sync.Mutex
	txs   map[core.Kind][]owned
	users map[string]core.User
}

var _ store.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		txs:   make(map[core.Kind][]owned),
		users: make(map[string]core.User),
	}
}

// Seed inserts txs for userID, skipping ids already present.
func (s *Store) Seed(userID string, txs ...core.Transaction) *Store {
	for _, t := range txs {
		_ = s.Insert(context.Background(), userID, t)
	}
	return s
}

func (s *Store) Insert(_ context.Context, userID string, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.txs[t.Kind] {
		if existing.tx.ID == t.ID {
			return store.ErrDuplicate
		}
	}
	s.txs[t.Kind] = append(s.txs[t.Kind], owned{userID: userID, tx: t})
	return nil
}

func (s *Store) List(_ context.Context, userID string, kind core.Kind) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Transaction{}
	for _, o := range s.txs[kind] {
		if o.userID == userID {
			out = append(out, o.tx)
		}
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, userID string, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.txs[kind]
	for i, o := range items {
		if o.tx.ID == id && o.userID == userID {
			s.txs[kind] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Email]; ok {
		return store.ErrDuplicate
	}
	s.users[u.Email] = u
	return nil
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return core.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) Ping(context.Context) error { return nil }
