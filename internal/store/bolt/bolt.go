// Package bolt is the embedded key/value backend of the transaction store.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Bucket names. Each kind has a data bucket holding one nested bucket per
// owner, keyed by insertion sequence, and an index bucket mapping
// transaction id to the owner's sequence key followed by the owner id.
const (
	BucketIncomes    = "incomes"
	BucketExpenses   = "expenses"
	BucketIncomeIDs  = "income_ids"
	BucketExpenseIDs = "expense_ids"
	BucketUsers      = "users"
)

// ownerPrefix keeps nested bucket names non-empty.
const ownerPrefix = "u:"

type Store struct {
	db *bolt.DB
}

var _ store.Repository = (*Store)(nil)

// Open creates the database file and buckets if needed.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{BucketIncomes, BucketExpenses, BucketIncomeIDs, BucketExpenseIDs, BucketUsers} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error { return nil })
}

func buckets(kind core.Kind) (data, ids string, err error) {
	switch kind {
	case core.KindIncome:
		return BucketIncomes, BucketIncomeIDs, nil
	case core.KindExpense:
		return BucketExpenses, BucketExpenseIDs, nil
	}
	return "", "", core.ErrInvalidKind
}

func ownerBucket(userID string) []byte {
	return []byte(ownerPrefix + userID)
}

func (s *Store) Insert(_ context.Context, userID string, t core.Transaction) error {
	dataName, idsName, err := buckets(t.Kind)
	if err != nil {
		return err
	}
	value, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket([]byte(idsName))
		if ids.Get([]byte(t.ID)) != nil {
			return store.ErrDuplicate
		}
		data, err := tx.Bucket([]byte(dataName)).CreateBucketIfNotExists(ownerBucket(userID))
		if err != nil {
			return fmt.Errorf("failed to create owner bucket: %w", err)
		}
		seq, err := data.NextSequence()
		if err != nil {
			return err
		}
		key := itob(seq)
		if err := data.Put(key, value); err != nil {
			return err
		}
		return ids.Put([]byte(t.ID), append(key, userID...))
	})
}

func (s *Store) List(_ context.Context, userID string, kind core.Kind) ([]core.Transaction, error) {
	dataName, _, err := buckets(kind)
	if err != nil {
		return nil, err
	}
	out := []core.Transaction{}
	err = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(dataName)).Bucket(ownerBucket(userID))
		if data == nil {
			return nil
		}
		// Big-endian keys iterate in insertion order.
		return data.ForEach(func(_, v []byte) error {
			var t core.Transaction
			if err := json.Unmarshal(v, &t); err != nil {
				return fmt.Errorf("failed to unmarshal transaction: %w", err)
			}
			t.Kind = kind
			out = append(out, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, userID string, kind core.Kind, id string) error {
	dataName, idsName, err := buckets(kind)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket([]byte(idsName))
		entry := ids.Get([]byte(id))
		if len(entry) < 8 || string(entry[8:]) != userID {
			return store.ErrNotFound
		}
		// entry is only valid for the life of the transaction.
		key := append([]byte(nil), entry[:8]...)
		data := tx.Bucket([]byte(dataName)).Bucket(ownerBucket(userID))
		if data == nil {
			return store.ErrNotFound
		}
		if err := data.Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
}

func (s *Store) CreateUser(_ context.Context, u core.User) error {
	value, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketUsers))
		if b.Get([]byte(u.Email)) != nil {
			return store.ErrDuplicate
		}
		return b.Put([]byte(u.Email), value)
	})
}

func (s *Store) UserByEmail(_ context.Context, email string) (core.User, error) {
	var u core.User
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(BucketUsers)).Get([]byte(email))
		if data == nil {
			return store.ErrNotFound
		}
		return json.Unmarshal(data, &u)
	})
	return u, err
}

// itob converts a sequence number to a big-endian key.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
