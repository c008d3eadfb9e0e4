// Package sheets stores transactions and users in a Google Spreadsheet, one
// row per record. The owning user id sits in the last transaction column.
// Deleted rows are cleared rather than removed so row numbers stay stable.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

const (
	DefaultTransactionsSheet = "Transactions"
	DefaultUsersSheet        = "Users"
)

var (
	transactionHeader = []any{"ID", "Type", "Date", "Title", "Amount", "Category", "Description", "UserID"}
	userHeader        = []any{"ID", "Name", "Email", "PasswordHash", "CreatedAt"}
)

type Store struct {
	values            Values
	transactionsSheet string
	usersSheet        string

	// mu serialises writers; row allocation is read-then-write.
	mu sync.Mutex
}

var _ store.Repository = (*Store)(nil)

type Options struct {
	TransactionsSheet string
	UsersSheet        string
}

func New(values Values, opts Options) *Store {
	if opts.TransactionsSheet == "" {
		opts.TransactionsSheet = DefaultTransactionsSheet
	}
	if opts.UsersSheet == "" {
		opts.UsersSheet = DefaultUsersSheet
	}
	return &Store{
		values:            values,
		transactionsSheet: opts.TransactionsSheet,
		usersSheet:        opts.UsersSheet,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.values.Get(ctx, s.transactionsSheet+"!A1:A1")
	return err
}

func (s *Store) Insert(ctx context.Context, userID string, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.values.Get(ctx, s.transactionsSheet+"!A:H")
	if err != nil {
		return err
	}
	if findTransactionRow(rows, t.Kind, t.ID) > 0 {
		return store.ErrDuplicate
	}
	return s.appendRow(ctx, s.transactionsSheet, "H", rows, transactionHeader, transactionRow(userID, t))
}

func (s *Store) List(ctx context.Context, userID string, kind core.Kind) ([]core.Transaction, error) {
	rows, err := s.values.Get(ctx, s.transactionsSheet+"!A:H")
	if err != nil {
		return nil, err
	}
	out := []core.Transaction{}
	for i, row := range rows {
		t, owner, ok := parseTransactionRow(row)
		if !ok || (i == 0 && isHeader(row)) || t.Kind != kind || owner != userID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, userID string, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.values.Get(ctx, s.transactionsSheet+"!A:H")
	if err != nil {
		return err
	}
	n := findTransactionRow(rows, kind, id)
	if n == 0 || safeGet(toStrings(rows[n-1]), ownerColumn) != userID {
		return store.ErrNotFound
	}
	return s.values.Clear(ctx, fmt.Sprintf("%s!A%d:H%d", s.transactionsSheet, n, n))
}

func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.values.Get(ctx, s.usersSheet+"!A:E")
	if err != nil {
		return err
	}
	if findUserRow(rows, u.Email) > 0 {
		return store.ErrDuplicate
	}
	row := []any{u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UTC().Format(time.RFC3339)}
	return s.appendRow(ctx, s.usersSheet, "E", rows, userHeader, row)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (core.User, error) {
	rows, err := s.values.Get(ctx, s.usersSheet+"!A:E")
	if err != nil {
		return core.User{}, err
	}
	n := findUserRow(rows, email)
	if n == 0 {
		return core.User{}, store.ErrNotFound
	}
	cols := toStrings(rows[n-1])
	u := core.User{
		ID:           safeGet(cols, 0),
		Name:         safeGet(cols, 1),
		Email:        safeGet(cols, 2),
		PasswordHash: safeGet(cols, 3),
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, safeGet(cols, 4))
	return u, nil
}

// appendRow writes row below the last used row, adding header first when
// the sheet is empty.
func (s *Store) appendRow(ctx context.Context, sheet, lastCol string, rows [][]any, header, row []any) error {
	nextRow := len(rows) + 1
	if len(rows) == 0 {
		if err := s.values.Update(ctx, fmt.Sprintf("%s!A1:%s1", sheet, lastCol), [][]any{header}); err != nil {
			return err
		}
		nextRow = 2
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", sheet, nextRow, lastCol, nextRow)
	return s.values.Update(ctx, rng, [][]any{row})
}

// findTransactionRow returns the 1-based sheet row holding kind/id, or 0.
func findTransactionRow(rows [][]any, kind core.Kind, id string) int {
	for i, row := range rows {
		cols := toStrings(row)
		if safeGet(cols, 0) == id && safeGet(cols, 1) == string(kind) {
			return i + 1
		}
	}
	return 0
}

func findUserRow(rows [][]any, email string) int {
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		if safeGet(toStrings(row), 2) == email {
			return i + 1
		}
	}
	return 0
}

func isHeader(row []any) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(fmt.Sprint(row[0])), "ID")
}
