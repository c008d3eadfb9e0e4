// Package ledger keeps the session's copy of incomes and expenses fetched
// from the transaction store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"fintrack/internal/core"
)

var ErrClosed = errors.New("ledger closed")

// Store is the remote collaborator holding the canonical records.
type Store interface {
	ListTransactions(ctx context.Context, kind core.Kind) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, kind core.Kind, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, kind core.Kind, id string) error
}

// Snapshot is a point-in-time copy of both collections.
type Snapshot struct {
	Incomes  []core.Transaction
	Expenses []core.Transaction
}

type collection struct {
	items     []core.Transaction
	fetchedAt time.Time
	// started counts fetches begun; applied is the newest one committed.
	started uint64
	applied uint64
}

// Cache holds the last successful fetch of each collection. Reads return
// copies and never nil. Concurrent refreshes of one kind share a single
// store request.
type Cache struct {
	store      Store
	categories core.CategoryChecker
	group      singleflight.Group

	mu     sync.RWMutex
	data   map[core.Kind]*collection
	closed bool
}

// New returns an empty cache over store. categories may be nil to skip the
// vocabulary check on AddTransaction.
func New(store Store, categories core.CategoryChecker) *Cache {
	return &Cache{
		store:      store,
		categories: categories,
		data: map[core.Kind]*collection{
			core.KindIncome:  {},
			core.KindExpense: {},
		},
	}
}

func (c *Cache) RefreshIncomes(ctx context.Context) error {
	return c.Refresh(ctx, core.KindIncome)
}

func (c *Cache) RefreshExpenses(ctx context.Context) error {
	return c.Refresh(ctx, core.KindExpense)
}

// Refresh replaces the cached collection of kind with the store's current
// contents. On failure the previous collection is kept as is.
func (c *Cache) Refresh(ctx context.Context, kind core.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("refresh: %w", core.ErrInvalidKind)
	}
	if c.isClosed() {
		return ErrClosed
	}

	_, err, shared := c.group.Do(string(kind), func() (any, error) {
		seq := c.begin(kind)
		items, err := c.store.ListTransactions(ctx, kind)
		if err != nil {
			return nil, err
		}
		return nil, c.commit(kind, seq, items)
	})
	if err != nil {
		if errors.Is(err, ErrClosed) {
			return err
		}
		slog.WarnContext(ctx, "Refresh failed, keeping previous data", "kind", kind, "error", err)
		return fmt.Errorf("refresh %s: %w", kind, err)
	}
	slog.DebugContext(ctx, "Refreshed transactions", "kind", kind, "shared", shared)
	return nil
}

// RefreshAll refreshes both collections concurrently. Each side commits on
// its own, so one failure does not roll back the other.
func (c *Cache) RefreshAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return c.RefreshIncomes(ctx) })
	g.Go(func() error { return c.RefreshExpenses(ctx) })
	return g.Wait()
}

// AddTransaction validates draft locally and, only if it is valid, submits
// it to the store and refreshes that collection. A *core.ValidationError is
// returned without any store call.
//
// When the create succeeds but the refresh fails, the created record is
// returned together with the refresh error.
func (c *Cache) AddTransaction(ctx context.Context, kind core.Kind, draft core.Draft) (core.Transaction, error) {
	t, err := draft.Parse(kind, c.categories)
	if err != nil {
		return core.Transaction{}, err
	}
	if c.isClosed() {
		return core.Transaction{}, ErrClosed
	}

	created, err := c.store.CreateTransaction(ctx, kind, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create %s: %w", kind, err)
	}

	c.group.Forget(string(kind))
	if err := c.Refresh(ctx, kind); err != nil {
		return created, err
	}
	return created, nil
}

// DeleteTransaction removes id from the store and then refreshes that
// collection. The local copy is never edited directly, so a failed delete
// leaves the cache as it was.
func (c *Cache) DeleteTransaction(ctx context.Context, kind core.Kind, id string) error {
	if !kind.Valid() {
		return fmt.Errorf("delete: %w", core.ErrInvalidKind)
	}
	if id == "" {
		return &core.ValidationError{Field: "id", Reason: errors.New("empty id")}
	}
	if c.isClosed() {
		return ErrClosed
	}

	if err := c.store.DeleteTransaction(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}

	c.group.Forget(string(kind))
	return c.Refresh(ctx, kind)
}

// Incomes returns a copy of the cached incomes in fetch order.
func (c *Cache) Incomes() []core.Transaction {
	return c.read(core.KindIncome)
}

// Expenses returns a copy of the cached expenses in fetch order.
func (c *Cache) Expenses() []core.Transaction {
	return c.read(core.KindExpense)
}

// Snapshot copies both collections under one lock, so the incomes and
// expenses it returns were cached together.
func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Incomes:  clone(c.data[core.KindIncome].items),
		Expenses: clone(c.data[core.KindExpense].items),
	}
}

// FetchedAt reports when kind was last refreshed successfully. It is zero
// before the first fetch.
func (c *Cache) FetchedAt(kind core.Kind) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if col, ok := c.data[kind]; ok {
		return col.fetchedAt
	}
	return time.Time{}
}

// Close stops the cache from applying responses. Requests already in
// flight complete but their results are dropped.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *Cache) read(kind core.Kind) []core.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.data[kind].items)
}

func (c *Cache) begin(kind core.Kind) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	col := c.data[kind]
	col.started++
	return col.started
}

// commit installs items unless the cache is closed or a newer fetch of the
// same kind already landed.
func (c *Cache) commit(kind core.Kind, seq uint64, items []core.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	col := c.data[kind]
	if seq < col.applied {
		return nil
	}
	col.items = clone(items)
	col.applied = seq
	col.fetchedAt = time.Now()
	return nil
}

func (c *Cache) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func clone(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}
