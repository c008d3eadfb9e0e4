package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

func openTemp(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository { return openTemp(t) })
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fintrack.db")
	ctx := context.Background()

	repo, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, storetest.Owner, storetest.Transaction("a", core.KindIncome, "Bonus", "100", 5)))
	require.NoError(t, repo.Close())

	repo, err = Open(path)
	require.NoError(t, err)
	defer repo.Close()

	got, err := repo.List(ctx, storetest.Owner, core.KindIncome)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bonus", got[0].Title)
	assert.NoError(t, repo.Ping(ctx))
}

func TestSameIDDifferentKind(t *testing.T) {
	repo := openTemp(t)
	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, storetest.Owner, storetest.Transaction("same", core.KindIncome, "A", "1", 1)))
	assert.NoError(t, repo.Insert(ctx, storetest.Owner, storetest.Transaction("same", core.KindExpense, "B", "2", 2)))
}
