// Package storetest runs the same behavioural checks against every
// store.Repository backend.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Factory returns a fresh, empty repository.
type Factory func(t *testing.T) store.Repository

// Owner and Other are the user ids the contract writes as.
const (
	Owner = "user-ann"
	Other = "user-bob"
)

func Transaction(id string, kind core.Kind, title, amount string, day int) core.Transaction {
	return core.Transaction{
		ID:          id,
		Kind:        kind,
		Title:       title,
		Amount:      core.Amount(amount),
		Date:        core.NewDate(2024, 3, day),
		Category:    "farm",
		Description: "ref " + id,
	}
}

// Run exercises the repository contract.
func Run(t *testing.T, newRepo Factory) {
	t.Run("ListEmpty", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.List(context.Background(), Owner, core.KindIncome)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("InsertKeepsOrderAndKind", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		a := Transaction("a", core.KindIncome, "Bonus", "100", 5)
		b := Transaction("b", core.KindIncome, "Sale", "12.5", 1)
		c := Transaction("c", core.KindExpense, "Fuel", "40", 10)
		for _, tx := range []core.Transaction{a, b, c} {
			require.NoError(t, repo.Insert(ctx, Owner, tx))
		}

		incomes, err := repo.List(ctx, Owner, core.KindIncome)
		require.NoError(t, err)
		require.Len(t, incomes, 2)
		assert.Equal(t, "a", incomes[0].ID)
		assert.Equal(t, "b", incomes[1].ID)
		assert.Equal(t, a.Title, incomes[0].Title)
		assert.Equal(t, a.Amount, incomes[0].Amount)
		assert.True(t, a.Date.Equal(incomes[0].Date.Time))
		assert.Equal(t, a.Category, incomes[0].Category)
		assert.Equal(t, a.Description, incomes[0].Description)
		assert.Equal(t, core.KindIncome, incomes[0].Kind)

		expenses, err := repo.List(ctx, Owner, core.KindExpense)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, "c", expenses[0].ID)
	})

	t.Run("InsertDuplicate", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		tx := Transaction("dup", core.KindExpense, "Fuel", "40", 10)
		require.NoError(t, repo.Insert(ctx, Owner, tx))
		assert.ErrorIs(t, repo.Insert(ctx, Owner, tx), store.ErrDuplicate)
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, Owner, Transaction("x", core.KindExpense, "Fuel", "40", 10)))
		require.NoError(t, repo.Insert(ctx, Owner, Transaction("y", core.KindExpense, "Feed", "15", 11)))

		assert.ErrorIs(t, repo.Delete(ctx, Owner, core.KindIncome, "x"), store.ErrNotFound)
		require.NoError(t, repo.Delete(ctx, Owner, core.KindExpense, "x"))
		assert.ErrorIs(t, repo.Delete(ctx, Owner, core.KindExpense, "x"), store.ErrNotFound)

		left, err := repo.List(ctx, Owner, core.KindExpense)
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, "y", left[0].ID)
	})

	t.Run("OwnerIsolation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		require.NoError(t, repo.Insert(ctx, Owner, Transaction("mine", core.KindIncome, "Salary", "900", 1)))
		require.NoError(t, repo.Insert(ctx, Other, Transaction("theirs", core.KindIncome, "Tips", "20", 2)))

		mine, err := repo.List(ctx, Owner, core.KindIncome)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "mine", mine[0].ID)

		theirs, err := repo.List(ctx, Other, core.KindIncome)
		require.NoError(t, err)
		require.Len(t, theirs, 1)
		assert.Equal(t, "theirs", theirs[0].ID)

		assert.ErrorIs(t, repo.Delete(ctx, Other, core.KindIncome, "mine"), store.ErrNotFound)
		assert.ErrorIs(t, repo.Insert(ctx, Other, Transaction("mine", core.KindIncome, "Copy", "1", 3)), store.ErrDuplicate)

		mine, err = repo.List(ctx, Owner, core.KindIncome)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, "Salary", mine[0].Title)
	})

	t.Run("Users", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		u := core.User{
			ID:           "u1",
			Name:         "Ada",
			Email:        "ada@example.com",
			PasswordHash: "$2a$10$hash",
			CreatedAt:    time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		}
		_, err := repo.UserByEmail(ctx, u.Email)
		assert.ErrorIs(t, err, store.ErrNotFound)

		require.NoError(t, repo.CreateUser(ctx, u))
		assert.ErrorIs(t, repo.CreateUser(ctx, u), store.ErrDuplicate)

		got, err := repo.UserByEmail(ctx, u.Email)
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, u.Name, got.Name)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
		assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
	})
}
