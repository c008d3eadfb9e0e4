// Package store defines the persistence ports of the transaction store
// server. Backends live in the subpackages.
package store

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Ports for outbound adapters.
type (
	// TransactionRepository keeps incomes and expenses, each owned by one
	// user. Ids are unique per kind across all users; List and Delete only
	// see the owner's records, so another user's id reads as ErrNotFound.
	// List returns records in insertion order.
	TransactionRepository interface {
		Insert(ctx context.Context, userID string, t core.Transaction) error
		List(ctx context.Context, userID string, kind core.Kind) ([]core.Transaction, error)
		Delete(ctx context.Context, userID string, kind core.Kind, id string) error
	}

	// UserRepository keeps accounts. Emails are stored as given; callers
	// normalise them.
	UserRepository interface {
		CreateUser(ctx context.Context, u core.User) error
		UserByEmail(ctx context.Context, email string) (core.User, error)
	}

	Repository interface {
		TransactionRepository
		UserRepository
	}

	// Pinger is implemented by backends that can report readiness.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
