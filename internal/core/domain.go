package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

type (
	// Kind tells incomes and expenses apart. Both share the Transaction shape.
	Kind string

	Transaction struct {
		ID          string `json:"id,omitempty"`
		Kind        Kind   `json:"type,omitempty"`
		Title       string `json:"title"`
		Amount      Amount `json:"amount"`
		Date        Date   `json:"date"`
		Category    string `json:"category"`
		Description string `json:"description,omitempty"`
	}

	// Draft is unvalidated user input for a new transaction.
	Draft struct {
		Title       string
		Amount      string
		Date        string
		Category    string
		Description string
	}

	User struct {
		ID           string
		Name         string
		Email        string
		PasswordHash string
		CreatedAt    time.Time
	}
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrEmptyTitle      = errors.New("empty title")
	ErrEmptyCategory   = errors.New("empty category")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidKind     = errors.New("invalid transaction kind")
	ErrTitleTooLong    = errors.New("title too long (max 120 characters)")
	ErrDescriptionLong = errors.New("description too long (max 500 characters)")
	ErrMissingDate     = errors.New("date is required")
)

const (
	maxTitleLen       = 120
	maxDescriptionLen = 500
)

// ValidationError reports a local input that failed a precondition.
// It matches ErrValidation and the underlying reason with errors.Is.
type ValidationError struct {
	Field  string
	Reason error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Reason}
}

func invalid(field string, reason error) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseKind accepts "income"/"expense" in any case, plus their plurals.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes":
		return KindIncome, nil
	case "expense", "expenses":
		return KindExpense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Title returns the capitalized kind, e.g. "Income".
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// Sign is the prefix used when displaying amounts of this kind.
func (k Kind) Sign() string {
	if k == KindExpense {
		return "-"
	}
	return "+"
}

// CategoryChecker reports whether a category tag is known.
type CategoryChecker interface {
	Contains(tag string) bool
}

// Validate checks the invariants every stored transaction must hold.
// A nil checker skips the vocabulary check.
func (t Transaction) Validate(categories CategoryChecker) error {
	if !t.Kind.Valid() {
		return invalid("type", ErrInvalidKind)
	}
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return invalid("title", ErrEmptyTitle)
	}
	if len(title) > maxTitleLen {
		return invalid("title", ErrTitleTooLong)
	}
	if _, err := t.Amount.Decimal(); err != nil {
		return invalid("amount", err)
	}
	if t.Date.IsZero() {
		return invalid("date", ErrMissingDate)
	}
	if err := t.Date.Validate(); err != nil {
		return invalid("date", err)
	}
	cat := strings.TrimSpace(t.Category)
	if cat == "" {
		return invalid("category", ErrEmptyCategory)
	}
	if categories != nil && !categories.Contains(cat) {
		return invalid("category", fmt.Errorf("%w: %q", ErrUnknownCategory, cat))
	}
	if len(t.Description) > maxDescriptionLen {
		return invalid("description", ErrDescriptionLong)
	}
	return nil
}

// Parse turns a draft into a transaction of the given kind. Nothing leaves
// the process when this fails.
func (d Draft) Parse(kind Kind, categories CategoryChecker) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, invalid("type", ErrInvalidKind)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, invalid("amount", err)
	}
	if strings.TrimSpace(d.Date) == "" {
		return Transaction{}, invalid("date", ErrMissingDate)
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return Transaction{}, invalid("date", err)
	}
	t := Transaction{
		Kind:        kind,
		Title:       strings.TrimSpace(d.Title),
		Amount:      NewAmount(amount),
		Date:        date,
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
	}
	if err := t.Validate(categories); err != nil {
		return Transaction{}, err
	}
	return t, nil
}
