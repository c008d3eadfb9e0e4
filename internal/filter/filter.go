// Package filter narrows transaction collections by month and category.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"
)

var (
	ErrUnknownMonth    = errors.New("unknown month")
	ErrUnknownCategory = errors.New("unknown category")
)

// Selection is an optional month name and an optional category tag. An
// empty field places no restriction on that axis.
type Selection struct {
	Month    string
	Category string
}

// FilterByMonthAndCategory keeps the transactions whose date falls in month
// and whose category equals category. Both comparisons are exact and
// case-sensitive. The input is left untouched and the result keeps its
// relative order. The result is never nil.
func FilterByMonthAndCategory(txs []core.Transaction, month, category string) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if month != "" && t.Date.MonthName() != month {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Apply filters txs by the selection's month and category.
func (s Selection) Apply(txs []core.Transaction) []core.Transaction {
	return FilterByMonthAndCategory(txs, s.Month, s.Category)
}

// IsZero reports whether the selection restricts nothing.
func (s Selection) IsZero() bool {
	return s.Month == "" && s.Category == ""
}

// Validate checks the month against the canonical month names and, when
// categories is non-nil, the category against the vocabulary.
func (s Selection) Validate(categories core.CategoryChecker) error {
	if s.Month != "" && !IsMonth(s.Month) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownMonth, s.Month, strings.Join(Months(), ", "))
	}
	if s.Category != "" && categories != nil && !categories.Contains(s.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
	}
	return nil
}

// Months returns "January" through "December".
func Months() []string {
	out := make([]string, 12)
	for m := time.January; m <= time.December; m++ {
		out[m-1] = m.String()
	}
	return out
}

// IsMonth reports whether name is a full English month name in canonical
// case, such as "March".
func IsMonth(name string) bool {
	for m := time.January; m <= time.December; m++ {
		if m.String() == name {
			return true
		}
	}
	return false
}
