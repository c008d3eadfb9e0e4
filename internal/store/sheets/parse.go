package sheets

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// ownerColumn is the zero-based index of the UserID column.
const ownerColumn = 7

func transactionRow(userID string, t core.Transaction) []any {
	return []any{t.ID, string(t.Kind), t.Date.String(), t.Title, string(t.Amount), t.Category, t.Description, userID}
}

// parseTransactionRow reads a row written by transactionRow and returns the
// transaction with its owner. Cleared rows and rows without an id or a
// known type are skipped. Amounts are kept as text so malformed cells stay
// visible downstream.
func parseTransactionRow(row []any) (core.Transaction, string, bool) {
	cols := toStrings(row)
	id := safeGet(cols, 0)
	if id == "" {
		return core.Transaction{}, "", false
	}
	kind, err := core.ParseKind(safeGet(cols, 1))
	if err != nil {
		return core.Transaction{}, "", false
	}
	t := core.Transaction{
		ID:          id,
		Kind:        kind,
		Title:       safeGet(cols, 3),
		Amount:      core.Amount(safeGet(cols, 4)),
		Category:    safeGet(cols, 5),
		Description: safeGet(cols, 6),
	}
	if d, err := core.ParseDate(safeGet(cols, 2)); err == nil {
		t.Date = d
	}
	return t, safeGet(cols, ownerColumn), true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
