package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/store/storetest"
)

// fakeValues is an in-memory grid understanding "Sheet!A:H" and
// "Sheet!A5:H5" style ranges.
type fakeValues struct {
	mu     sync.Mutex
	sheets map[string][][]any
	calls  int
}

func newFakeValues() *fakeValues {
	return &fakeValues{sheets: map[string][][]any{}}
}

var rowRange = regexp.MustCompile(`^[A-Z]+(\d+):[A-Z]+(\d+)$`)

func splitRange(rng string) (sheet string, row int) {
	sheet, cells, _ := strings.Cut(rng, "!")
	if m := rowRange.FindStringSubmatch(cells); m != nil {
		row, _ = strconv.Atoi(m[1])
	}
	return sheet, row
}

func (f *fakeValues) Get(_ context.Context, rng string) ([][]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	sheet, row := splitRange(rng)
	grid := f.sheets[sheet]
	if row > 0 {
		if row > len(grid) {
			return nil, nil
		}
		return [][]any{grid[row-1]}, nil
	}
	// The API omits trailing empty rows.
	end := len(grid)
	for end > 0 && len(grid[end-1]) == 0 {
		end--
	}
	out := make([][]any, end)
	copy(out, grid[:end])
	return out, nil
}

func (f *fakeValues) Update(_ context.Context, rng string, rows [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	sheet, row := splitRange(rng)
	if row == 0 || len(rows) != 1 {
		return fmt.Errorf("unsupported range %q", rng)
	}
	grid := f.sheets[sheet]
	for len(grid) < row {
		grid = append(grid, nil)
	}
	grid[row-1] = rows[0]
	f.sheets[sheet] = grid
	return nil
}

func (f *fakeValues) Clear(_ context.Context, rng string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	sheet, row := splitRange(rng)
	if grid := f.sheets[sheet]; row > 0 && row <= len(grid) {
		grid[row-1] = nil
	}
	return nil
}

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		return New(newFakeValues(), Options{})
	})
}

func TestInsertWritesHeaderOnce(t *testing.T) {
	fv := newFakeValues()
	s := New(fv, Options{TransactionsSheet: "Ledger"})
	ctx := context.Background()

	if err := s.Insert(ctx, storetest.Owner, storetest.Transaction("a", core.KindIncome, "Bonus", "100", 5)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := s.Insert(ctx, storetest.Owner, storetest.Transaction("b", core.KindExpense, "Fuel", "40", 10)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	grid := fv.sheets["Ledger"]
	if len(grid) != 3 {
		t.Fatalf("grid has %d rows, want 3", len(grid))
	}
	if grid[0][0] != "ID" || grid[0][4] != "Amount" {
		t.Errorf("unexpected header: %v", grid[0])
	}
	if grid[2][0] != "b" || grid[2][1] != "expense" || grid[2][2] != "2024-03-10" || grid[2][7] != storetest.Owner {
		t.Errorf("unexpected row: %v", grid[2])
	}
}

func TestDeleteClearsRow(t *testing.T) {
	fv := newFakeValues()
	s := New(fv, Options{})
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		if err := s.Insert(ctx, storetest.Owner, storetest.Transaction(id, core.KindIncome, id, "1", 1)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	if err := s.Delete(ctx, storetest.Owner, core.KindIncome, "a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	grid := fv.sheets[DefaultTransactionsSheet]
	if len(grid[1]) != 0 {
		t.Fatalf("row 2 not cleared: %v", grid[1])
	}

	got, err := s.List(ctx, storetest.Owner, core.KindIncome)
	if err != nil || len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("List = %v, %v", got, err)
	}
}

func TestParseTransactionRow(t *testing.T) {
	tests := []struct {
		name   string
		row    []any
		ok     bool
		amount core.Amount
		month  string
		owner  string
	}{
		{"full", []any{"x1", "income", "2024-03-05", "Bonus", "100", "media", "ref", "u1"}, true, "100", "March", "u1"},
		{"numeric cells", []any{"x2", "expense", "2024-07-01", "Fuel", 40.5, "farm", "", "u2"}, true, "40.5", "July", "u2"},
		{"corrupt amount kept", []any{"x3", "expense", "2024-07-01", "Fuel", "forty", "farm"}, true, "forty", "July", ""},
		{"bad date", []any{"x4", "income", "yesterday", "Tip", "5", "other"}, true, "5", "", ""},
		{"cleared", []any{}, false, "", "", ""},
		{"header", []any{"ID", "Type", "Date"}, false, "", "", ""},
		{"unknown type", []any{"x5", "loan", "2024-01-01", "t", "1", "other"}, false, "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, owner, ok := parseTransactionRow(tt.row)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if owner != tt.owner {
				t.Errorf("owner = %q, want %q", owner, tt.owner)
			}
			if got.Amount != tt.amount {
				t.Errorf("amount = %q, want %q", got.Amount, tt.amount)
			}
			if got.Date.MonthName() != tt.month {
				t.Errorf("month = %q, want %q", got.Date.MonthName(), tt.month)
			}
		})
	}
}
