// Package aggregate computes totals over transaction collections using exact
// decimal arithmetic.
package aggregate

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// FormatDefect describes a transaction whose amount could not be used. It
// contributes zero to any total.
type FormatDefect struct {
	ID    string
	Title string
	Raw   string
	Err   error
}

func (d FormatDefect) Error() string {
	return fmt.Sprintf("transaction %q (%s): bad amount %q: %v", d.ID, d.Title, d.Raw, d.Err)
}

func (d FormatDefect) Unwrap() error { return d.Err }

// Totals holds the derived sums for one income/expense pair.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

type CategoryTotal struct {
	Category string
	Count    int
	Total    decimal.Decimal
}

// Sum adds every amount in txs and reports the transactions it had to skip.
func Sum(txs []core.Transaction) (decimal.Decimal, []FormatDefect) {
	total := decimal.Zero
	var defects []FormatDefect
	for _, t := range txs {
		d, err := t.Amount.Decimal()
		if err != nil {
			defects = append(defects, FormatDefect{ID: t.ID, Title: t.Title, Raw: string(t.Amount), Err: err})
			continue
		}
		total = total.Add(d)
	}
	return total, defects
}

// SumAmounts is Sum with each defect logged at warn level. It never fails;
// an empty collection sums to zero.
func SumAmounts(txs []core.Transaction) decimal.Decimal {
	total, defects := Sum(txs)
	for _, d := range defects {
		slog.Warn("Skipping transaction with malformed amount",
			"id", d.ID, "title", d.Title, "amount", d.Raw, "error", d.Err)
	}
	return total
}

// TotalBalance is incomes minus expenses and may be negative.
func TotalBalance(incomes, expenses []core.Transaction) decimal.Decimal {
	return SumAmounts(incomes).Sub(SumAmounts(expenses))
}

// Compute sums both collections and derives the balance as income minus
// expense. Malformed amounts count as zero.
func Compute(incomes, expenses []core.Transaction) Totals {
	in := SumAmounts(incomes)
	out := SumAmounts(expenses)
	return Totals{Income: in, Expense: out, Balance: in.Sub(out)}
}

// ByCategory groups txs by category in first-seen order.
func ByCategory(txs []core.Transaction) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, t := range txs {
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, CategoryTotal{Category: t.Category, Total: decimal.Zero})
		}
		out[i].Count++
		if d, err := t.Amount.Decimal(); err == nil {
			out[i].Total = out[i].Total.Add(d)
		}
	}
	return out
}
