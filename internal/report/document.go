// Package report assembles filtered transactions into a paginated document
// and renders it to bytes.
package report

import (
	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/heading"
)

const (
	DefaultTitle    = "Filtered Income and Expenses"
	DefaultCurrency = "K"
	DateLayout      = "02 Jan 2006"
	baseFilename    = "filtered-income-expenses"
)

// Columns is the header row shared by every table.
var Columns = [3]string{"Title", "Amount", "Date"}

// Document is a renderer-independent report. Each section starts on a new
// page.
type Document struct {
	Title    string
	Sections []Section
}

type Section struct {
	Kind    core.Kind
	Heading string
	Rows    []Row
	// Total is the formatted sum, e.g. "+K100.00".
	Total string
	// Defects counts rows whose amount could not be summed.
	Defects int
}

type Row struct {
	Title  string
	Amount string
	Date   string
}

// TotalLine renders "Total Income: +K100.00".
func (s Section) TotalLine() string {
	return "Total " + s.Kind.Title() + ": " + s.Total
}

type Options struct {
	Title    string
	Currency string
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if o.Currency == "" {
		o.Currency = DefaultCurrency
	}
	return o
}

// BuildReport lays out the filtered incomes on the first page and the
// filtered expenses on the second. Rows keep the order they were given in.
// An empty collection yields a header-only table with a zero total.
func BuildReport(incomes, expenses []core.Transaction, sel filter.Selection, opts Options) Document {
	opts = opts.withDefaults()
	return Document{
		Title: opts.Title,
		Sections: []Section{
			buildSection(core.KindIncome, incomes, sel, opts.Currency),
			buildSection(core.KindExpense, expenses, sel, opts.Currency),
		},
	}
}

func buildSection(kind core.Kind, txs []core.Transaction, sel filter.Selection, currency string) Section {
	total, defects := aggregate.Sum(txs)
	rows := make([]Row, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, Row{
			Title:  t.Title,
			Amount: FormatAmount(kind, t.Amount, currency),
			Date:   FormatDate(t.Date),
		})
	}
	return Section{
		Kind:    kind,
		Heading: heading.DescribeFilter(kind, sel.Month, sel.Category),
		Rows:    rows,
		Total:   kind.Sign() + currency + total.StringFixed(2),
		Defects: len(defects),
	}
}
