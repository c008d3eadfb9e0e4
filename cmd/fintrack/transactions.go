package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/filter"
	"fintrack/internal/heading"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

// openLedger builds a ledger over the store and fetches both collections.
func (a *app) openLedger(ctx context.Context) (*ledger.Cache, error) {
	c, err := a.client()
	if err != nil {
		return nil, err
	}
	l := ledger.New(c, a.categories)
	if err := l.RefreshAll(ctx); err != nil {
		_ = l.Close()
		return nil, storeError(err)
	}
	a.logger.Debug("Fetched transactions",
		"incomes_at", l.FetchedAt(core.KindIncome),
		"expenses_at", l.FetchedAt(core.KindExpense))
	return l, nil
}

func kindArg(args []string) (core.Kind, error) {
	return core.ParseKind(args[0])
}

func (a *app) selection(month, category string) (filter.Selection, error) {
	sel := filter.Selection{Month: month, Category: category}
	if err := sel.Validate(a.categories); err != nil {
		return filter.Selection{}, err
	}
	return sel, nil
}

func (a *app) addCmd() *cobra.Command {
	var draft core.Draft
	cmd := &cobra.Command{
		Use:       "add (income|expense)",
		Short:     "Record a new income or expense",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"income", "expense"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			c, err := a.client()
			if err != nil {
				return err
			}
			l := ledger.New(c, a.categories)
			defer l.Close()

			t, err := l.AddTransaction(ctx, kind, draft)
			if err != nil {
				return storeError(err)
			}
			fmt.Fprintf(a.out, "Added %s %s: %s %s on %s\n",
				kind, t.ID, t.Title, report.FormatAmount(kind, t.Amount, a.cfg.Currency), t.Date)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&draft.Title, "title", "", "short description")
	f.StringVar(&draft.Amount, "amount", "", "positive amount, e.g. 12.50 or 12,50")
	f.StringVar(&draft.Date, "date", time.Now().Format("2006-01-02"), "date as YYYY-MM-DD")
	f.StringVar(&draft.Category, "category", "", "category tag (see `fintrack categories`)")
	f.StringVar(&draft.Description, "description", "", "optional notes")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete (income|expense) ID",
		Short: "Delete an income or expense by id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			l := ledger.New(c, a.categories)
			defer l.Close()

			if err := l.DeleteTransaction(commandContext(cmd), kind, args[1]); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(a.out, "Deleted %s %s.\n", kind, args[1])
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	var month, category string
	cmd := &cobra.Command{
		Use:   "list [incomes|expenses]",
		Short: "Show incomes and expenses, optionally filtered",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []core.Kind{core.KindIncome, core.KindExpense}
			if len(args) == 1 {
				kind, err := kindArg(args)
				if err != nil {
					return err
				}
				kinds = []core.Kind{kind}
			}
			sel, err := a.selection(month, category)
			if err != nil {
				return err
			}
			l, err := a.openLedger(commandContext(cmd))
			if err != nil {
				return err
			}
			defer l.Close()

			for i, kind := range kinds {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				txs := l.Expenses()
				if kind == core.KindIncome {
					txs = l.Incomes()
				}
				a.printTable(kind, sel, sel.Apply(txs))
			}
			return nil
		},
	}
	addSelectionFlags(cmd, &month, &category)
	return cmd
}

func (a *app) printTable(kind core.Kind, sel filter.Selection, txs []core.Transaction) {
	fmt.Fprintln(a.out, heading.DescribeFilter(kind, sel.Month, sel.Category))
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTitle\tAmount\tDate\tCategory")
	for _, t := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Title, report.FormatAmount(kind, t.Amount, a.cfg.Currency), report.FormatDate(t.Date), t.Category)
	}
	_ = tw.Flush()
	total := aggregate.SumAmounts(txs)
	fmt.Fprintf(a.out, "Total %s: %s%s%s\n", kind.Title(), kind.Sign(), a.cfg.Currency, total.StringFixed(2))
}

func (a *app) totalsCmd() *cobra.Command {
	var month, category string
	var byCategory bool
	cmd := &cobra.Command{
		Use:   "totals",
		Short: "Show income, expense and balance totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := a.selection(month, category)
			if err != nil {
				return err
			}
			l, err := a.openLedger(commandContext(cmd))
			if err != nil {
				return err
			}
			defer l.Close()

			snap := l.Snapshot()
			incomes, expenses := sel.Apply(snap.Incomes), sel.Apply(snap.Expenses)
			totals := aggregate.Compute(incomes, expenses)
			cur := a.cfg.Currency
			fmt.Fprintf(a.out, "Income:  %s%s\n", cur, totals.Income.StringFixed(2))
			fmt.Fprintf(a.out, "Expense: %s%s\n", cur, totals.Expense.StringFixed(2))
			fmt.Fprintf(a.out, "Balance: %s%s\n", cur, totals.Balance.StringFixed(2))

			if byCategory {
				a.printCategoryTotals(core.KindIncome, incomes)
				a.printCategoryTotals(core.KindExpense, expenses)
			}
			return nil
		},
	}
	addSelectionFlags(cmd, &month, &category)
	cmd.Flags().BoolVar(&byCategory, "by-category", false, "break totals down by category")
	return cmd
}

func (a *app) printCategoryTotals(kind core.Kind, txs []core.Transaction) {
	fmt.Fprintf(a.out, "\n%s by category\n", kind.Title())
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, ct := range aggregate.ByCategory(txs) {
		fmt.Fprintf(tw, "%s\t%d\t%s%s\n", a.categories.Label(ct.Category), ct.Count, a.cfg.Currency, ct.Total.StringFixed(2))
	}
	_ = tw.Flush()
}

func (a *app) exportCmd() *cobra.Command {
	var month, category, format, outDir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered incomes and expenses as a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Format
			}
			if outDir == "" {
				outDir = a.cfg.OutputDir
			}
			renderer, err := report.NewRenderer(format)
			if err != nil {
				return err
			}
			sel, err := a.selection(month, category)
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			l, err := a.openLedger(ctx)
			if err != nil {
				return err
			}
			defer l.Close()

			snap := l.Snapshot()
			doc := report.BuildReport(sel.Apply(snap.Incomes), sel.Apply(snap.Expenses), sel,
				report.Options{Currency: a.cfg.Currency})
			path, err := writeReport(ctx, outDir, renderer, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Report written to %s\n", path)
			return nil
		},
	}
	addSelectionFlags(cmd, &month, &category)
	cmd.Flags().StringVar(&format, "format", "", "pdf, html or chrome (default from config)")
	cmd.Flags().StringVar(&outDir, "output-dir", "", "directory for the report (default from config)")
	return cmd
}

func (a *app) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the known category tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printCategories(a.out, a.categories.Categories())
		},
	}
}

func addSelectionFlags(cmd *cobra.Command, month, category *string) {
	cmd.Flags().StringVar(month, "month", "", "month name, e.g. March")
	cmd.Flags().StringVar(category, "category", "", "category tag")
}
