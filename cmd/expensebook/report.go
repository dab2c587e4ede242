package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"expensebook/internal/cli"
	"expensebook/internal/core"
	"expensebook/internal/export"
	"expensebook/internal/store"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	totalStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print totals by category and by month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(st *store.Store) error {
				expenses, categories := st.Snapshot()
				return writeSummary(cmd.OutOrStdout(), expenses, categories, cfg.Currency)
			})
		},
	}
}

func expensesCmd() *cobra.Command {
	var category, sortBy, order string

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List recorded expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := core.ListOptions{
				Category: category,
				SortBy:   core.SortField(sortBy),
				Order:    core.SortOrder(order),
			}
			return withStore(cmd.Context(), func(st *store.Store) error {
				expenses, categories := st.Snapshot()
				return writeExpenses(cmd.OutOrStdout(), core.ListExpenses(expenses, opts), categories, cfg.Currency)
			})
		},
	}

	cmd.Flags().StringVar(&category, "category", core.AllCategories, "only show this category id")
	cmd.Flags().StringVar(&sortBy, "sort", string(core.SortByDate), "sort by date or amount")
	cmd.Flags().StringVar(&order, "order", string(core.Descending), "asc or desc")
	return cmd
}

func categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories and how many expenses use each",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd.Context(), func(st *store.Store) error {
				expenses, categories := st.Snapshot()
				return writeCategories(cmd.OutOrStdout(), categories, expenses)
			})
		},
	}
}

// withStore opens the configured store for the duration of fn.
func withStore(ctx context.Context, fn func(*store.Store) error) error {
	st, cleanup, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Warn("Backend cleanup failed", "error", err)
		}
	}()
	return fn(st)
}

func writeSummary(out io.Writer, expenses []core.Expense, categories []core.Category, currency string) error {
	total := core.TotalExpenses(expenses)
	fmt.Fprintf(out, "%s %s\n\n", headerStyle.Render("Total Expenses:"), totalStyle.Render(core.FormatMoney(total, currency)))

	if total.Cents == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No expenses recorded yet."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\n", headerStyle.Render("Category"), headerStyle.Render("Total"), headerStyle.Render("Share"))
	for _, s := range core.ExpensesByCategory(expenses, categories) {
		if s.Total.Cents == 0 {
			continue
		}
		c, _ := core.CategoryByID(s.CategoryID, categories)
		fmt.Fprintf(w, "%s %s\t%s\t%s\n", c.Icon.Glyph(), c.Name,
			core.FormatMoney(s.Total, currency), core.FormatPercent(core.PercentageOfTotal(s.Total, total)))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", headerStyle.Render("Month"), headerStyle.Render("Total"))
	for _, m := range core.MonthlyTotals(expenses) {
		fmt.Fprintf(w, "%s\t%s\n", m.Label, core.FormatMoney(m.Total, currency))
	}
	return w.Flush()
}

func writeExpenses(out io.Writer, expenses []core.Expense, categories []core.Category, currency string) error {
	if len(expenses) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No expenses found."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("Date"), headerStyle.Render("Description"),
		headerStyle.Render("Category"), headerStyle.Render("Amount"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 12), strings.Repeat("-", 20), strings.Repeat("-", 16), strings.Repeat("-", 10))
	for _, e := range expenses {
		name := mutedStyle.Render("Uncategorized")
		if c, ok := core.CategoryByID(e.Category, categories); ok {
			name = c.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", core.FormatDate(e.Date), e.Description, name, core.FormatMoney(e.Amount, currency))
	}
	fmt.Fprintf(w, "\t\t%s\t%s\n", totalStyle.Render("Total"), core.FormatMoney(core.TotalExpenses(expenses), currency))
	return w.Flush()
}

func writeCategories(out io.Writer, categories []core.Category, expenses []core.Expense) error {
	if len(categories) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No categories. Add one from the web UI."))
		return nil
	}

	counts := make(map[string]int, len(categories))
	for _, e := range expenses {
		counts[e.Category]++
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"), headerStyle.Render("Name"), headerStyle.Render("Color"), headerStyle.Render("Expenses"))
	for _, c := range categories {
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%d\n", c.ID, c.Icon.Glyph(), c.Name, c.Color, counts[c.ID])
	}
	return w.Flush()
}

func exportCmd() *cobra.Command {
	var formatName, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every expense to a csv or xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = format.Filename(core.Today())
			}

			return withStore(cmd.Context(), func(st *store.Store) error {
				expenses, categories := st.Snapshot()
				if outPath == "-" {
					return export.Write(cmd.OutOrStdout(), format, expenses, categories)
				}

				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				if err := export.Write(f, format, expenses, categories); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", outPath, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expenses to %s\n", len(expenses), outPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&formatName, "format", string(export.FormatXLSX), "csv or xlsx")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", `output file, "-" for stdout (default expenses_<date>.<format>)`)
	return cmd
}
