package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensebook/internal/core"
)

func reportFixture() ([]core.Expense, []core.Category) {
	categories := []core.Category{
		{ID: "food", Name: "Food", Color: "#F59E0B", Icon: core.IconUtensils},
		{ID: "travel", Name: "Travel", Color: "#F97316", Icon: core.IconPlane},
		{ID: "housing", Name: "Housing", Color: "#3B82F6", Icon: core.IconHome},
	}
	expenses := []core.Expense{
		{ID: "1", Amount: core.Money{Cents: 5000}, Category: "food", Description: "Dinner", Date: core.NewDate(2025, 1, 10)},
		{ID: "2", Amount: core.Money{Cents: 2000}, Category: "travel", Description: "Train", Date: core.NewDate(2025, 1, 12)},
		{ID: "3", Amount: core.Money{Cents: 3000}, Category: "food", Description: "Groceries", Date: core.NewDate(2025, 2, 1)},
	}
	return expenses, categories
}

func TestWriteSummary(t *testing.T) {
	expenses, categories := reportFixture()

	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, expenses, categories, "USD"))
	out := buf.String()

	assert.Contains(t, out, "$100.00")
	assert.Contains(t, out, "80.0%")
	assert.Contains(t, out, "20.0%")
	assert.Contains(t, out, "Jan 2025")
	assert.Contains(t, out, "Feb 2025")
	assert.NotContains(t, out, "Housing")
	assert.Less(t, strings.Index(out, "Food"), strings.Index(out, "Travel"))
}

func TestWriteSummaryEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSummary(&buf, nil, nil, "EUR"))
	assert.Contains(t, buf.String(), "No expenses recorded yet.")
}

func TestWriteExpenses(t *testing.T) {
	expenses, categories := reportFixture()
	expenses = append(expenses, core.Expense{
		ID: "4", Amount: core.Money{Cents: 150}, Category: "gone", Description: "Gum", Date: core.NewDate(2025, 2, 2),
	})

	var buf bytes.Buffer
	list := core.ListExpenses(expenses, core.ListOptions{SortBy: core.SortByAmount, Order: core.Descending})
	require.NoError(t, writeExpenses(&buf, list, categories, "USD"))
	out := buf.String()

	assert.Less(t, strings.Index(out, "Dinner"), strings.Index(out, "Groceries"))
	assert.Less(t, strings.Index(out, "Groceries"), strings.Index(out, "Gum"))
	assert.Contains(t, out, "Uncategorized")
	assert.Contains(t, out, "Jan 10, 2025")
	assert.Contains(t, out, "$101.50")

	buf.Reset()
	require.NoError(t, writeExpenses(&buf, nil, categories, "USD"))
	assert.Contains(t, buf.String(), "No expenses found.")
}

func TestWriteCategories(t *testing.T) {
	expenses, categories := reportFixture()

	var buf bytes.Buffer
	require.NoError(t, writeCategories(&buf, categories, expenses))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "food")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[1]), "2"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "0"))
}

func TestCategoriesCommand(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_DIR", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "8081")
	t.Setenv("CURRENCY", "USD")

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"categories"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Subscriptions")
	assert.Contains(t, buf.String(), "travel")
}

func TestExportCommand(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("SEED_DIR", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PORT", "8081")
	t.Setenv("CURRENCY", "USD")

	out := filepath.Join(t.TempDir(), "book.csv")
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"export", "--format", "csv", "-o", out})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "Exported 0 expenses")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Date,Description,Category,Amount\n", string(data))
}
