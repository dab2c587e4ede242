package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usd(cents int64) Money { return Money{Cents: cents} }

func foodTravel() ([]Category, []Expense) {
	categories := []Category{
		{ID: "food", Name: "Food & Dining", Color: "#F59E0B", Icon: IconUtensils},
		{ID: "travel", Name: "Travel", Color: "#F97316", Icon: IconPlane},
	}
	expenses := []Expense{
		{ID: "1", Amount: usd(5000), Category: "food", Description: "groceries", Date: NewDate(2025, 1, 3)},
		{ID: "2", Amount: usd(3000), Category: "food", Description: "dinner", Date: NewDate(2025, 1, 9)},
		{ID: "3", Amount: usd(2000), Category: "travel", Description: "train", Date: NewDate(2025, 2, 1)},
	}
	return categories, expenses
}

func TestTotalExpenses(t *testing.T) {
	_, expenses := foodTravel()
	assert.Equal(t, usd(10000), TotalExpenses(expenses))
	assert.Equal(t, Money{}, TotalExpenses(nil))
}

func TestExpensesByCategory(t *testing.T) {
	t.Run("food and travel scenario", func(t *testing.T) {
		categories, expenses := foodTravel()
		got := ExpensesByCategory(expenses, categories)
		assert.Equal(t, []ExpenseSummary{
			{CategoryID: "food", Total: usd(8000)},
			{CategoryID: "travel", Total: usd(2000)},
		}, got)
	})

	t.Run("zero categories are kept and ties keep category order", func(t *testing.T) {
		categories := []Category{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
		expenses := []Expense{
			{Amount: usd(100), Category: "c"},
			{Amount: usd(100), Category: "b"},
		}
		got := ExpensesByCategory(expenses, categories)
		require.Len(t, got, 4)
		assert.Equal(t, []string{"b", "c", "a", "d"}, summaryIDs(got))
		assert.True(t, got[2].Total.IsZero())
		assert.True(t, got[3].Total.IsZero())
	})

	t.Run("unknown categories are dropped", func(t *testing.T) {
		categories, expenses := foodTravel()
		expenses = append(expenses, Expense{Amount: usd(999), Category: "deleted"})
		got := ExpensesByCategory(expenses, categories)

		var sum Money
		for _, s := range got {
			sum = sum.Add(s.Total)
		}
		assert.Equal(t, usd(10000), sum)
		assert.NotEqual(t, TotalExpenses(expenses), sum)
	})

	t.Run("entries sum to the total and are sorted", func(t *testing.T) {
		categories := []Category{{ID: "x"}, {ID: "y"}, {ID: "z"}}
		expenses := []Expense{
			{Amount: usd(1), Category: "x"},
			{Amount: usd(250), Category: "z"},
			{Amount: usd(75), Category: "y"},
			{Amount: usd(30), Category: "x"},
		}
		got := ExpensesByCategory(expenses, categories)

		var sum Money
		for i, s := range got {
			sum = sum.Add(s.Total)
			if i > 0 {
				assert.GreaterOrEqual(t, got[i-1].Total.Cents, s.Total.Cents)
			}
		}
		assert.Equal(t, TotalExpenses(expenses), sum)
	})
}

func TestMonthlyTotals(t *testing.T) {
	expenses := []Expense{
		{Amount: usd(100), Date: NewDate(2025, 3, 1)},
		{Amount: usd(200), Date: NewDate(2024, 12, 31)},
		{Amount: usd(50), Date: NewDate(2025, 3, 28)},
		{Amount: usd(70), Date: NewDate(2025, 1, 15)},
		{Amount: usd(999)}, // undated
	}
	got := MonthlyTotals(expenses)
	require.Len(t, got, 3)

	assert.Equal(t, "Mar 2025", got[0].Label)
	assert.Equal(t, usd(150), got[0].Total)
	assert.Equal(t, "Dec 2024", got[1].Label)
	assert.Equal(t, usd(200), got[1].Total)
	assert.Equal(t, "Jan 2025", got[2].Label)
	assert.Equal(t, 2025, got[2].Year)

	assert.Empty(t, MonthlyTotals(nil))
}

func TestPercentageOfTotal(t *testing.T) {
	assert.Equal(t, 0.0, PercentageOfTotal(usd(500), Money{}))
	assert.Equal(t, 0.0, PercentageOfTotal(Money{}, Money{}))
	assert.InDelta(t, 80.0, PercentageOfTotal(usd(8000), usd(10000)), 1e-9)

	categories := []Category{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	expenses := []Expense{
		{Amount: usd(333), Category: "a"},
		{Amount: usd(333), Category: "b"},
		{Amount: usd(334), Category: "c"},
	}
	total := TotalExpenses(expenses)
	var sum float64
	for _, s := range ExpensesByCategory(expenses, categories) {
		sum += PercentageOfTotal(s.Total, total)
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestCategoryByID(t *testing.T) {
	categories, _ := foodTravel()
	c, ok := CategoryByID("travel", categories)
	require.True(t, ok)
	assert.Equal(t, "Travel", c.Name)

	_, ok = CategoryByID("missing", categories)
	assert.False(t, ok)
}

func summaryIDs(in []ExpenseSummary) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.CategoryID
	}
	return out
}
