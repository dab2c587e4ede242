package core

import (
	"fmt"
	"sort"
	"time"
)

// ExpenseSummary is the total spent in one category.
type ExpenseSummary struct {
	CategoryID string
	Total      Money
}

// MonthTotal is the total spent in one calendar month.
type MonthTotal struct {
	Label string // "Jan 2025"
	Year  int
	Month time.Month
	Total Money
}

// TotalExpenses sums the amount of every expense. An empty slice totals zero.
func TotalExpenses(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// ExpensesByCategory returns one entry per category, including categories
// with no spend. Expenses whose category matches no known id are left out.
// Entries are ordered by total, highest first; ties keep category order.
func ExpensesByCategory(expenses []Expense, categories []Category) []ExpenseSummary {
	summary := make([]ExpenseSummary, len(categories))
	index := make(map[string]int, len(categories))
	for i, c := range categories {
		summary[i] = ExpenseSummary{CategoryID: c.ID}
		if _, dup := index[c.ID]; !dup {
			index[c.ID] = i
		}
	}

	for _, e := range expenses {
		if i, ok := index[e.Category]; ok {
			summary[i].Total = summary[i].Total.Add(e.Amount)
		}
	}

	sort.SliceStable(summary, func(i, j int) bool {
		return summary[i].Total.Cents > summary[j].Total.Cents
	})
	return summary
}

// MonthlyTotals groups spend by calendar month. Months appear in the order
// they are first met in expenses, not chronologically. Undated expenses are
// skipped.
func MonthlyTotals(expenses []Expense) []MonthTotal {
	var out []MonthTotal
	index := make(map[string]int)
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		label := MonthLabel(e.Date)
		i, ok := index[label]
		if !ok {
			i = len(out)
			index[label] = i
			out = append(out, MonthTotal{
				Label: label,
				Year:  e.Date.Year(),
				Month: e.Date.Month(),
			})
		}
		out[i].Total = out[i].Total.Add(e.Amount)
	}
	return out
}

// MonthLabel renders the month of d as "Jan 2025".
func MonthLabel(d Date) string {
	return fmt.Sprintf("%s %d", d.Month().String()[:3], d.Year())
}

// PercentageOfTotal returns part as a percentage of total, or 0 when total
// is zero.
func PercentageOfTotal(part, total Money) float64 {
	if total.Cents == 0 {
		return 0
	}
	return float64(part.Cents) / float64(total.Cents) * 100
}

// CategoryByID finds a category by id.
func CategoryByID(id string, categories []Category) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
