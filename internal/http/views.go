package http

import (
	"fmt"
	"html/template"

	"expensebook/internal/core"
)

type (
	expenseRow struct {
		core.Expense
		Category categoryDisplay
	}

	formView struct {
		Form       ExpenseForm
		Categories []core.Category
		Editing    bool
		ID         string
		Error      string
	}

	listView struct {
		Rows       []expenseRow
		Categories []core.Category
		Options    core.ListOptions
		Count      int
		Total      core.Money
	}

	summaryRow struct {
		Category core.Category
		Total    core.Money
		Percent  float64
	}

	summaryView struct {
		Total  core.Money
		Count  int
		Rows   []summaryRow
		Months []core.MonthTotal
	}

	categoryRow struct {
		core.Category
		Expenses int
	}

	categoriesView struct {
		Rows  []categoryRow
		Icons []core.Icon
		Form  CategoryForm
		Error string
	}

	pageView struct {
		Form       formView
		List       listView
		Summary    summaryView
		Categories categoriesView
	}
)

// newFormView is the empty create form: today's date and the first category.
func newFormView(categories []core.Category) formView {
	form := ExpenseForm{Date: core.Today().String()}
	if len(categories) > 0 {
		form.Category = categories[0].ID
	}
	return formView{Form: form, Categories: categories}
}

func newListView(expenses []core.Expense, categories []core.Category, opts core.ListOptions) listView {
	listed := core.ListExpenses(expenses, opts)
	rows := make([]expenseRow, len(listed))
	for i, e := range listed {
		rows[i] = expenseRow{Expense: e, Category: resolveCategory(e.Category, categories)}
	}
	return listView{
		Rows:       rows,
		Categories: categories,
		Options:    opts.Normalize(),
		Count:      len(rows),
		Total:      core.TotalExpenses(listed),
	}
}

// ToggleURL is the list URL that re-sorts by field.
func (v listView) ToggleURL(field string) string {
	return "/ui/expenses?" + ListQuery(v.Options) + "&toggle=" + field
}

// SortIndicator marks the active sort column.
func (v listView) SortIndicator(field string) string {
	if string(v.Options.SortBy) != field {
		return ""
	}
	if v.Options.Order == core.Ascending {
		return "▲"
	}
	return "▼"
}

// newSummaryView lists only categories with spend, highest first.
func newSummaryView(expenses []core.Expense, categories []core.Category) summaryView {
	total := core.TotalExpenses(expenses)
	view := summaryView{
		Total:  total,
		Count:  len(expenses),
		Months: core.MonthlyTotals(expenses),
	}
	for _, s := range core.ExpensesByCategory(expenses, categories) {
		if s.Total.IsZero() {
			continue
		}
		c, ok := core.CategoryByID(s.CategoryID, categories)
		if !ok {
			continue
		}
		if c.Color == "" {
			c.Color = core.DefaultColor
		}
		view.Rows = append(view.Rows, summaryRow{
			Category: c,
			Total:    s.Total,
			Percent:  core.PercentageOfTotal(s.Total, total),
		})
	}
	return view
}

func newCategoriesView(expenses []core.Expense, categories []core.Category) categoriesView {
	counts := make(map[string]int, len(categories))
	for _, e := range expenses {
		counts[e.Category]++
	}
	rows := make([]categoryRow, len(categories))
	for i, c := range categories {
		rows[i] = categoryRow{Category: c, Expenses: counts[c.ID]}
	}
	return categoriesView{
		Rows:  rows,
		Icons: core.Icons(),
		Form:  CategoryForm{Color: core.DefaultColor, Icon: string(core.IconWallet)},
	}
}

// templateFuncs formats values for display in the given currency.
func templateFuncs(currency string) template.FuncMap {
	return template.FuncMap{
		"money":   func(m core.Money) string { return core.FormatMoney(m, currency) },
		"date":    core.FormatDate,
		"percent": core.FormatPercent,
		"glyph":   func(i core.Icon) string { return i.Glyph() },
		"barWidth": func(p float64) template.CSS {
			return template.CSS(fmt.Sprintf("width: %.1f%%", p))
		},
		"swatch": func(color string) template.CSS {
			if !core.IsHexColor(color) {
				color = core.DefaultColor
			}
			return template.CSS("background-color: " + color)
		},
	}
}
