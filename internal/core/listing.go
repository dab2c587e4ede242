package core

import "sort"

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"

	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"

	// AllCategories disables the category filter.
	AllCategories = "all"
)

type (
	SortField string
	SortOrder string

	// ListOptions controls how the expense list is filtered and ordered.
	ListOptions struct {
		Category string // category id, "" or AllCategories for no filter
		SortBy   SortField
		Order    SortOrder
	}
)

// DefaultListOptions shows every category, newest first.
func DefaultListOptions() ListOptions {
	return ListOptions{Category: AllCategories, SortBy: SortByDate, Order: Descending}
}

// Normalize replaces unknown values with the defaults.
func (o ListOptions) Normalize() ListOptions {
	if o.Category == "" {
		o.Category = AllCategories
	}
	if o.SortBy != SortByDate && o.SortBy != SortByAmount {
		o.SortBy = SortByDate
	}
	if o.Order != Ascending && o.Order != Descending {
		o.Order = Descending
	}
	return o
}

// Toggle selects field for sorting. Selecting the active field flips the
// order; selecting another field sorts it descending.
func (o ListOptions) Toggle(field SortField) ListOptions {
	o = o.Normalize()
	if o.SortBy == field {
		if o.Order == Ascending {
			o.Order = Descending
		} else {
			o.Order = Ascending
		}
		return o
	}
	o.SortBy = field
	o.Order = Descending
	return o
}

// ListExpenses filters and sorts a copy of expenses. Equal keys keep their
// stored order.
func ListExpenses(expenses []Expense, opts ListOptions) []Expense {
	opts = opts.Normalize()

	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if opts.Category == AllCategories || e.Category == opts.Category {
			out = append(out, e)
		}
	}

	less := func(a, b Expense) bool {
		if opts.SortBy == SortByAmount {
			return a.Amount.Cents < b.Amount.Cents
		}
		return a.Date.Before(b.Date.Time)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if opts.Order == Ascending {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}
