// Package http provides HTTP server and handler implementations.
//
// This file turns submitted forms and query strings into domain values.

package http

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"expensebook/internal/core"
)

// ExpenseForm is the raw text of the expense form, kept so it can be
// re-rendered after a validation error.
type ExpenseForm struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// CategoryForm is the raw text of the new-category form.
type CategoryForm struct {
	Name  string
	Color string
	Icon  string
}

// ParseExpenseForm reads the expense fields from form values.
func ParseExpenseForm(form url.Values) ExpenseForm {
	return ExpenseForm{
		Amount:      sanitizeInput(form.Get("amount")),
		Category:    sanitizeInput(form.Get("category")),
		Description: sanitizeInput(form.Get("description")),
		Date:        sanitizeInput(form.Get("date")),
	}
}

// Draft converts the form into an ExpenseDraft and validates it. Fields are
// checked in form order, so the first problem is reported.
func (f ExpenseForm) Draft() (core.ExpenseDraft, error) {
	var draft core.ExpenseDraft

	if amount, err := core.ParseAmount(f.Amount); err == nil {
		draft.Amount = amount
	}
	draft.Category = f.Category
	draft.Description = f.Description
	if date, err := core.ParseDate(f.Date); err == nil {
		draft.Date = date
	}

	if err := draft.Validate(); err != nil {
		return core.ExpenseDraft{}, err
	}
	return draft, nil
}

// ExpenseFormFrom fills the form with a stored expense for editing.
func ExpenseFormFrom(e core.Expense) ExpenseForm {
	return ExpenseForm{
		Amount:      e.Amount.String(),
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date.String(),
	}
}

// ParseCategoryForm reads the category fields from form values.
func ParseCategoryForm(form url.Values) CategoryForm {
	return CategoryForm{
		Name:  sanitizeInput(form.Get("name")),
		Color: sanitizeInput(form.Get("color")),
		Icon:  sanitizeInput(form.Get("icon")),
	}
}

// Draft converts the form into a CategoryDraft. An empty color gets the
// default and an empty icon gets Wallet.
func (f CategoryForm) Draft() (core.CategoryDraft, error) {
	draft := core.CategoryDraft{
		Name:  f.Name,
		Color: strings.ToUpper(f.Color),
		Icon:  core.Icon(f.Icon),
	}
	if draft.Color == "" {
		draft.Color = core.DefaultColor
	}
	if draft.Icon == "" {
		draft.Icon = core.IconWallet
	}
	if err := draft.Validate(); err != nil {
		return core.CategoryDraft{}, err
	}
	return draft, nil
}

// ParseListOptions reads category, sort and order from the query string.
// A toggle parameter flips the order when it names the active sort field.
func ParseListOptions(query url.Values) core.ListOptions {
	opts := core.ListOptions{
		Category: sanitizeInput(query.Get("category")),
		SortBy:   core.SortField(query.Get("sort")),
		Order:    core.SortOrder(query.Get("order")),
	}.Normalize()

	if toggle := core.SortField(query.Get("toggle")); toggle == core.SortByDate || toggle == core.SortByAmount {
		opts = opts.Toggle(toggle)
	}
	return opts
}

// ListQuery encodes opts for use in a URL.
func ListQuery(opts core.ListOptions) string {
	v := url.Values{}
	v.Set("category", opts.Category)
	v.Set("sort", string(opts.SortBy))
	v.Set("order", string(opts.Order))
	return v.Encode()
}

// ParseFormOrFail parses the request form and returns an error response on failure.
// Returns nil on success.
func ParseFormOrFail(r *http.Request) *HTMXResponseBuilder {
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Invalid request format")
	}
	return nil
}

// isValidationError reports whether err comes from draft validation.
func isValidationError(err error) bool {
	for _, target := range []error{
		core.ErrInvalidAmount, core.ErrEmptyCategory, core.ErrEmptyDescription, core.ErrEmptyDate,
		core.ErrEmptyName, core.ErrInvalidColor, core.ErrUnknownIcon,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
