package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensebook/internal/core"
	"expensebook/internal/log"
	"expensebook/internal/store"
)

func (s *Server) handleExpenseForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "expense_form", newFormView(s.store.Categories()), nil)
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	expenses, categories := s.store.Snapshot()
	view := newListView(expenses, categories, ParseListOptions(r.URL.Query()))
	s.render(w, r, http.StatusOK, "expense_list", view, nil)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form := ParseExpenseForm(r.PostForm)
	draft, err := form.Draft()
	if err != nil {
		s.renderFormError(w, r, formView{Form: form}, err)
		return
	}

	ctx := r.Context()
	expense, err := s.store.AddExpense(ctx, draft)
	if errors.Is(err, store.ErrUnknownCategory) {
		s.renderFormError(w, r, formView{Form: form}, core.ErrEmptyCategory)
		return
	}
	if err != nil {
		s.writeStoreError(w, r, err, log.OpCreate)
		return
	}

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogExpenseSaved(ctx, log.OpCreate, expense.ID, expense.Description, expense.Amount.Cents, expense.Category)

	s.render(w, r, http.StatusOK, "expense_form", newFormView(s.store.Categories()),
		NewHTMXResponse().
			TriggerExpensesChanged().
			TriggerFormReset().
			TriggerSuccessNotification("Expense added"))
}

func (s *Server) handleEditExpenseForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	expense, ok := s.store.Expense(id)
	if !ok {
		expenseNotFound(w, r, id, log.OpRead)
		return
	}

	view := formView{
		Form:       ExpenseFormFrom(expense),
		Categories: s.store.Categories(),
		Editing:    true,
		ID:         expense.ID,
	}
	s.render(w, r, http.StatusOK, "expense_form", view, nil)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	id := chi.URLParam(r, "id")
	if _, ok := s.store.Expense(id); !ok {
		expenseNotFound(w, r, id, log.OpUpdate)
		return
	}
	editing := formView{Editing: true, ID: id}

	form := ParseExpenseForm(r.PostForm)
	editing.Form = form
	draft, err := form.Draft()
	if err != nil {
		s.renderFormError(w, r, editing, err)
		return
	}

	ctx := r.Context()
	err = s.store.EditExpense(ctx, id, draft)
	if errors.Is(err, store.ErrUnknownCategory) {
		s.renderFormError(w, r, editing, core.ErrEmptyCategory)
		return
	}
	if err != nil {
		s.writeStoreError(w, r, err, log.OpUpdate)
		return
	}

	log.NewStructuredLogger(log.FromContext(ctx)).
		LogExpenseSaved(ctx, log.OpUpdate, id, draft.Description, draft.Amount.Cents, draft.Category)

	s.render(w, r, http.StatusOK, "expense_form", newFormView(s.store.Categories()),
		NewHTMXResponse().
			TriggerExpensesChanged().
			TriggerFormReset().
			TriggerSuccessNotification("Expense updated"))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteExpense(r.Context(), id); err != nil {
		s.writeStoreError(w, r, err, log.OpDelete)
		return
	}

	NewHTMXResponse().
		TriggerExpensesChanged().
		TriggerSuccessNotification("Expense deleted").
		Write(w)
}

// renderFormError re-renders the expense form with the submitted values and
// the first validation problem.
func (s *Server) renderFormError(w http.ResponseWriter, r *http.Request, view formView, err error) {
	if !isValidationError(err) {
		s.writeStoreError(w, r, err, log.OpValidate)
		return
	}
	log.FromContext(r.Context()).DebugContext(r.Context(), "Expense form rejected",
		log.FieldErrorType, log.ErrorTypeValidation, log.FieldError, err)

	view.Categories = s.store.Categories()
	view.Error = userMessage(err)
	s.render(w, r, http.StatusUnprocessableEntity, "expense_form", view, nil)
}

// userMessage capitalizes a validation error for display.
func userMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return msg
	}
	if c := msg[0]; c >= 'a' && c <= 'z' {
		msg = string(c-'a'+'A') + msg[1:]
	}
	return msg + "."
}

func expenseNotFound(w http.ResponseWriter, r *http.Request, id, op string) {
	ctx := r.Context()
	log.FromContext(ctx).InfoContext(ctx, "Expense not found",
		log.FieldExpenseID, id, log.FieldOperation, op, log.FieldErrorType, log.ErrorTypeNotFound)
	NoticeError(http.StatusNotFound, "That expense no longer exists.").Write(w)
}
