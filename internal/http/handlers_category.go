package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensebook/internal/log"
)

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	expenses, categories := s.store.Snapshot()
	s.render(w, r, http.StatusOK, "categories", newCategoriesView(expenses, categories), nil)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	form := ParseCategoryForm(r.PostForm)
	draft, err := form.Draft()
	if err != nil {
		expenses, categories := s.store.Snapshot()
		view := newCategoriesView(expenses, categories)
		view.Form = form
		view.Error = userMessage(err)
		s.render(w, r, http.StatusUnprocessableEntity, "categories", view, nil)
		return
	}

	ctx := r.Context()
	category, err := s.store.AddCategory(ctx, draft)
	if err != nil {
		s.writeStoreError(w, r, err, log.OpCreate)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Category added",
		log.NewFields().WithCategory(category.ID, category.Name).WithOperation(log.OpCreate).ToSlice()...)

	expenses, categories := s.store.Snapshot()
	s.render(w, r, http.StatusOK, "categories", newCategoriesView(expenses, categories),
		NewHTMXResponse().
			TriggerCategoriesChanged().
			TriggerSuccessNotification("Category added"))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.writeStoreError(w, r, err, log.OpDelete)
		return
	}
	log.FromContext(ctx).InfoContext(ctx, "Category deleted", log.FieldCategoryID, id)

	expenses, categories := s.store.Snapshot()
	s.render(w, r, http.StatusOK, "categories", newCategoriesView(expenses, categories),
		NewHTMXResponse().
			TriggerCategoriesChanged().
			TriggerSuccessNotification("Category deleted"))
}
