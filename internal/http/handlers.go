package http

import (
	"errors"
	"net/http"

	"expensebook/internal/log"
	"expensebook/internal/store"
)

const genericFailure = "Something went wrong. Please try again."

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady checks templates and the backing store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	if err := s.store.Ping(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	expenses, categories := s.store.Snapshot()
	data := pageView{
		Form:       newFormView(categories),
		List:       newListView(expenses, categories, ParseListOptions(r.URL.Query())),
		Summary:    newSummaryView(expenses, categories),
		Categories: newCategoriesView(expenses, categories),
	}
	s.render(w, r, http.StatusOK, "index.html", data, nil)
}

// render executes a template into a builder so a failed render never leaves
// a half-written page. b may carry triggers and headers already.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any, b *HTMXResponseBuilder) {
	if b == nil {
		b = NewHTMXResponse()
	}
	if err := b.BodyTemplate(s.templates, name, data); err != nil {
		log.FromContext(r.Context()).ErrorTypeContext(r.Context(), "Template execution failed", log.ErrorTypeInternal, err,
			log.FieldOperation, log.OpRender, "template", name)
		InternalServerError(genericFailure).Write(w)
		return
	}
	b.Status(status).Write(w)
}

// writeStoreError maps a store failure to a notice. Persist failures keep
// the change in memory, so the page is told to refresh.
func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error, op string) {
	ctx := r.Context()
	logger := log.FromContext(ctx)

	var inUse *store.CategoryInUseError
	var persist *store.PersistError
	switch {
	case errors.As(err, &inUse):
		logger.InfoContext(ctx, "Category delete refused", log.FieldCategoryID, inUse.CategoryID,
			log.FieldCount, inUse.Expenses, log.FieldErrorType, log.ErrorTypeConflict)
		NoticeError(http.StatusConflict, inUse.UserMessage()).Write(w)
	case errors.As(err, &persist):
		log.NewStructuredLogger(logger).LogError(ctx, "Change kept but not saved", err, op, nil)
		NoticeError(http.StatusInternalServerError, persist.UserMessage()).
			TriggerExpensesChanged().
			TriggerCategoriesChanged().
			Write(w)
	default:
		log.NewStructuredLogger(logger).LogError(ctx, "Store operation failed", err, op, nil)
		NoticeError(http.StatusInternalServerError, genericFailure).Write(w)
	}
}
