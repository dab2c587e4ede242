package http

import "net/http"

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	expenses, categories := s.store.Snapshot()
	s.render(w, r, http.StatusOK, "summary", newSummaryView(expenses, categories), nil)
}
