package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"expensebook/internal/core"
	"expensebook/internal/export"
	"expensebook/internal/log"
)

// handleExport streams every expense as a csv or xlsx download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequestError("Unsupported export format.").Write(w)
		return
	}

	expenses, categories := s.store.Snapshot()
	var buf bytes.Buffer
	if err := export.Write(&buf, format, expenses, categories); err != nil {
		log.FromContext(ctx).ErrorTypeContext(ctx, "Export failed", log.ErrorTypeInternal, err, "format", format)
		InternalServerError(genericFailure).Write(w)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(core.Today())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)

	log.FromContext(ctx).InfoContext(ctx, "Expenses exported", "format", format, log.FieldCount, len(expenses))
}
