package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"financas/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"started":   humanize.Time(s.started),
	}).Write(w)
}

// handleReady runs every registered readiness check under one deadline.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string, len(s.ready))
	for name, check := range s.ready {
		if err := check(ctx); err != nil {
			checks[name] = "failed"
			status = "not_ready"
			code = http.StatusServiceUnavailable
			log.FromContext(ctx).WarnContext(ctx, "Readiness check failed",
				log.FieldBackend, name,
				log.FieldError, err)
			continue
		}
		checks[name] = "ok"
	}
	NewResponse().Status(code).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	req := ParseReportQuery(r.URL.Query(), UserID(r.Context()), UserLabel(r.Context()))
	snap, err := s.api.Snapshot(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewResponse().JSON(snapshotTransactions(snap)).Write(w)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	req := ParseReportQuery(r.URL.Query(), UserID(r.Context()), UserLabel(r.Context()))
	snap, err := s.api.Snapshot(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err, log.OpAggregate)
		return
	}
	NewResponse().JSON(SummaryResponse{
		Criteria: criteriaDTO(snap.Criteria),
		Summary:  summaryDTO(snap.Summary),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.api.Categories(r.Context(), UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, err, log.OpList)
		return
	}
	NewResponse().JSON(categoryDTOs(cats)).Write(w)
}

// handleExport renders the PDF inside the request.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	req, opts, err := ParseExportRequest(r, UserID(r.Context()), UserLabel(r.Context()))
	if err != nil {
		s.writeError(w, r, err, log.OpValidate)
		return
	}
	export, err := s.api.Export(r.Context(), req, opts)
	if err != nil {
		s.writeError(w, r, err, log.OpExport)
		return
	}
	NewResponse().Attachment("application/pdf", export.FileName(), export.PDF).Write(w)
}

// handleRequestExport queues the export for the worker.
func (s *Server) handleRequestExport(w http.ResponseWriter, r *http.Request) {
	req, opts, err := ParseExportRequest(r, UserID(r.Context()), UserLabel(r.Context()))
	if err != nil {
		s.writeError(w, r, err, log.OpValidate)
		return
	}
	jobID, err := s.api.RequestExport(r.Context(), req, opts)
	if err != nil {
		s.writeError(w, r, err, log.OpPublish)
		return
	}
	NewResponse().
		Status(http.StatusAccepted).
		JSON(ExportQueuedResponse{JobID: jobID, Status: "queued"}).
		Write(w)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	code, msg := StatusFor(err)
	ctx := r.Context()
	if code >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(ctx)).LogError(ctx, "Request failed", err, log.ComponentHTTP, op,
			log.NewFields().WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent()))
	} else {
		log.FromContext(ctx).DebugContext(ctx, "Request rejected",
			log.FieldOperation, op,
			log.FieldStatusCode, code,
			log.FieldError, err)
	}
	ErrorResponse(code, msg).Write(w)
}
