package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/missionpulse/missionpulse/internal/app"
	"github.com/missionpulse/missionpulse/internal/database"
	"github.com/missionpulse/missionpulse/internal/export"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.service.LoadDashboard(r.Context()))
}

func (s *Server) handleOpportunity(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}

	detail := s.service.LoadOpportunityDetail(r.Context(), id)
	status := http.StatusOK
	if detail.NotFound() {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, detail)
}

func (s *Server) handleExportPipeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := database.OpportunityFilter{
		Stage:  q.Get("stage"),
		Agency: q.Get("agency"),
		Search: q.Get("q"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		f.Limit = n
	}

	opps, err := s.service.Opportunities(r.Context(), f)
	if err != nil {
		s.failed(w, "pipeline", err)
		return
	}
	export.Serve(w, s.service.ExportFilename("pipeline"), opps, app.PipelineColumns())
}

func (s *Server) handleExportStages(w http.ResponseWriter, r *http.Request) {
	stages, err := s.service.Stages(r.Context())
	if err != nil {
		s.failed(w, "stages", err)
		return
	}
	export.Serve(w, s.service.ExportFilename("stages"), stages, app.StageColumns())
}

func (s *Server) handleExportCompliance(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	items, err := s.service.ComplianceMatrix(r.Context(), id)
	if err != nil {
		s.failed(w, "compliance", err)
		return
	}
	export.Serve(w, s.service.ExportFilename("compliance"), items, app.ComplianceColumns())
}

func (s *Server) handleExportSections(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r)
	if !ok {
		return
	}
	sections, err := s.service.ProposalSections(r.Context(), id)
	if err != nil {
		s.failed(w, "sections", err)
		return
	}
	export.Serve(w, s.service.ExportFilename("sections"), sections, app.SectionColumns())
}

func (s *Server) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid opportunity id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) failed(w http.ResponseWriter, report string, err error) {
	s.logger.Error("report failed", zap.String("report", report), zap.Error(err))
	s.writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]any{
		"error": map[string]string{"message": msg},
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}
