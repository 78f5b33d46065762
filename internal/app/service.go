package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/missionpulse/missionpulse/internal/database"
	"github.com/missionpulse/missionpulse/internal/export"
	"github.com/missionpulse/missionpulse/internal/settle"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RecentLimit caps the pipeline panel of the dashboard.
const RecentLimit = 50

// Dashboard is the pipeline overview. Each panel settles independently.
type Dashboard struct {
	Database string                                 `json:"database"`
	Pipeline settle.Result[[]database.Opportunity]  `json:"pipeline"`
	Total    settle.Result[int64]                   `json:"total"`
	Stages   settle.Result[[]database.StageSummary] `json:"stages"`
	Health   settle.Result[bool]                    `json:"health"`
	LoadedAt time.Time                              `json:"loadedAt"`
	Duration time.Duration                          `json:"duration"`
}

// OpportunityDetail is one opportunity with its compliance matrix and outline.
type OpportunityDetail struct {
	Opportunity settle.Result[database.Opportunity]       `json:"opportunity"`
	Compliance  settle.Result[[]database.ComplianceItem]  `json:"compliance"`
	Sections    settle.Result[[]database.ProposalSection] `json:"sections"`
}

// NotFound reports whether the opportunity lookup found nothing.
func (d *OpportunityDetail) NotFound() bool {
	return d.Opportunity.Status == 404
}

// Service coordinates application-level operations between the UIs and the store.
type Service struct {
	store  database.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new application service.
func NewService(store database.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Connect establishes a database connection.
func (s *Service) Connect(ctx context.Context, dsn string) error {
	if err := s.store.Connect(ctx, dsn); err != nil {
		return &ErrConnection{Cause: err}
	}
	s.logger.Info("connected", zap.String("database", s.store.DatabaseName()))
	return nil
}

// Disconnect closes the database connection.
func (s *Service) Disconnect() error {
	return s.store.Close()
}

// DatabaseName returns the current database name.
func (s *Service) DatabaseName() string {
	return s.store.DatabaseName()
}

// LoadDashboard fetches every dashboard panel concurrently. A failing panel
// carries its error and never blocks the others.
func (s *Service) LoadDashboard(ctx context.Context) *Dashboard {
	start := s.now()
	recent := database.OpportunityFilter{Limit: RecentLimit}

	var g settle.Group
	pipeline := settle.Go(&g, ctx, settle.From(func(ctx context.Context) ([]database.Opportunity, error) {
		return s.store.ListOpportunities(ctx, recent)
	}))
	total := settle.Go(&g, ctx, settle.From(func(ctx context.Context) (int64, error) {
		return s.store.CountOpportunities(ctx, database.OpportunityFilter{})
	}))
	stages := settle.Go(&g, ctx, settle.From(s.store.StageSummary))
	health := settle.Go(&g, ctx, settle.From(func(ctx context.Context) (bool, error) {
		if err := s.store.Ping(ctx); err != nil {
			return false, err
		}
		return true, nil
	}))
	g.Wait()

	d := &Dashboard{
		Database: s.store.DatabaseName(),
		Pipeline: pipeline.Result(),
		Total:    total.Result(),
		Stages:   stages.Result(),
		Health:   health.Result(),
		LoadedAt: start,
		Duration: s.now().Sub(start),
	}
	if d.Total.OK() && d.Total.Data != nil {
		d.Pipeline.Count = d.Total.Data
	}

	s.logPanel("pipeline", d.Pipeline.Error)
	s.logPanel("total", d.Total.Error)
	s.logPanel("stages", d.Stages.Error)
	s.logPanel("health", d.Health.Error)
	return d
}

// LoadOpportunityDetail fetches an opportunity, its compliance matrix and its
// proposal sections concurrently.
func (s *Service) LoadOpportunityDetail(ctx context.Context, id uuid.UUID) *OpportunityDetail {
	var g settle.Group
	opp := settle.Go(&g, ctx, func(ctx context.Context) (settle.Result[database.Opportunity], error) {
		o, err := s.store.GetOpportunity(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			return settle.Result[database.Opportunity]{
				Error:      &settle.ErrorInfo{Message: fmt.Sprintf("opportunity %s not found", id)},
				Status:     404,
				StatusText: "Not Found",
			}, nil
		}
		if err != nil {
			return settle.Result[database.Opportunity]{}, err
		}
		return settle.Data(*o), nil
	})
	compliance := settle.Go(&g, ctx, counted(func(ctx context.Context) ([]database.ComplianceItem, error) {
		return s.store.ListComplianceItems(ctx, id)
	}))
	sections := settle.Go(&g, ctx, counted(func(ctx context.Context) ([]database.ProposalSection, error) {
		return s.store.ListProposalSections(ctx, id)
	}))
	g.Wait()

	d := &OpportunityDetail{
		Opportunity: opp.Result(),
		Compliance:  compliance.Result(),
		Sections:    sections.Result(),
	}
	if !d.NotFound() {
		s.logPanel("opportunity", d.Opportunity.Error)
	}
	s.logPanel("compliance", d.Compliance.Error)
	s.logPanel("sections", d.Sections.Error)
	return d
}

// Opportunities lists the pipeline with a filter.
func (s *Service) Opportunities(ctx context.Context, f database.OpportunityFilter) ([]database.Opportunity, error) {
	opps, err := s.store.ListOpportunities(ctx, f)
	if err != nil {
		return nil, &ErrQuery{Op: "list opportunities", Cause: err}
	}
	return opps, nil
}

// ComplianceMatrix lists the compliance items of one opportunity.
func (s *Service) ComplianceMatrix(ctx context.Context, id uuid.UUID) ([]database.ComplianceItem, error) {
	items, err := s.store.ListComplianceItems(ctx, id)
	if err != nil {
		return nil, &ErrQuery{Op: "list compliance", Cause: err}
	}
	return items, nil
}

// ProposalSections lists the proposal outline of one opportunity.
func (s *Service) ProposalSections(ctx context.Context, id uuid.UUID) ([]database.ProposalSection, error) {
	sections, err := s.store.ListProposalSections(ctx, id)
	if err != nil {
		return nil, &ErrQuery{Op: "list sections", Cause: err}
	}
	return sections, nil
}

// Stages returns the per-stage pipeline summary.
func (s *Service) Stages(ctx context.Context) ([]database.StageSummary, error) {
	stages, err := s.store.StageSummary(ctx)
	if err != nil {
		return nil, &ErrQuery{Op: "stage summary", Cause: err}
	}
	return stages, nil
}

// ExportPipeline writes the filtered pipeline as CSV into dir and returns the
// file path and row count.
func (s *Service) ExportPipeline(ctx context.Context, fs afero.Fs, dir string, f database.OpportunityFilter) (string, int, error) {
	opps, err := s.Opportunities(ctx, f)
	if err != nil {
		return "", 0, &ErrExport{Report: "pipeline", Cause: err}
	}
	path := filepath.Join(dir, s.ExportFilename("pipeline"))
	if err := export.Save(fs, path, opps, PipelineColumns()); err != nil {
		return "", 0, &ErrExport{Report: "pipeline", Cause: err}
	}
	s.logger.Info("exported report", zap.String("report", "pipeline"), zap.String("path", path), zap.Int("rows", len(opps)))
	return path, len(opps), nil
}

// ExportCompliance writes one opportunity's compliance matrix as CSV into dir.
func (s *Service) ExportCompliance(ctx context.Context, fs afero.Fs, dir string, id uuid.UUID) (string, int, error) {
	items, err := s.ComplianceMatrix(ctx, id)
	if err != nil {
		return "", 0, &ErrExport{Report: "compliance", Cause: err}
	}
	path := filepath.Join(dir, s.ExportFilename("compliance"))
	if err := export.Save(fs, path, items, ComplianceColumns()); err != nil {
		return "", 0, &ErrExport{Report: "compliance", Cause: err}
	}
	s.logger.Info("exported report", zap.String("report", "compliance"), zap.String("path", path), zap.Int("rows", len(items)))
	return path, len(items), nil
}

// ExportFilename returns a timestamped CSV filename for report.
func (s *Service) ExportFilename(report string) string {
	return fmt.Sprintf("missionpulse_%s_%s.csv", report, s.now().Format("20060102_150405"))
}

func (s *Service) logPanel(panel string, e *settle.ErrorInfo) {
	if e == nil {
		return
	}
	s.logger.Warn("panel failed to load", zap.String("panel", panel), zap.String("error", e.Message))
}

func counted[T any](fn func(context.Context) ([]T, error)) settle.Query[[]T] {
	return settle.FromCounted(func(ctx context.Context) ([]T, int64, error) {
		rows, err := fn(ctx)
		return rows, int64(len(rows)), err
	})
}
