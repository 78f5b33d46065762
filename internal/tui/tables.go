package tui

import (
	"github.com/missionpulse/missionpulse/internal/app"
	"github.com/missionpulse/missionpulse/internal/database"
	"github.com/missionpulse/missionpulse/internal/export"
	"github.com/missionpulse/missionpulse/internal/settle"
	"github.com/missionpulse/missionpulse/internal/tui/results"
)

// tableFrom renders a settled result into a results table, or returns the
// panel's error.
func tableFrom[T any](name, title string, r settle.Result[[]T], cols []export.Column[T]) (*results.Table, error) {
	if err := r.Err(); err != nil {
		return nil, err
	}
	var rows []T
	if r.Data != nil {
		rows = *r.Data
	}
	return &results.Table{
		Name:    name,
		Title:   title,
		Columns: export.Headers(cols),
		Rows:    export.Cells(rows, cols),
		Nulls:   export.Nulls(rows, cols),
		Count:   r.Count,
	}, nil
}

func pipelineTable(r settle.Result[[]database.Opportunity]) (*results.Table, error) {
	return tableFrom("pipeline", "Pipeline", r, app.PipelineColumns())
}

func stagesTable(r settle.Result[[]database.StageSummary]) (*results.Table, error) {
	return tableFrom("stages", "Stages", r, app.StageColumns())
}

func complianceTable(title string, r settle.Result[[]database.ComplianceItem]) (*results.Table, error) {
	return tableFrom("compliance", "Compliance Matrix · "+title, r, app.ComplianceColumns())
}

func sectionsTable(title string, r settle.Result[[]database.ProposalSection]) (*results.Table, error) {
	return tableFrom("sections", "Proposal Sections · "+title, r, app.SectionColumns())
}
