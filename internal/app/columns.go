package app

import (
	"time"

	"github.com/missionpulse/missionpulse/internal/database"
	"github.com/missionpulse/missionpulse/internal/export"
)

const dateLayout = "2006-01-02"

// PipelineColumns is the column set for the opportunity pipeline report.
func PipelineColumns() []export.Column[database.Opportunity] {
	return []export.Column[database.Opportunity]{
		{Header: "ID", Accessor: func(o database.Opportunity) any { return o.ID }},
		{Header: "Title", Accessor: func(o database.Opportunity) any { return o.Title }},
		{Header: "Agency", Accessor: func(o database.Opportunity) any { return o.Agency }},
		{Header: "Stage", Accessor: func(o database.Opportunity) any { return o.Stage }},
		{Header: "Owner", Accessor: func(o database.Opportunity) any { return o.Owner }},
		{Header: "Value", Accessor: func(o database.Opportunity) any { return o.Value }},
		{Header: "Due Date", Accessor: func(o database.Opportunity) any { return formatDate(o.DueDate) }},
		{Header: "Updated", Accessor: func(o database.Opportunity) any { return o.UpdatedAt.UTC().Format(time.RFC3339) }},
	}
}

// ComplianceColumns is the column set for a compliance matrix report.
func ComplianceColumns() []export.Column[database.ComplianceItem] {
	return []export.Column[database.ComplianceItem]{
		{Header: "Reference", Accessor: func(c database.ComplianceItem) any { return c.Reference }},
		{Header: "Requirement", Accessor: func(c database.ComplianceItem) any { return c.Requirement }},
		{Header: "Status", Accessor: func(c database.ComplianceItem) any { return c.Status }},
		{Header: "Owner", Accessor: func(c database.ComplianceItem) any { return c.Owner }},
	}
}

// SectionColumns is the column set for a proposal outline report.
func SectionColumns() []export.Column[database.ProposalSection] {
	return []export.Column[database.ProposalSection]{
		{Header: "Volume", Accessor: func(s database.ProposalSection) any { return s.Volume }},
		{Header: "Section", Accessor: func(s database.ProposalSection) any { return s.Title }},
		{Header: "Status", Accessor: func(s database.ProposalSection) any { return s.Status }},
		{Header: "Owner", Accessor: func(s database.ProposalSection) any { return s.Owner }},
		{Header: "Pages", Accessor: func(s database.ProposalSection) any { return s.PageCount }},
		{Header: "Page Limit", Accessor: func(s database.ProposalSection) any { return pageLimit(s.PageLimit) }},
	}
}

// StageColumns is the column set for the stage summary report.
func StageColumns() []export.Column[database.StageSummary] {
	return []export.Column[database.StageSummary]{
		{Header: "Stage", Accessor: func(s database.StageSummary) any { return s.Stage }},
		{Header: "Opportunities", Accessor: func(s database.StageSummary) any { return s.Count }},
		{Header: "Value", Accessor: func(s database.StageSummary) any { return s.Value }},
	}
}

func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// zero means no limit
func pageLimit(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}
