package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup by ID matches no row.
var ErrNotFound = errors.New("not found")

// Pipeline stages, in order.
const (
	StageQualify   = "qualify"
	StageCapture   = "capture"
	StageProposal  = "proposal"
	StageSubmitted = "submitted"
	StageWon       = "won"
	StageLost      = "lost"
)

// Stages lists every pipeline stage in pipeline order.
var Stages = []string{StageQualify, StageCapture, StageProposal, StageSubmitted, StageWon, StageLost}

// Opportunity is a tracked government-contracting pursuit.
type Opportunity struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Agency    string     `json:"agency"`
	Stage     string     `json:"stage"`
	Owner     string     `json:"owner"`
	Value     float64    `json:"value"`
	DueDate   *time.Time `json:"dueDate"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ComplianceItem is one row of an opportunity's compliance matrix.
type ComplianceItem struct {
	ID            uuid.UUID `json:"id"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	Reference     string    `json:"reference"`
	Requirement   string    `json:"requirement"`
	Status        string    `json:"status"`
	Owner         string    `json:"owner"`
}

// ProposalSection is a writing assignment within a proposal volume.
type ProposalSection struct {
	ID            uuid.UUID `json:"id"`
	OpportunityID uuid.UUID `json:"opportunityId"`
	Volume        string    `json:"volume"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	Owner         string    `json:"owner"`
	PageLimit     int       `json:"pageLimit"`
	PageCount     int       `json:"pageCount"`
}

// StageSummary aggregates the pipeline for one stage.
type StageSummary struct {
	Stage string  `json:"stage"`
	Count int64   `json:"count"`
	Value float64 `json:"value"`
}

// OpportunityFilter narrows ListOpportunities. Zero values mean no filter.
type OpportunityFilter struct {
	Stage  string
	Agency string
	Search string
	Limit  int
}
