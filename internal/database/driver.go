package database

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the data access operations for the pipeline.
// All implementations must be safe for concurrent use.
type Store interface {
	// Connect establishes a connection to the database.
	Connect(ctx context.Context, dsn string) error

	// Close closes the database connection.
	Close() error

	// Ping checks if the connection is alive.
	Ping(ctx context.Context) error

	// DatabaseName returns the name of the connected database.
	DatabaseName() string

	// ListOpportunities returns opportunities matching the filter, most recently updated first.
	ListOpportunities(ctx context.Context, f OpportunityFilter) ([]Opportunity, error)

	// CountOpportunities returns the number of opportunities matching the filter, ignoring Limit.
	CountOpportunities(ctx context.Context, f OpportunityFilter) (int64, error)

	// GetOpportunity returns a single opportunity or ErrNotFound.
	GetOpportunity(ctx context.Context, id uuid.UUID) (*Opportunity, error)

	// ListComplianceItems returns the compliance matrix for an opportunity.
	ListComplianceItems(ctx context.Context, opportunityID uuid.UUID) ([]ComplianceItem, error)

	// ListProposalSections returns the proposal outline for an opportunity.
	ListProposalSections(ctx context.Context, opportunityID uuid.UUID) ([]ProposalSection, error)

	// StageSummary returns counts and total value per pipeline stage.
	StageSummary(ctx context.Context) ([]StageSummary, error)
}
