package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/missionpulse/missionpulse/internal/database"
)

// Options controls pool sizing.
type Options struct {
	MaxConns int32
	MinConns int32
}

// Driver implements the database.Store interface for PostgreSQL.
type Driver struct {
	pool   *pgxpool.Pool
	dbName string
	opts   Options
}

// New creates a new PostgreSQL driver.
func New(opts Options) *Driver {
	if opts.MaxConns <= 0 {
		opts.MaxConns = 5
	}
	if opts.MinConns <= 0 || opts.MinConns > opts.MaxConns {
		opts.MinConns = 1
	}
	return &Driver{opts: opts}
}

// Connect establishes a connection pool to PostgreSQL.
func (d *Driver) Connect(ctx context.Context, dsn string) error {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}

	cfg.MaxConns = d.opts.MaxConns
	cfg.MinConns = d.opts.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}

	d.pool = pool
	d.dbName = cfg.ConnConfig.Database
	return nil
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.pool != nil {
		d.pool.Close()
	}
	return nil
}

// Ping checks if the connection is alive.
func (d *Driver) Ping(ctx context.Context) error {
	if d.pool == nil {
		return errNotConnected
	}
	return d.pool.Ping(ctx)
}

// DatabaseName returns the name of the connected database.
func (d *Driver) DatabaseName() string {
	return d.dbName
}

var errNotConnected = errors.New("not connected")

// ListOpportunities returns opportunities matching f.
func (d *Driver) ListOpportunities(ctx context.Context, f database.OpportunityFilter) ([]database.Opportunity, error) {
	if d.pool == nil {
		return nil, errNotConnected
	}
	query, args := buildOpportunityQuery(selectOpportunity, f, true)
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list opportunities: %w", err)
	}
	defer rows.Close()

	var opps []database.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity: %w", err)
		}
		opps = append(opps, o)
	}
	return opps, rows.Err()
}

// CountOpportunities returns the exact count of opportunities matching f.
func (d *Driver) CountOpportunities(ctx context.Context, f database.OpportunityFilter) (int64, error) {
	if d.pool == nil {
		return 0, errNotConnected
	}
	query, args := buildOpportunityQuery(countOpportunity, f, false)
	var n int64
	if err := d.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count opportunities: %w", err)
	}
	return n, nil
}

// GetOpportunity returns one opportunity by ID.
func (d *Driver) GetOpportunity(ctx context.Context, id uuid.UUID) (*database.Opportunity, error) {
	if d.pool == nil {
		return nil, errNotConnected
	}
	o, err := scanOpportunity(d.pool.QueryRow(ctx, queryGetOpportunity, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("get opportunity: %w", err)
	}
	return &o, nil
}

// ListComplianceItems returns the compliance matrix for an opportunity.
func (d *Driver) ListComplianceItems(ctx context.Context, opportunityID uuid.UUID) ([]database.ComplianceItem, error) {
	if d.pool == nil {
		return nil, errNotConnected
	}
	rows, err := d.pool.Query(ctx, queryListCompliance, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list compliance: %w", err)
	}
	defer rows.Close()

	var items []database.ComplianceItem
	for rows.Next() {
		var c database.ComplianceItem
		if err := rows.Scan(&c.ID, &c.OpportunityID, &c.Reference, &c.Requirement, &c.Status, &c.Owner); err != nil {
			return nil, fmt.Errorf("scan compliance item: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListProposalSections returns the proposal outline for an opportunity.
func (d *Driver) ListProposalSections(ctx context.Context, opportunityID uuid.UUID) ([]database.ProposalSection, error) {
	if d.pool == nil {
		return nil, errNotConnected
	}
	rows, err := d.pool.Query(ctx, queryListSections, opportunityID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []database.ProposalSection
	for rows.Next() {
		var s database.ProposalSection
		if err := rows.Scan(&s.ID, &s.OpportunityID, &s.Volume, &s.Title, &s.Status, &s.Owner, &s.PageLimit, &s.PageCount); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// StageSummary returns per-stage totals in pipeline order. Stages with no
// opportunities are included with zero values.
func (d *Driver) StageSummary(ctx context.Context) ([]database.StageSummary, error) {
	if d.pool == nil {
		return nil, errNotConnected
	}
	rows, err := d.pool.Query(ctx, queryStageSummary)
	if err != nil {
		return nil, fmt.Errorf("stage summary: %w", err)
	}
	defer rows.Close()

	byStage := make(map[string]database.StageSummary)
	for rows.Next() {
		var s database.StageSummary
		if err := rows.Scan(&s.Stage, &s.Count, &s.Value); err != nil {
			return nil, fmt.Errorf("scan stage: %w", err)
		}
		byStage[s.Stage] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orderStages(byStage), nil
}

func orderStages(byStage map[string]database.StageSummary) []database.StageSummary {
	out := make([]database.StageSummary, 0, len(database.Stages))
	for _, stage := range database.Stages {
		s, ok := byStage[stage]
		if !ok {
			s = database.StageSummary{Stage: stage}
		}
		out = append(out, s)
		delete(byStage, stage)
	}

	// unknown stages go last, alphabetically
	var extra []string
	for stage := range byStage {
		extra = append(extra, stage)
	}
	sort.Strings(extra)
	for _, stage := range extra {
		out = append(out, byStage[stage])
	}
	return out
}

func scanOpportunity(row pgx.Row) (database.Opportunity, error) {
	var o database.Opportunity
	err := row.Scan(&o.ID, &o.Title, &o.Agency, &o.Stage, &o.Owner, &o.Value, &o.DueDate, &o.UpdatedAt)
	return o, err
}
