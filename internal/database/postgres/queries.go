package postgres

import (
	"strconv"
	"strings"

	"github.com/missionpulse/missionpulse/internal/database"
)

// SQL queries for the pipeline schema.
const (
	selectOpportunity = `
		SELECT id, title, agency, stage, owner, value, due_date, updated_at
		FROM opportunities`

	countOpportunity = `
		SELECT count(*)
		FROM opportunities`

	queryGetOpportunity = selectOpportunity + `
		WHERE id = $1`

	queryListCompliance = `
		SELECT id, opportunity_id, reference, requirement, status, owner
		FROM compliance_items
		WHERE opportunity_id = $1
		ORDER BY reference, id`

	queryListSections = `
		SELECT id, opportunity_id, volume, title, status, owner, page_limit, page_count
		FROM proposal_sections
		WHERE opportunity_id = $1
		ORDER BY volume, position, id`

	queryStageSummary = `
		SELECT stage, count(*), COALESCE(sum(value), 0)::float8
		FROM opportunities
		GROUP BY stage`
)

// buildOpportunityQuery appends the WHERE clause for f to base.
// Values are always bound as parameters.
func buildOpportunityQuery(base string, f database.OpportunityFilter, paged bool) (string, []any) {
	var (
		conds []string
		args  []any
	)
	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Stage != "" {
		conds = append(conds, "stage = "+bind(f.Stage))
	}
	if f.Agency != "" {
		conds = append(conds, "agency ILIKE "+bind(escapeLike(f.Agency)))
	}
	if f.Search != "" {
		p := bind("%" + escapeLike(f.Search) + "%")
		conds = append(conds, "(title ILIKE "+p+" OR agency ILIKE "+p+")")
	}

	var b strings.Builder
	b.WriteString(base)
	if len(conds) > 0 {
		b.WriteString("\n\t\tWHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	if paged {
		b.WriteString("\n\t\tORDER BY updated_at DESC, id")
		if f.Limit > 0 {
			b.WriteString("\n\t\tLIMIT " + bind(f.Limit))
		}
	}
	return b.String(), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
