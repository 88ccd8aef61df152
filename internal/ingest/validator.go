package ingest

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/schema"
	"github.com/adrianco/demo-brazil/internal/types"
)

// Violation describes one integrity finding in the store.
type Violation struct {
	Check    string `json:"check"`
	NodeID   string `json:"node_id,omitempty"`
	Label    string `json:"label,omitempty"`
	Detail   string `json:"detail"`
	Severity string `json:"severity"`
}

// IntegrityReport aggregates the findings of one validation sweep.
type IntegrityReport struct {
	Violations []Violation `json:"violations"`
	Checked    []string    `json:"checked"`
}

// IsClean returns true when the sweep found no violations.
func (r *IntegrityReport) IsClean() bool {
	return len(r.Violations) == 0
}

// Summary renders a one-line description of the report.
func (r *IntegrityReport) Summary() string {
	if r.IsClean() {
		return fmt.Sprintf("clean (%d checks)", len(r.Checked))
	}
	counts := make(map[string]int)
	for _, v := range r.Violations {
		counts[v.Check]++
	}
	parts := make([]string, 0, len(counts))
	for _, check := range r.Checked {
		if n := counts[check]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", check, n))
		}
	}
	return fmt.Sprintf("%d violations: %s", len(r.Violations), strings.Join(parts, " "))
}

// IntegrityValidator runs read-only consistency checks against the store
// after a load: matches must reference both teams, transfers both teams and
// a player, no two nodes of a label may share a natural name key, and the
// distinctness rules for matches and transfers must hold.
type IntegrityValidator struct {
	client graph.Client
}

// NewIntegrityValidator creates a validator backed by the given client.
func NewIntegrityValidator(client graph.Client) *IntegrityValidator {
	return &IntegrityValidator{client: client}
}

type integrityCheck struct {
	name     string
	cypher   string
	severity string
	describe func(record map[string]any) (nodeID, label, detail string)
}

var integrityChecks = []integrityCheck{
	{
		name: "orphan_match",
		cypher: `
			MATCH (m:` + schema.LabelMatch + `)
			WHERE NOT (m)-[:` + schema.RelHomeTeam + `]->(:` + schema.LabelTeam + `)
			   OR NOT (m)-[:` + schema.RelAwayTeam + `]->(:` + schema.LabelTeam + `)
			RETURN m.id AS id, m.date AS date
		`,
		severity: "error",
		describe: func(rec map[string]any) (string, string, string) {
			return stringValue(rec["id"]), schema.LabelMatch,
				fmt.Sprintf("match on %v is missing a home or away team", rec["date"])
		},
	},
	{
		name: "orphan_transfer",
		cypher: `
			MATCH (t:` + schema.LabelTransfer + `)
			WHERE NOT (:` + schema.LabelPlayer + `)-[:` + schema.RelTransferred + `]->(t)
			   OR NOT (t)-[:` + schema.RelFromTeam + `]->(:` + schema.LabelTeam + `)
			   OR NOT (t)-[:` + schema.RelToTeam + `]->(:` + schema.LabelTeam + `)
			RETURN t.id AS id, t.date AS date
		`,
		severity: "error",
		describe: func(rec map[string]any) (string, string, string) {
			return stringValue(rec["id"]), schema.LabelTransfer,
				fmt.Sprintf("transfer on %v is missing its player or a team endpoint", rec["date"])
		},
	},
	{
		name: "self_match",
		cypher: `
			MATCH (m:` + schema.LabelMatch + `)-[:` + schema.RelHomeTeam + `]->(t:` + schema.LabelTeam + `),
			      (m)-[:` + schema.RelAwayTeam + `]->(t)
			RETURN m.id AS id, t.name AS team
		`,
		severity: "error",
		describe: func(rec map[string]any) (string, string, string) {
			return stringValue(rec["id"]), schema.LabelMatch,
				fmt.Sprintf("match has %v as both home and away team", rec["team"])
		},
	},
	{
		name: "self_transfer",
		cypher: `
			MATCH (x:` + schema.LabelTransfer + `)-[:` + schema.RelFromTeam + `]->(t:` + schema.LabelTeam + `),
			      (x)-[:` + schema.RelToTeam + `]->(t)
			RETURN x.id AS id, t.name AS team
		`,
		severity: "error",
		describe: func(rec map[string]any) (string, string, string) {
			return stringValue(rec["id"]), schema.LabelTransfer,
				fmt.Sprintf("transfer has %v as both origin and destination", rec["team"])
		},
	},
	{
		name: "duplicate_team_name",
		cypher: `
			MATCH (t:` + schema.LabelTeam + `)
			WITH toLower(t.name) AS key, collect(t.id) AS ids
			WHERE size(ids) > 1
			RETURN key, ids
		`,
		severity: "warning",
		describe: func(rec map[string]any) (string, string, string) {
			return "", schema.LabelTeam,
				fmt.Sprintf("multiple team nodes share the name %v: %v", rec["key"], rec["ids"])
		},
	},
	{
		name: "duplicate_player_identity",
		cypher: `
			MATCH (p:` + schema.LabelPlayer + `)
			WITH toLower(p.name) AS name, collect(p.id) AS ids,
			     collect(DISTINCT p.birth_date) AS births
			WHERE size(ids) > 1
			RETURN name, ids, births
		`,
		severity: "warning",
		describe: func(rec map[string]any) (string, string, string) {
			return "", schema.LabelPlayer,
				fmt.Sprintf("multiple player nodes share name %v: %v (birth dates %v)", rec["name"], rec["ids"], rec["births"])
		},
	},
}

// Validate runs all checks concurrently and aggregates their findings. A
// query failure aborts the sweep; violations alone never produce an error.
func (v *IntegrityValidator) Validate(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}
	findings := make([][]Violation, len(integrityChecks))

	g, gctx := errgroup.WithContext(ctx)
	for i, check := range integrityChecks {
		i, check := i, check
		report.Checked = append(report.Checked, check.name)
		g.Go(func() error {
			result, err := v.client.Read(gctx, check.cypher, nil)
			if err != nil {
				return types.WrapError(types.STORE_UNAVAILABLE,
					fmt.Sprintf("integrity check %s failed", check.name), err)
			}
			for _, rec := range result.Records {
				nodeID, label, detail := check.describe(rec)
				findings[i] = append(findings[i], Violation{
					Check:    check.name,
					NodeID:   nodeID,
					Label:    label,
					Detail:   detail,
					Severity: check.severity,
				})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, vs := range findings {
		report.Violations = append(report.Violations, vs...)
	}
	return report, nil
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
