package tool

import (
	"context"
	"strings"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/schema"
)

// comparePlayersTool runs the player-stats aggregation for two players and
// returns both side by side.
type comparePlayersTool struct {
	graphTool
}

func newComparePlayersTool(client graph.Client) *comparePlayersTool {
	return &comparePlayersTool{graphTool{
		name:        "compare_players",
		description: "Side-by-side statistics for two players",
		params: []ParamSpec{
			{Name: "player1_name", Type: ParamString, Required: true},
			{Name: "player2_name", Type: ParamString, Required: true},
		},
		client: client,
	}}
}

func (t *comparePlayersTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	comparison := make([]map[string]any, 0, 2)
	for _, key := range []string{"player1_name", "player2_name"} {
		rows, err := t.read(ctx, playerStatsQuery, map[string]any{"name": params[key]})
		if err != nil {
			return nil, err
		}
		// An unknown player contributes no row; the comparison still
		// succeeds with whatever was found.
		comparison = append(comparison, rows...)
	}
	return NewResult(t.name, params, comparison), nil
}

// compareTeamsTool runs the team-stats aggregation for two teams.
type compareTeamsTool struct {
	graphTool
}

func newCompareTeamsTool(client graph.Client) *compareTeamsTool {
	return &compareTeamsTool{graphTool{
		name:        "compare_teams",
		description: "Side-by-side records for two teams",
		params: []ParamSpec{
			{Name: "team1_name", Type: ParamString, Required: true},
			{Name: "team2_name", Type: ParamString, Required: true},
		},
		client: client,
	}}
}

func (t *compareTeamsTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	comparison := make([]map[string]any, 0, 2)
	for _, key := range []string{"team1_name", "team2_name"} {
		rows, err := t.read(ctx, teamStatsQuery, map[string]any{"name": params[key]})
		if err != nil {
			return nil, err
		}
		comparison = append(comparison, rows...)
	}
	return NewResult(t.name, params, comparison), nil
}

// topScorersTool ranks players by goals scored in one competition.
// Descending by goals, ties broken by id ascending for a stable order.
type topScorersTool struct {
	graphTool
}

func newTopScorersTool(client graph.Client) *topScorersTool {
	return &topScorersTool{graphTool{
		name:        "get_competition_top_scorers",
		description: "Top goal scorers of a competition",
		params: []ParamSpec{
			{Name: "competition", Type: ParamString, Required: true},
			limitSpec(),
		},
		client: client,
	}}
}

func (t *topScorersTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (p:`+schema.LabelPlayer+`)-[:`+schema.RelScoredIn+`]->(m:`+schema.LabelMatch+`)-[:`+schema.RelPartOf+`]->(c:`+schema.LabelCompetition+`)
		WHERE toLower(c.name) = toLower($competition)
		RETURN p.id AS id, p.name AS name, count(m) AS goals
		ORDER BY goals DESC, id ASC
		LIMIT $limit
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// standingsTool builds a league table for one competition from its match
// results: three points per win, one per draw, ties broken by goal
// difference then goals scored.
type standingsTool struct {
	graphTool
}

func newStandingsTool(client graph.Client) *standingsTool {
	return &standingsTool{graphTool{
		name:        "get_competition_standings",
		description: "League table for a competition computed from match results",
		params: []ParamSpec{
			{Name: "competition", Type: ParamString, Required: true},
			{Name: "limit", Type: ParamInt, Description: "maximum number of table rows",
				Min: 1, Max: 100, Default: 20},
		},
		client: client,
	}}
}

func (t *standingsTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	// Each match contributes one row per side; UNWIND flips goals for
	// and against so home and away results aggregate the same way.
	rows, err := t.read(ctx, `
		MATCH (m:`+schema.LabelMatch+`)-[:`+schema.RelPartOf+`]->(c:`+schema.LabelCompetition+`)
		WHERE toLower(c.name) = toLower($competition)
		MATCH (m)-[:`+schema.RelHomeTeam+`]->(h:`+schema.LabelTeam+`)
		MATCH (m)-[:`+schema.RelAwayTeam+`]->(a:`+schema.LabelTeam+`)
		UNWIND [
			{id: h.id, team: h.name, gf: m.home_score, ga: m.away_score},
			{id: a.id, team: a.name, gf: m.away_score, ga: m.home_score}
		] AS side
		WITH side.id AS id, side.team AS team,
		     count(*) AS played,
		     sum(CASE WHEN side.gf > side.ga THEN 1 ELSE 0 END) AS wins,
		     sum(CASE WHEN side.gf = side.ga THEN 1 ELSE 0 END) AS draws,
		     sum(CASE WHEN side.gf < side.ga THEN 1 ELSE 0 END) AS losses,
		     sum(side.gf) AS goals_for,
		     sum(side.ga) AS goals_against
		RETURN id, team, played, wins, draws, losses,
		       goals_for, goals_against,
		       goals_for - goals_against AS goal_difference,
		       wins * 3 + draws AS points
		ORDER BY points DESC, goal_difference DESC, goals_for DESC, id ASC
		LIMIT $limit
	`, params)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		row["position"] = i + 1
	}
	return NewResult(t.name, params, rows), nil
}

// commonTeammatesTool intersects the PLAYS_FOR neighborhoods of two
// players: everyone who shares a club with both.
type commonTeammatesTool struct {
	graphTool
}

func newCommonTeammatesTool(client graph.Client) *commonTeammatesTool {
	return &commonTeammatesTool{graphTool{
		name:        "find_common_teammates",
		description: "Players who share a club with both given players",
		params: []ParamSpec{
			{Name: "player1_name", Type: ParamString, Required: true},
			{Name: "player2_name", Type: ParamString, Required: true},
		},
		client: client,
	}}
}

func (t *commonTeammatesTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (p1:`+schema.LabelPlayer+`)-[:`+schema.RelPlaysFor+`]->(t1:`+schema.LabelTeam+`)<-[:`+schema.RelPlaysFor+`]-(x:`+schema.LabelPlayer+`)
		MATCH (p2:`+schema.LabelPlayer+`)-[:`+schema.RelPlaysFor+`]->(t2:`+schema.LabelTeam+`)<-[:`+schema.RelPlaysFor+`]-(x)
		WHERE toLower(p1.name) = toLower($player1)
		  AND toLower(p2.name) = toLower($player2)
		  AND x <> p1 AND x <> p2
		RETURN DISTINCT x.id AS id, x.name AS name, x.position AS position
		ORDER BY name ASC
	`, map[string]any{
		"player1": params["player1_name"],
		"player2": params["player2_name"],
	})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// entityTool resolves any node by canonical id. A missing id is an empty
// success, consistent with the rest of the catalogue.
type entityTool struct {
	graphTool
}

func newEntityTool(client graph.Client) *entityTool {
	return &entityTool{graphTool{
		name:        "get_entity",
		description: "Look up any entity by its canonical id",
		params: []ParamSpec{
			{Name: "id", Type: ParamString, Required: true},
		},
		client: client,
	}}
}

func (t *entityTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (n {id: $id})
		RETURN labels(n) AS labels, properties(n) AS properties
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// asInt coerces the numeric types the store driver returns.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func equalsFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
