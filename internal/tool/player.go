package tool

import (
	"context"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/schema"
)

// searchPlayerTool finds players by case-insensitive substring match over
// the canonical name. Exact matches sort first, the rest alphabetically.
type searchPlayerTool struct {
	graphTool
}

func newSearchPlayerTool(client graph.Client) *searchPlayerTool {
	return &searchPlayerTool{graphTool{
		name:        "search_player",
		description: "Search players by name (case-insensitive substring match)",
		params: []ParamSpec{
			{Name: "name", Type: ParamString, Description: "full or partial player name", Required: true},
			limitSpec(),
		},
		client: client,
	}}
}

func (t *searchPlayerTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (p:`+schema.LabelPlayer+`)
		WHERE toLower(p.name) CONTAINS toLower($name)
		RETURN p.id AS id, p.name AS name, p.position AS position,
		       p.birth_date AS birth_date, p.nationality AS nationality
		ORDER BY CASE WHEN toLower(p.name) = toLower($name) THEN 0 ELSE 1 END,
		         p.name ASC
		LIMIT $limit
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// playerStatsTool aggregates a player's goals, assists, and appearance
// counts from the SCORED_IN / ASSISTED_IN neighborhood.
type playerStatsTool struct {
	graphTool
}

func newPlayerStatsTool(client graph.Client) *playerStatsTool {
	return &playerStatsTool{graphTool{
		name:        "get_player_stats",
		description: "Aggregate goal, assist, and appearance statistics for a player",
		params: []ParamSpec{
			{Name: "player_name", Type: ParamString, Description: "exact player name", Required: true},
		},
		client: client,
	}}
}

func (t *playerStatsTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, playerStatsQuery, map[string]any{"name": params["player_name"]})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

const playerStatsQuery = `
	MATCH (p:` + schema.LabelPlayer + `)
	WHERE toLower(p.name) = toLower($name)
	OPTIONAL MATCH (p)-[:` + schema.RelScoredIn + `]->(g:` + schema.LabelMatch + `)
	OPTIONAL MATCH (p)-[:` + schema.RelAssistedIn + `]->(a:` + schema.LabelMatch + `)
	OPTIONAL MATCH (p)-[:` + schema.RelPlaysFor + `]->(t:` + schema.LabelTeam + `)
	RETURN p.id AS id, p.name AS name, p.position AS position,
	       count(DISTINCT g) AS goals, count(DISTINCT a) AS assists,
	       count(DISTINCT g) + count(DISTINCT a) AS matches_contributed,
	       collect(DISTINCT t.name) AS teams
`

// playerCareerTool returns a player's club history: current PLAYS_FOR
// edges plus the transfer record in chronological order.
type playerCareerTool struct {
	graphTool
}

func newPlayerCareerTool(client graph.Client) *playerCareerTool {
	return &playerCareerTool{graphTool{
		name:        "get_player_career",
		description: "Club history for a player: current clubs and transfers in date order",
		params: []ParamSpec{
			{Name: "player_name", Type: ParamString, Description: "exact player name", Required: true},
		},
		client: client,
	}}
}

func (t *playerCareerTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (p:`+schema.LabelPlayer+`)
		WHERE toLower(p.name) = toLower($name)
		OPTIONAL MATCH (p)-[:`+schema.RelPlaysFor+`]->(t:`+schema.LabelTeam+`)
		OPTIONAL MATCH (p)-[:`+schema.RelTransferred+`]->(x:`+schema.LabelTransfer+`),
		               (x)-[:`+schema.RelFromTeam+`]->(f:`+schema.LabelTeam+`),
		               (x)-[:`+schema.RelToTeam+`]->(d:`+schema.LabelTeam+`)
		WITH p, collect(DISTINCT t.name) AS clubs,
		     collect(DISTINCT {date: x.date, from: f.name, to: d.name, fee: x.fee}) AS moves
		RETURN p.id AS id, p.name AS name, clubs,
		       [m IN moves WHERE m.date IS NOT NULL | m] AS transfers
	`, map[string]any{"name": params["player_name"]})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// searchPlayersByPositionTool lists players for one canonical position.
type searchPlayersByPositionTool struct {
	graphTool
}

func newSearchPlayersByPositionTool(client graph.Client) *searchPlayersByPositionTool {
	return &searchPlayersByPositionTool{graphTool{
		name:        "search_players_by_position",
		description: "List players playing a given position",
		params: []ParamSpec{
			{
				Name:     "position",
				Type:     ParamEnum,
				Required: true,
				Enum: []string{
					schema.PositionGoalkeeper.String(),
					schema.PositionDefender.String(),
					schema.PositionMidfielder.String(),
					schema.PositionForward.String(),
				},
			},
			limitSpec(),
		},
		client: client,
	}}
}

func (t *searchPlayersByPositionTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (p:`+schema.LabelPlayer+` {position: $position})
		RETURN p.id AS id, p.name AS name, p.position AS position,
		       p.nationality AS nationality
		ORDER BY p.name ASC
		LIMIT $limit
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}
