package tool

import (
	"context"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/schema"
)

// searchTeamTool finds teams by case-insensitive substring match over the
// canonical name. Exact matches sort first, the rest alphabetically.
type searchTeamTool struct {
	graphTool
}

func newSearchTeamTool(client graph.Client) *searchTeamTool {
	return &searchTeamTool{graphTool{
		name:        "search_team",
		description: "Search teams by name (case-insensitive substring match)",
		params: []ParamSpec{
			{Name: "name", Type: ParamString, Description: "full or partial team name", Required: true},
			limitSpec(),
		},
		client: client,
	}}
}

func (t *searchTeamTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (t:`+schema.LabelTeam+`)
		WHERE toLower(t.name) CONTAINS toLower($name)
		OPTIONAL MATCH (s:`+schema.LabelStadium+`) WHERE s.id = t.stadium_id
		RETURN t.id AS id, t.name AS name, t.founded AS founded,
		       s.name AS stadium
		ORDER BY CASE WHEN toLower(t.name) = toLower($name) THEN 0 ELSE 1 END,
		         t.name ASC
		LIMIT $limit
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// teamRosterTool lists the players with a PLAYS_FOR edge to the team.
type teamRosterTool struct {
	graphTool
}

func newTeamRosterTool(client graph.Client) *teamRosterTool {
	return &teamRosterTool{graphTool{
		name:        "get_team_roster",
		description: "List the players currently registered with a team",
		params: []ParamSpec{
			{Name: "team_name", Type: ParamString, Description: "exact team name", Required: true},
		},
		client: client,
	}}
}

func (t *teamRosterTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (t:`+schema.LabelTeam+`)
		WHERE toLower(t.name) = toLower($name)
		MATCH (p:`+schema.LabelPlayer+`)-[:`+schema.RelPlaysFor+`]->(t)
		RETURN p.id AS id, p.name AS name, p.position AS position,
		       p.nationality AS nationality
		ORDER BY p.name ASC
	`, map[string]any{"name": params["team_name"]})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// searchTeamsByLeagueTool lists the teams that have played in a
// competition. Membership comes from match participation rather than a
// team property, so the list reflects what was actually ingested.
type searchTeamsByLeagueTool struct {
	graphTool
}

func newSearchTeamsByLeagueTool(client graph.Client) *searchTeamsByLeagueTool {
	return &searchTeamsByLeagueTool{graphTool{
		name:        "search_teams_by_league",
		description: "Teams that have played matches in a competition",
		params: []ParamSpec{
			{Name: "league", Type: ParamString, Description: "exact competition name", Required: true},
			{Name: "limit", Type: ParamInt, Description: "maximum number of results",
				Min: 1, Max: 100, Default: 20},
		},
		client: client,
	}}
}

func (t *searchTeamsByLeagueTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (m:`+schema.LabelMatch+`)-[:`+schema.RelPartOf+`]->(c:`+schema.LabelCompetition+`)
		WHERE toLower(c.name) = toLower($league)
		MATCH (m)-[:`+schema.RelHomeTeam+`|`+schema.RelAwayTeam+`]->(t:`+schema.LabelTeam+`)
		WITH DISTINCT t
		OPTIONAL MATCH (p:`+schema.LabelPlayer+`)-[:`+schema.RelPlaysFor+`]->(t)
		RETURN t.id AS id, t.name AS name, t.founded AS founded,
		       count(p) AS player_count
		ORDER BY name ASC
		LIMIT $limit
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// teamStatsQuery aggregates a team's record over both match roles. The
// coalesce guards keep a team with no recorded matches at zero counts
// instead of nulls.
const teamStatsQuery = `
	MATCH (t:` + schema.LabelTeam + `)
	WHERE toLower(t.name) = toLower($name)
	OPTIONAL MATCH (m:` + schema.LabelMatch + `)-[:` + schema.RelHomeTeam + `|` + schema.RelAwayTeam + `]->(t)
	WITH t, m,
	     CASE WHEN (m)-[:` + schema.RelHomeTeam + `]->(t) THEN m.home_score ELSE m.away_score END AS gf,
	     CASE WHEN (m)-[:` + schema.RelHomeTeam + `]->(t) THEN m.away_score ELSE m.home_score END AS ga
	RETURN t.id AS id, t.name AS name,
	       count(m) AS matches,
	       coalesce(sum(CASE WHEN gf > ga THEN 1 ELSE 0 END), 0) AS wins,
	       coalesce(sum(CASE WHEN gf = ga THEN 1 ELSE 0 END), 0) AS draws,
	       coalesce(sum(CASE WHEN gf < ga THEN 1 ELSE 0 END), 0) AS losses,
	       coalesce(sum(gf), 0) AS goals_for,
	       coalesce(sum(ga), 0) AS goals_against
`

// teamStatsTool computes a team's win/draw/loss record and goal totals.
type teamStatsTool struct {
	graphTool
}

func newTeamStatsTool(client graph.Client) *teamStatsTool {
	return &teamStatsTool{graphTool{
		name:        "get_team_stats",
		description: "Win/draw/loss record and goal totals for a team",
		params: []ParamSpec{
			{Name: "team_name", Type: ParamString, Description: "exact team name", Required: true},
		},
		client: client,
	}}
}

func (t *teamStatsTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, teamStatsQuery, map[string]any{"name": params["team_name"]})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}
