package tool

import (
	"context"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/schema"
)

// matchRowQuery is the shared projection for match listings.
const matchRowQuery = `
	RETURN m.id AS id, m.date AS date,
	       h.name AS home_team, a.name AS away_team,
	       m.home_score AS home_score, m.away_score AS away_score,
	       c.name AS competition
`

// matchDetailsTool looks up one match by id with its full neighborhood.
type matchDetailsTool struct {
	graphTool
}

func newMatchDetailsTool(client graph.Client) *matchDetailsTool {
	return &matchDetailsTool{graphTool{
		name:        "get_match_details",
		description: "Full detail for one match: teams, score, venue, competition, scorers",
		params: []ParamSpec{
			{Name: "match_id", Type: ParamString, Description: "canonical match id", Required: true},
		},
		client: client,
	}}
}

func (t *matchDetailsTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	rows, err := t.read(ctx, `
		MATCH (m:`+schema.LabelMatch+` {id: $match_id})
		MATCH (m)-[:`+schema.RelHomeTeam+`]->(h:`+schema.LabelTeam+`)
		MATCH (m)-[:`+schema.RelAwayTeam+`]->(a:`+schema.LabelTeam+`)
		OPTIONAL MATCH (m)-[:`+schema.RelPartOf+`]->(c:`+schema.LabelCompetition+`)
		OPTIONAL MATCH (m)-[:`+schema.RelHostedAt+`]->(s:`+schema.LabelStadium+`)
		OPTIONAL MATCH (sc:`+schema.LabelPlayer+`)-[:`+schema.RelScoredIn+`]->(m)
		OPTIONAL MATCH (ap:`+schema.LabelPlayer+`)-[:`+schema.RelAssistedIn+`]->(m)
		RETURN m.id AS id, m.date AS date,
		       h.name AS home_team, a.name AS away_team,
		       m.home_score AS home_score, m.away_score AS away_score,
		       c.name AS competition, s.name AS stadium,
		       collect(DISTINCT sc.name) AS scorers,
		       collect(DISTINCT ap.name) AS assists
	`, params)
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// searchMatchesTool filters matches by participating team and/or
// competition. At least one filter is required.
type searchMatchesTool struct {
	graphTool
}

func newSearchMatchesTool(client graph.Client) *searchMatchesTool {
	return &searchMatchesTool{graphTool{
		name:        "search_matches",
		description: "Find matches by participating team and/or competition",
		params: []ParamSpec{
			{Name: "team_name", Type: ParamString, Description: "exact team name"},
			{Name: "competition", Type: ParamString, Description: "exact competition name"},
			limitSpec(),
		},
		client: client,
	}}
}

func (t *searchMatchesTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	team, _ := params["team_name"].(string)
	competition, _ := params["competition"].(string)
	if team == "" && competition == "" {
		return nil, invalidParam("team_name", "at least one of team_name and competition is required")
	}

	rows, err := t.read(ctx, `
		MATCH (m:`+schema.LabelMatch+`)-[:`+schema.RelHomeTeam+`]->(h:`+schema.LabelTeam+`)
		MATCH (m)-[:`+schema.RelAwayTeam+`]->(a:`+schema.LabelTeam+`)
		OPTIONAL MATCH (m)-[:`+schema.RelPartOf+`]->(c:`+schema.LabelCompetition+`)
		WITH m, h, a, c
		WHERE ($team = '' OR toLower(h.name) = toLower($team) OR toLower(a.name) = toLower($team))
		  AND ($competition = '' OR toLower(c.name) = toLower($competition))
		`+matchRowQuery+`
		ORDER BY m.date ASC, m.id ASC
		LIMIT $limit
	`, map[string]any{
		"team":        team,
		"competition": competition,
		"limit":       params["limit"],
	})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// searchMatchesByDateTool lists matches within an inclusive date range in
// chronological order.
type searchMatchesByDateTool struct {
	graphTool
}

func newSearchMatchesByDateTool(client graph.Client) *searchMatchesByDateTool {
	return &searchMatchesByDateTool{graphTool{
		name:        "search_matches_by_date",
		description: "List matches between two dates (inclusive), chronologically",
		params: []ParamSpec{
			{Name: "start_date", Type: ParamDate, Required: true},
			{Name: "end_date", Type: ParamDate, Required: true},
			limitSpec(),
		},
		client: client,
	}}
}

func (t *searchMatchesByDateTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	start := params["start_date"].(string)
	end := params["end_date"].(string)
	if start > end {
		return nil, invalidParam("start_date", "must not be after end_date")
	}

	// Dates are stored as YYYY-MM-DD strings, so lexicographic range
	// comparison is chronological.
	rows, err := t.read(ctx, `
		MATCH (m:`+schema.LabelMatch+`)-[:`+schema.RelHomeTeam+`]->(h:`+schema.LabelTeam+`)
		MATCH (m)-[:`+schema.RelAwayTeam+`]->(a:`+schema.LabelTeam+`)
		OPTIONAL MATCH (m)-[:`+schema.RelPartOf+`]->(c:`+schema.LabelCompetition+`)
		WITH m, h, a, c
		WHERE m.date >= $start AND m.date <= $end
		`+matchRowQuery+`
		ORDER BY m.date ASC, m.id ASC
		LIMIT $limit
	`, map[string]any{
		"start": start,
		"end":   end,
		"limit": params["limit"],
	})
	if err != nil {
		return nil, err
	}
	return NewResult(t.name, params, rows), nil
}

// headToHeadTool aggregates the record between two teams and lists their
// meetings chronologically.
type headToHeadTool struct {
	graphTool
}

func newHeadToHeadTool(client graph.Client) *headToHeadTool {
	return &headToHeadTool{graphTool{
		name:        "get_head_to_head",
		description: "Historical record between two teams with all meetings",
		params: []ParamSpec{
			{Name: "team1_name", Type: ParamString, Required: true},
			{Name: "team2_name", Type: ParamString, Required: true},
		},
		client: client,
	}}
}

func (t *headToHeadTool) Execute(ctx context.Context, params map[string]any) (*Result, error) {
	team1 := params["team1_name"].(string)
	team2 := params["team2_name"].(string)

	rows, err := t.read(ctx, `
		MATCH (m:`+schema.LabelMatch+`)-[:`+schema.RelHomeTeam+`]->(h:`+schema.LabelTeam+`)
		MATCH (m)-[:`+schema.RelAwayTeam+`]->(a:`+schema.LabelTeam+`)
		WHERE (toLower(h.name) = toLower($team1) AND toLower(a.name) = toLower($team2))
		   OR (toLower(h.name) = toLower($team2) AND toLower(a.name) = toLower($team1))
		RETURN m.id AS id, m.date AS date,
		       h.name AS home_team, a.name AS away_team,
		       m.home_score AS home_score, m.away_score AS away_score
		ORDER BY m.date ASC, m.id ASC
	`, map[string]any{"team1": team1, "team2": team2})
	if err != nil {
		return nil, err
	}

	summary := summarizeHeadToHead(team1, team2, rows)
	result := NewResult(t.name, params, []map[string]any{summary})
	result.TotalFound = len(rows)
	return result, nil
}

// summarizeHeadToHead folds the match list into a win/draw tally. Which
// side a score belongs to depends on who hosted each meeting.
func summarizeHeadToHead(team1, team2 string, matches []map[string]any) map[string]any {
	var team1Wins, team2Wins, draws int
	for _, m := range matches {
		home, _ := m["home_team"].(string)
		homeScore := asInt(m["home_score"])
		awayScore := asInt(m["away_score"])

		team1Home := equalsFold(home, team1)
		switch {
		case homeScore == awayScore:
			draws++
		case (homeScore > awayScore) == team1Home:
			team1Wins++
		default:
			team2Wins++
		}
	}
	return map[string]any{
		"team1":         team1,
		"team2":         team2,
		"total_matches": len(matches),
		"team1_wins":    team1Wins,
		"team2_wins":    team2Wins,
		"draws":         draws,
		"matches":       matches,
	}
}
