package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/types"
)

func newTestLoader(client graph.Client, config LoaderConfig) *BatchLoader {
	config.SkipValidation = true
	return NewBatchLoader(client, nil, config, nil)
}

// countMergedNodes installs handlers that report every row as created.
func countMergedNodes(mock *graph.MockClient) {
	mock.HandleQuery("MERGE (n:", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		rows := params["rows"].([]map[string]any)
		return graph.QueryResult{Records: []map[string]any{
			{"created": int64(len(rows)), "updated": int64(0)},
		}}, nil
	})
	mock.HandleQuery("MERGE (a)-[r:", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		rows := params["rows"].([]map[string]any)
		return graph.QueryResult{Records: []map[string]any{
			{"created": int64(len(rows))},
		}}, nil
	})
}

func teamRow(name string) SourceRow {
	return SourceRow{
		Schema: "kaggle_teams",
		Fields: map[string]string{"team_name": name},
	}
}

func matchRow(date, home, away, homeGoals, awayGoals string) SourceRow {
	return SourceRow{
		Schema: "kaggle_matches",
		Fields: map[string]string{
			"datetime":  date,
			"home_team": home,
			"away_team": away,
			"home_goal": homeGoals,
			"away_goal": awayGoals,
		},
	}
}

func TestLoadMergesTeamNameVariantsIntoOneNode(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)
	loader := newTestLoader(mock, DefaultLoaderConfig())

	// The same club under three raw spellings plus a match referencing it.
	result, err := loader.Load(context.Background(), []SourceRow{
		teamRow("Palmeiras-SP"),
		teamRow("SE Palmeiras"),
		teamRow("Palmeiras"),
		matchRow("2023-11-08", "SE Palmeiras", "Santos FC", "2", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.BatchesCommitted)
	assert.False(t, result.HasErrors())

	teamCalls := mock.CallsMatching("MERGE (n:Team")
	require.Len(t, teamCalls, 1)
	rows := teamCalls[0].Params["rows"].([]map[string]any)
	assert.Len(t, rows, 2, "Palmeiras variants collapse to one node plus Santos")
}

func TestLoadMatchStatements(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)
	loader := newTestLoader(mock, DefaultLoaderConfig())

	result, err := loader.Load(context.Background(), []SourceRow{
		{
			Schema: "kaggle_matches",
			Fields: map[string]string{
				"datetime":     "2023-11-08",
				"home_team":    "Palmeiras",
				"away_team":    "Internacional",
				"home_goal":    "3",
				"away_goal":    "0",
				"tournament":   "Brasileirão Série A",
				"stadium":      "Allianz Parque",
				"goal_scorers": "Endrick; Raphael Veiga",
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.BatchesCommitted)
	assert.Positive(t, result.NodesCreated)
	assert.Positive(t, result.RelationshipsCreated)

	// One transaction; endpoint MATCH clauses carry both labels so a
	// missing endpoint can never produce a dangling edge.
	require.Len(t, mock.CallsMatching("MATCH (a:Match {id: row.from})"), 4,
		"HOME_TEAM, AWAY_TEAM, PART_OF, HOSTED_AT")
	require.Len(t, mock.CallsMatching("MERGE (a)-[r:SCORED_IN]"), 1)

	scored := mock.CallsMatching("MERGE (a)-[r:SCORED_IN]")[0]
	rows := scored.Params["rows"].([]map[string]any)
	assert.Len(t, rows, 2)
}

func TestLoadUpsertStatementShape(t *testing.T) {
	mock := graph.NewMockClient()
	loader := newTestLoader(mock, DefaultLoaderConfig())

	_, err := loader.Load(context.Background(), []SourceRow{teamRow("Santos")})
	require.NoError(t, err)

	calls := mock.CallsMatching("MERGE (n:Team")
	require.Len(t, calls, 1)
	cypher := calls[0].Cypher
	assert.Contains(t, cypher, "UNWIND $rows")
	assert.Contains(t, cypher, "ON CREATE SET")
	assert.Contains(t, cypher, "ON MATCH SET")
	assert.Contains(t, cypher, "created_at")
	assert.Contains(t, cypher, "updated_at")
}

func TestLoadScorerMentionSharesRosterPlayerNode(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)
	loader := newTestLoader(mock, DefaultLoaderConfig())

	// A full roster row for Pelé plus a match crediting him by name only.
	result, err := loader.Load(context.Background(), []SourceRow{
		{
			Schema: "kaggle_players",
			Fields: map[string]string{
				"player_name":   "Pelé",
				"position":      "Forward",
				"date_of_birth": "1940-10-23",
			},
		},
		{
			Schema: "kaggle_matches",
			Fields: map[string]string{
				"datetime":     "1962-03-07",
				"home_team":    "Santos",
				"away_team":    "Botafogo",
				"home_goal":    "3",
				"away_goal":    "1",
				"goal_scorers": "Pelé",
			},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.HasErrors())

	playerCalls := mock.CallsMatching("MERGE (n:Player")
	require.Len(t, playerCalls, 1)
	rows := playerCalls[0].Params["rows"].([]map[string]any)
	require.Len(t, rows, 1, "roster row and scorer mention are one player")

	props := rows[0]["props"].(map[string]any)
	assert.Equal(t, "Forward", props["position"])
	assert.Equal(t, "1940-10-23", props["birth_date"])

	scored := mock.CallsMatching("MERGE (a)-[r:SCORED_IN]")
	require.Len(t, scored, 1)
	srows := scored[0].Params["rows"].([]map[string]any)
	require.Len(t, srows, 1)
	assert.Equal(t, rows[0]["id"], srows[0]["from"], "goal credits the rostered node")
}

func TestLoadReloadIsIdempotent(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)
	loader := newTestLoader(mock, DefaultLoaderConfig())

	rows := []SourceRow{teamRow("Santos"), teamRow("Flamengo")}

	first, err := loader.Load(context.Background(), rows)
	require.NoError(t, err)

	second, err := loader.Load(context.Background(), rows)
	require.NoError(t, err)

	// Statement parameters are byte-for-byte repeatable: same ids, same
	// props, same row order.
	calls := mock.CallsMatching("MERGE (n:Team")
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0].Params, calls[1].Params)
	assert.Equal(t, first.BatchesCommitted, second.BatchesCommitted)
}

func TestLoadReloadDoesNotCountExistingRelationships(t *testing.T) {
	mock := graph.NewMockClient()
	mock.HandleQuery("MERGE (n:", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		rows := params["rows"].([]map[string]any)
		return graph.QueryResult{Records: []map[string]any{
			{"created": int64(0), "updated": int64(len(rows))},
		}}, nil
	})
	// Every edge already exists in the store.
	mock.HandleQuery("MERGE (a)-[r:", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{Records: []map[string]any{
			{"created": int64(0)},
		}}, nil
	})
	loader := newTestLoader(mock, DefaultLoaderConfig())

	result, err := loader.Load(context.Background(), []SourceRow{
		matchRow("2023-11-08", "Palmeiras", "Santos", "2", "1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.RelationshipsCreated, "matched edges are not new")

	relCall := mock.CallsMatching("MERGE (a)-[r:")[0]
	assert.Contains(t, relCall.Cypher, "ON CREATE SET r")
	assert.Contains(t, relCall.Cypher, "r.created_at")
	assert.Contains(t, relCall.Cypher, "WHEN r.updated_at IS NULL")
}

func TestLoadMalformedRowAbortsOnlyItsBatch(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)

	config := DefaultLoaderConfig()
	config.BatchSize = 2
	loader := newTestLoader(mock, config)

	result, err := loader.Load(context.Background(), []SourceRow{
		teamRow("Santos"),
		teamRow(""), // malformed: aborts batch 1
		teamRow("Flamengo"),
		teamRow("Grêmio"),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.BatchesCommitted)
	assert.Equal(t, 1, result.BatchesFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, types.MALFORMED_RECORD, types.CodeOf(result.Errors[0]))

	// Only the surviving batch was written.
	calls := mock.CallsMatching("MERGE (n:Team")
	require.Len(t, calls, 1)
	rows := calls[0].Params["rows"].([]map[string]any)
	assert.Len(t, rows, 2)
}

func TestLoadIdentityConflictAbortsBatch(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)

	config := DefaultLoaderConfig()
	config.BatchSize = 10
	loader := newTestLoader(mock, config)

	result, err := loader.Load(context.Background(), []SourceRow{
		{Schema: "kaggle_teams", Fields: map[string]string{"team_name": "Corinthians", "founded_year": "1910"}},
		{Schema: "kaggle_teams", Fields: map[string]string{"team_name": "Corinthians", "founded_year": "1911"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.BatchesCommitted)
	assert.Equal(t, 1, result.BatchesFailed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, types.CONFLICTING_IDENTITY, types.CodeOf(result.Errors[0]))
	assert.Empty(t, mock.CallsMatching("MERGE"))
}

func TestLoadLastWriteWinsAcceptsConflict(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)

	config := DefaultLoaderConfig()
	config.ConflictPolicy = ConflictLastWriteWins
	loader := newTestLoader(mock, config)

	result, err := loader.Load(context.Background(), []SourceRow{
		{Schema: "kaggle_teams", Fields: map[string]string{"team_name": "Corinthians", "founded_year": "1910"}},
		{Schema: "kaggle_teams", Fields: map[string]string{"team_name": "Corinthians", "founded_year": "1911"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.BatchesCommitted)
	assert.False(t, result.HasErrors())
}

func TestLoadStoreFailureAbortsCall(t *testing.T) {
	mock := graph.NewMockClient()
	mock.SetQueryError(types.NewRetryableError(types.STORE_UNAVAILABLE, "connection reset"))

	config := DefaultLoaderConfig()
	config.BatchSize = 1
	loader := newTestLoader(mock, config)

	result, err := loader.Load(context.Background(), []SourceRow{
		teamRow("Santos"),
		teamRow("Flamengo"),
	})
	require.Error(t, err)
	assert.Equal(t, types.STORE_UNAVAILABLE, types.CodeOf(err))

	// The second batch never started.
	assert.Equal(t, 0, result.BatchesCommitted)
	assert.Equal(t, 1, result.BatchesFailed)
}

func TestLoadTransferGraphShape(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)
	loader := newTestLoader(mock, DefaultLoaderConfig())

	_, err := loader.Load(context.Background(), []SourceRow{
		{
			Schema: "transfermarkt_transfers",
			Fields: map[string]string{
				"player_name":   "Neymar",
				"transfer_date": "03/06/2013",
				"club_left":     "Santos FC",
				"club_joined":   "Barcelona",
				"transfer_fee":  "88200000",
			},
		},
	})
	require.NoError(t, err)

	require.Len(t, mock.CallsMatching("MERGE (n:Transfer"), 1)
	require.Len(t, mock.CallsMatching("MERGE (a)-[r:TRANSFERRED]"), 1)
	require.Len(t, mock.CallsMatching("MERGE (a)-[r:FROM_TEAM]"), 1)
	require.Len(t, mock.CallsMatching("MERGE (a)-[r:TO_TEAM]"), 1)
}

func TestLoadRunsIntegritySweep(t *testing.T) {
	mock := graph.NewMockClient()
	countMergedNodes(mock)

	loader := NewBatchLoader(mock, nil, DefaultLoaderConfig(), nil)
	result, err := loader.Load(context.Background(), []SourceRow{teamRow("Santos")})
	require.NoError(t, err)

	require.NotNil(t, result.Report)
	assert.True(t, result.Report.IsClean())
	assert.NotEmpty(t, mock.CallsMatching("NOT (m)-[:HOME_TEAM]"))
}
