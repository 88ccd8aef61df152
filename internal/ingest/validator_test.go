package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/types"
)

func TestValidateCleanStore(t *testing.T) {
	mock := graph.NewMockClient()
	v := NewIntegrityValidator(mock)

	report, err := v.Validate(context.Background())
	require.NoError(t, err)

	assert.True(t, report.IsClean())
	assert.Len(t, report.Checked, len(integrityChecks))
	assert.Contains(t, report.Summary(), "clean")
}

func TestValidateReportsOrphanMatch(t *testing.T) {
	mock := graph.NewMockClient()
	mock.HandleQuery("NOT (m)-[:HOME_TEAM]", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{Records: []map[string]any{
			{"id": "match-1", "date": "2023-11-08"},
		}}, nil
	})

	report, err := NewIntegrityValidator(mock).Validate(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	violation := report.Violations[0]
	assert.Equal(t, "orphan_match", violation.Check)
	assert.Equal(t, "match-1", violation.NodeID)
	assert.Equal(t, "error", violation.Severity)
	assert.Contains(t, violation.Detail, "2023-11-08")
	assert.False(t, report.IsClean())
	assert.Contains(t, report.Summary(), "orphan_match=1")
}

func TestValidateReportsDuplicateTeams(t *testing.T) {
	mock := graph.NewMockClient()
	mock.HandleQuery("collect(t.id) AS ids", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{Records: []map[string]any{
			{"key": "palmeiras", "ids": []any{"t-1", "t-2"}},
		}}, nil
	})

	report, err := NewIntegrityValidator(mock).Validate(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	assert.Equal(t, "duplicate_team_name", report.Violations[0].Check)
	assert.Equal(t, "warning", report.Violations[0].Severity)
	assert.Contains(t, report.Violations[0].Detail, "palmeiras")
}

func TestValidateReportsDuplicatePlayersAcrossBirthDates(t *testing.T) {
	mock := graph.NewMockClient()
	// Two nodes for one name; only one carries a birth date. The check
	// groups by name alone, so the null-birth-date copy still surfaces.
	mock.HandleQuery("collect(p.id) AS ids", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{Records: []map[string]any{
			{"name": "pelé", "ids": []any{"p-1", "p-2"}, "births": []any{"1940-10-23"}},
		}}, nil
	})

	report, err := NewIntegrityValidator(mock).Validate(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Violations, 1)
	violation := report.Violations[0]
	assert.Equal(t, "duplicate_player_identity", violation.Check)
	assert.Equal(t, "warning", violation.Severity)
	assert.Contains(t, violation.Detail, "pelé")
	assert.Contains(t, violation.Detail, "1940-10-23")
}

func TestValidateStoreFailure(t *testing.T) {
	mock := graph.NewMockClient()
	mock.SetQueryError(types.NewRetryableError(types.STORE_UNAVAILABLE, "connection reset"))

	report, err := NewIntegrityValidator(mock).Validate(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.Equal(t, types.STORE_UNAVAILABLE, types.CodeOf(err))
}

func TestValidateMultipleFindingsKeepCheckOrder(t *testing.T) {
	mock := graph.NewMockClient()
	mock.HandleQuery("NOT (m)-[:HOME_TEAM]", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{Records: []map[string]any{{"id": "m-1", "date": "2023-01-01"}}}, nil
	})
	mock.HandleQuery("FROM_TEAM]->(t:Team)", func(cypher string, params map[string]any) (graph.QueryResult, error) {
		return graph.QueryResult{Records: []map[string]any{{"id": "x-1", "team": "Santos"}}}, nil
	})

	report, err := NewIntegrityValidator(mock).Validate(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Violations, 2)
	// Findings aggregate in fixed check order regardless of goroutine
	// completion order.
	assert.Equal(t, "orphan_match", report.Violations[0].Check)
	assert.Equal(t, "self_transfer", report.Violations[1].Check)
}
