package schema

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/types"
)

// Schema manager error codes
const (
	ErrCodeSchemaApplyFailed  types.ErrorCode = "SCHEMA_APPLY_FAILED"
	ErrCodeSchemaVerifyFailed types.ErrorCode = "SCHEMA_VERIFY_FAILED"
)

// Manager declares uniqueness constraints and indexes against the store.
// All statements use IF NOT EXISTS, so EnsureSchema is safe to invoke
// repeatedly; constraint-already-exists is never an error.
type Manager struct {
	client graph.Client
	logger *slog.Logger
}

// NewManager creates a schema manager backed by the given graph client.
func NewManager(client graph.Client, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		client: client,
		logger: logger,
	}
}

// constraintStatements declares one uniqueness constraint per entity label on
// its canonical id.
func constraintStatements() []string {
	labels := []string{
		LabelPlayer,
		LabelTeam,
		LabelMatch,
		LabelCompetition,
		LabelStadium,
		LabelCoach,
		LabelTransfer,
	}

	statements := make([]string, 0, len(labels))
	for _, label := range labels {
		statements = append(statements, fmt.Sprintf(
			"CREATE CONSTRAINT %s_id_unique IF NOT EXISTS FOR (n:%s) REQUIRE n.id IS UNIQUE",
			lowerFirst(label), label))
	}
	return statements
}

// indexStatements declares supporting indexes on the lookup fields the query
// tools filter and order by.
func indexStatements() []string {
	return []string{
		"CREATE INDEX player_name_index IF NOT EXISTS FOR (p:Player) ON (p.name)",
		"CREATE INDEX player_position_index IF NOT EXISTS FOR (p:Player) ON (p.position)",
		"CREATE INDEX team_name_index IF NOT EXISTS FOR (t:Team) ON (t.name)",
		"CREATE INDEX match_date_index IF NOT EXISTS FOR (m:Match) ON (m.date)",
		"CREATE INDEX competition_name_index IF NOT EXISTS FOR (c:Competition) ON (c.name)",
		"CREATE INDEX stadium_name_index IF NOT EXISTS FOR (s:Stadium) ON (s.name)",
		"CREATE INDEX coach_name_index IF NOT EXISTS FOR (co:Coach) ON (co.name)",
		"CREATE INDEX transfer_date_index IF NOT EXISTS FOR (tr:Transfer) ON (tr.date)",
	}
}

// EnsureSchema applies all constraints and indexes. It runs once before any
// load; the batch loader checks for its completion as a prerequisite.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	statements := append(constraintStatements(), indexStatements()...)

	for _, stmt := range statements {
		if _, err := m.client.Write(ctx, stmt, nil); err != nil {
			return types.WrapError(ErrCodeSchemaApplyFailed,
				fmt.Sprintf("failed to apply schema statement %q", stmt), err)
		}
		m.logger.Debug("applied schema statement", "statement", stmt)
	}

	m.logger.Info("schema ensured",
		"constraints", len(constraintStatements()),
		"indexes", len(indexStatements()))
	return nil
}

// Verify checks that every expected uniqueness constraint is present.
// The loader calls this before writing any batch.
func (m *Manager) Verify(ctx context.Context) error {
	result, err := m.client.Read(ctx, "SHOW CONSTRAINTS YIELD labelsOrTypes", nil)
	if err != nil {
		return types.WrapError(ErrCodeSchemaVerifyFailed,
			"failed to list constraints", err)
	}

	present := make(map[string]bool)
	for _, record := range result.Records {
		labels, ok := record["labelsOrTypes"].([]any)
		if !ok {
			continue
		}
		for _, l := range labels {
			if s, ok := l.(string); ok {
				present[s] = true
			}
		}
	}

	expected := []string{
		LabelPlayer, LabelTeam, LabelMatch, LabelCompetition,
		LabelStadium, LabelCoach, LabelTransfer,
	}
	for _, label := range expected {
		if !present[label] {
			return types.NewError(ErrCodeSchemaVerifyFailed,
				fmt.Sprintf("missing uniqueness constraint for label %s", label))
		}
	}
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}
