package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adrianco/demo-brazil/internal/graph"
	"github.com/adrianco/demo-brazil/internal/schema"
	"github.com/adrianco/demo-brazil/internal/types"
)

// DefaultBatchSize bounds how many source rows go into one transaction.
const DefaultBatchSize = 1000

// LoaderConfig configures a BatchLoader.
type LoaderConfig struct {
	// BatchSize is the number of source rows per transaction.
	BatchSize int

	// ConflictPolicy controls identity-conflict handling.
	ConflictPolicy ConflictPolicy

	// SkipValidation disables the post-load integrity sweep.
	SkipValidation bool
}

// DefaultLoaderConfig returns a LoaderConfig with production defaults.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		BatchSize:      DefaultBatchSize,
		ConflictPolicy: ConflictReject,
	}
}

// LoadResult reports aggregate counts for one load run.
type LoadResult struct {
	NodesCreated         int
	NodesUpdated         int
	RelationshipsCreated int
	BatchesCommitted     int
	BatchesFailed        int

	// Errors holds the per-batch errors for failed batches.
	Errors []error

	// Report is the post-load integrity report, nil when validation was
	// skipped. A non-empty report is a warning, not a failure.
	Report *IntegrityReport
}

// AddError appends an error to the result and returns it for chaining.
func (r *LoadResult) AddError(err error) *LoadResult {
	r.Errors = append(r.Errors, err)
	return r
}

// HasErrors returns true if any batch failed.
func (r *LoadResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// BatchLoader normalizes, resolves, and commits source rows to the store in
// bounded-size transactional batches with idempotent upsert semantics.
// Entities merge by id; relationships merge by (type, from, to), so
// re-running the same load never duplicates nodes or edges.
type BatchLoader struct {
	client     graph.Client
	schemaMgr  *schema.Manager
	normalizer *Normalizer
	resolver   *Resolver
	validator  *IntegrityValidator
	config     LoaderConfig
	logger     *slog.Logger
}

// NewBatchLoader creates a BatchLoader. The schema manager is consulted
// before the first batch as a prerequisite check; pass nil to skip it
// (tests, stores without SHOW CONSTRAINTS support).
func NewBatchLoader(client graph.Client, schemaMgr *schema.Manager, config LoaderConfig, logger *slog.Logger) *BatchLoader {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchLoader{
		client:     client,
		schemaMgr:  schemaMgr,
		normalizer: NewNormalizer(),
		resolver:   NewResolver(config.ConflictPolicy),
		validator:  NewIntegrityValidator(client),
		config:     config,
		logger:     logger,
	}
}

// WithFieldMaps registers additional source-schema field maps.
func (l *BatchLoader) WithFieldMaps(maps ...FieldMap) *BatchLoader {
	l.normalizer = NewNormalizer(maps...)
	return l
}

// Load commits the rows in batches. Normalization and identity errors abort
// only the batch they occur in; prior committed batches remain. A store
// failure aborts the whole call immediately.
func (l *BatchLoader) Load(ctx context.Context, rows []SourceRow) (*LoadResult, error) {
	result := &LoadResult{}

	if l.schemaMgr != nil {
		if err := l.schemaMgr.Verify(ctx); err != nil {
			return result, fmt.Errorf("schema prerequisite failed: %w", err)
		}
	}

	for start := 0; start < len(rows); start += l.config.BatchSize {
		end := start + l.config.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		batch, err := l.buildBatch(chunk)
		if err != nil {
			result.BatchesFailed++
			result.AddError(fmt.Errorf("batch %d: %w", result.BatchesCommitted+result.BatchesFailed, err))
			l.logger.Warn("batch aborted",
				"batch", result.BatchesCommitted+result.BatchesFailed,
				"rows", len(chunk),
				"error", err)
			continue
		}

		if err := l.commitBatch(ctx, batch, result); err != nil {
			result.BatchesFailed++
			result.AddError(err)
			// Store failures are surfaced immediately; retry policy belongs
			// to the caller.
			return result, err
		}

		result.BatchesCommitted++
		l.logger.Info("batch committed",
			"batch", result.BatchesCommitted,
			"rows", len(chunk),
			"nodes", len(batch.order),
			"relationships", len(batch.relOrder))
	}

	if !l.config.SkipValidation {
		report, err := l.validator.Validate(ctx)
		if err != nil {
			return result, fmt.Errorf("integrity sweep failed: %w", err)
		}
		result.Report = report
		if !report.IsClean() {
			l.logger.Warn("integrity sweep found violations", "summary", report.Summary())
		}
	}

	return result, nil
}

// graphBatch accumulates the deduplicated nodes and relationships of one
// transaction.
type graphBatch struct {
	nodes    map[types.ID]schema.GraphNode
	order    []types.ID
	rels     map[string]schema.Relationship
	relOrder []string
}

func newGraphBatch() *graphBatch {
	return &graphBatch{
		nodes: make(map[types.ID]schema.GraphNode),
		rels:  make(map[string]schema.Relationship),
	}
}

func (b *graphBatch) addNode(id types.ID, node schema.GraphNode) {
	if _, seen := b.nodes[id]; !seen {
		b.order = append(b.order, id)
	}
	b.nodes[id] = node
}

// addNodeIfAbsent keeps an earlier, richer node over a later skeleton one.
func (b *graphBatch) addNodeIfAbsent(id types.ID, node schema.GraphNode) {
	if _, seen := b.nodes[id]; seen {
		return
	}
	b.addNode(id, node)
}

func (b *graphBatch) addRel(rel schema.Relationship) {
	key := rel.Key()
	if _, seen := b.rels[key]; seen {
		return
	}
	b.rels[key] = rel
	b.relOrder = append(b.relOrder, key)
}

// buildBatch normalizes and resolves one chunk of rows into a graphBatch.
// The first malformed record or identity conflict aborts the batch.
func (l *BatchLoader) buildBatch(rows []SourceRow) (*graphBatch, error) {
	batch := newGraphBatch()

	for i, row := range rows {
		rec, err := l.normalizer.Normalize(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if err := l.addRecord(batch, rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return batch, nil
}

func (l *BatchLoader) addRecord(batch *graphBatch, rec Record) error {
	switch rec.Kind {
	case KindPlayer:
		return l.addPlayer(batch, rec)
	case KindTeam:
		return l.addTeam(batch, rec)
	case KindMatch:
		return l.addMatch(batch, rec)
	case KindCompetition:
		return l.addCompetition(batch, rec)
	case KindStadium:
		return l.addStadium(batch, rec)
	case KindCoach:
		return l.addCoach(batch, rec)
	case KindTransfer:
		return l.addTransfer(batch, rec)
	default:
		return fmt.Errorf("unsupported record kind %q", rec.Kind)
	}
}

func (l *BatchLoader) addPlayer(batch *graphBatch, rec Record) error {
	player := schema.Player{
		ID:          l.resolver.PlayerID(rec.Name),
		Name:        rec.Name,
		Position:    rec.Position,
		BirthDate:   rec.BirthDate,
		Nationality: rec.Nationality,
	}
	if err := l.resolver.Observe(player.ID, schema.LabelPlayer, observedAttrs(player)); err != nil {
		return err
	}
	batch.addNode(player.ID, player)

	if rec.TeamName != "" {
		teamID := l.ensureTeam(batch, rec.TeamName)
		batch.addRel(schema.Relationship{
			Type:   schema.RelPlaysFor,
			FromID: player.ID,
			ToID:   teamID,
		})
	}
	return nil
}

func (l *BatchLoader) addTeam(batch *graphBatch, rec Record) error {
	team := schema.Team{
		ID:      l.resolver.TeamID(rec.Name),
		Name:    rec.Name,
		Founded: rec.Founded,
	}
	if rec.Stadium != "" {
		team.StadiumID = l.ensureStadium(batch, rec.Stadium, nil)
	}
	if err := l.resolver.Observe(team.ID, schema.LabelTeam, observedAttrs(team)); err != nil {
		return err
	}
	batch.addNode(team.ID, team)
	return nil
}

func (l *BatchLoader) addMatch(batch *graphBatch, rec Record) error {
	homeID := l.ensureTeam(batch, rec.HomeTeam)
	awayID := l.ensureTeam(batch, rec.AwayTeam)
	date := rec.Date.Format(schema.DateFormat)

	match := schema.Match{
		ID:         l.resolver.MatchID(date, homeID, awayID),
		Date:       *rec.Date,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		HomeScore:  rec.HomeScore,
		AwayScore:  rec.AwayScore,
	}
	if rec.Competition != "" {
		match.CompetitionID = l.ensureCompetition(batch, rec.Competition)
	}
	if rec.Stadium != "" {
		match.StadiumID = l.ensureStadium(batch, rec.Stadium, nil)
	}
	if err := match.Validate(); err != nil {
		return types.WrapError(types.MALFORMED_RECORD, "invalid match", err)
	}
	if err := l.resolver.Observe(match.ID, schema.LabelMatch, observedAttrs(match)); err != nil {
		return err
	}
	batch.addNode(match.ID, match)

	batch.addRel(schema.Relationship{Type: schema.RelHomeTeam, FromID: match.ID, ToID: homeID})
	batch.addRel(schema.Relationship{Type: schema.RelAwayTeam, FromID: match.ID, ToID: awayID})
	if !match.CompetitionID.IsZero() {
		batch.addRel(schema.Relationship{Type: schema.RelPartOf, FromID: match.ID, ToID: match.CompetitionID})
	}
	if !match.StadiumID.IsZero() {
		batch.addRel(schema.Relationship{Type: schema.RelHostedAt, FromID: match.ID, ToID: match.StadiumID})
	}

	for _, scorer := range rec.Scorers {
		playerID := l.ensurePlayer(batch, scorer)
		batch.addRel(schema.Relationship{Type: schema.RelScoredIn, FromID: playerID, ToID: match.ID})
	}
	for _, assister := range rec.Assists {
		playerID := l.ensurePlayer(batch, assister)
		batch.addRel(schema.Relationship{Type: schema.RelAssistedIn, FromID: playerID, ToID: match.ID})
	}
	return nil
}

func (l *BatchLoader) addCompetition(batch *graphBatch, rec Record) error {
	comp := schema.Competition{
		ID:       l.resolver.CompetitionID(rec.Name),
		Name:     rec.Name,
		Category: rec.Category,
	}
	if err := l.resolver.Observe(comp.ID, schema.LabelCompetition, observedAttrs(comp)); err != nil {
		return err
	}
	batch.addNode(comp.ID, comp)
	return nil
}

func (l *BatchLoader) addStadium(batch *graphBatch, rec Record) error {
	id := l.ensureStadium(batch, rec.Name, rec.Capacity)
	stadium := schema.Stadium{ID: id, Name: rec.Name, Capacity: rec.Capacity}
	if err := l.resolver.Observe(id, schema.LabelStadium, observedAttrs(stadium)); err != nil {
		return err
	}
	batch.addNode(id, stadium)
	return nil
}

func (l *BatchLoader) addCoach(batch *graphBatch, rec Record) error {
	coach := schema.Coach{
		ID:   l.resolver.CoachID(rec.Name),
		Name: rec.Name,
	}
	if err := l.resolver.Observe(coach.ID, schema.LabelCoach, observedAttrs(coach)); err != nil {
		return err
	}
	batch.addNode(coach.ID, coach)

	if rec.CoachedTeam != "" {
		teamID := l.ensureTeam(batch, rec.CoachedTeam)
		batch.addRel(schema.Relationship{
			Type:   schema.RelCoachedBy,
			FromID: teamID,
			ToID:   coach.ID,
		})
	}
	return nil
}

func (l *BatchLoader) addTransfer(batch *graphBatch, rec Record) error {
	playerID := l.ensurePlayer(batch, rec.Player)
	fromID := l.ensureTeam(batch, rec.FromTeam)
	toID := l.ensureTeam(batch, rec.ToTeam)
	date := rec.Date.Format(schema.DateFormat)

	transfer := schema.Transfer{
		ID:         l.resolver.TransferID(playerID, date, fromID, toID),
		PlayerID:   playerID,
		FromTeamID: fromID,
		ToTeamID:   toID,
		Date:       *rec.Date,
		Fee:        rec.Fee,
	}
	if err := transfer.Validate(); err != nil {
		return types.WrapError(types.MALFORMED_RECORD, "invalid transfer", err)
	}
	if err := l.resolver.Observe(transfer.ID, schema.LabelTransfer, observedAttrs(transfer)); err != nil {
		return err
	}
	batch.addNode(transfer.ID, transfer)

	batch.addRel(schema.Relationship{Type: schema.RelTransferred, FromID: playerID, ToID: transfer.ID})
	batch.addRel(schema.Relationship{Type: schema.RelFromTeam, FromID: transfer.ID, ToID: fromID})
	batch.addRel(schema.Relationship{Type: schema.RelToTeam, FromID: transfer.ID, ToID: toID})
	return nil
}

// ensureTeam adds a skeleton team node for a referenced canonical name
// without overwriting a richer node already in the batch.
func (l *BatchLoader) ensureTeam(batch *graphBatch, canonicalName string) types.ID {
	id := l.resolver.TeamID(canonicalName)
	batch.addNodeIfAbsent(id, schema.Team{ID: id, Name: canonicalName})
	return id
}

// ensurePlayer adds a skeleton player for a bare name mention. The id is
// the same one a full roster row for that name derives, so credits and
// transfers always attach to the rostered node.
func (l *BatchLoader) ensurePlayer(batch *graphBatch, canonicalName string) types.ID {
	id := l.resolver.PlayerID(canonicalName)
	batch.addNodeIfAbsent(id, schema.Player{ID: id, Name: canonicalName})
	return id
}

func (l *BatchLoader) ensureStadium(batch *graphBatch, name string, capacity *int) types.ID {
	id := l.resolver.StadiumID(name)
	batch.addNodeIfAbsent(id, schema.Stadium{ID: id, Name: name, Capacity: capacity})
	return id
}

func (l *BatchLoader) ensureCompetition(batch *graphBatch, name string) types.ID {
	id := l.resolver.CompetitionID(name)
	batch.addNodeIfAbsent(id, schema.Competition{ID: id, Name: name, Category: schema.CategoryLeague})
	return id
}

// nodeLoadOrder fixes the per-label statement order inside a transaction.
var nodeLoadOrder = []string{
	schema.LabelCompetition,
	schema.LabelStadium,
	schema.LabelTeam,
	schema.LabelCoach,
	schema.LabelPlayer,
	schema.LabelMatch,
	schema.LabelTransfer,
}

// commitBatch writes one graphBatch as a single transaction: one UNWIND
// MERGE statement per node label, then one per relationship type.
func (l *BatchLoader) commitBatch(ctx context.Context, batch *graphBatch, result *LoadResult) error {
	statements := make([]graph.Statement, 0)

	nodesByLabel := make(map[string][]map[string]any)
	for _, id := range batch.order {
		node := batch.nodes[id]
		nodesByLabel[node.NodeType()] = append(nodesByLabel[node.NodeType()], map[string]any{
			"id":    id.String(),
			"props": node.Properties(),
		})
	}

	nodeStatements := 0
	for _, label := range nodeLoadOrder {
		rows, ok := nodesByLabel[label]
		if !ok {
			continue
		}
		cypher := fmt.Sprintf(`
			UNWIND $rows AS row
			MERGE (n:%s {id: row.id})
			ON CREATE SET n = row.props, n.created_at = timestamp()
			ON MATCH SET n += row.props, n.updated_at = timestamp()
			RETURN sum(CASE WHEN n.updated_at IS NULL THEN 1 ELSE 0 END) AS created,
			       sum(CASE WHEN n.updated_at IS NULL THEN 0 ELSE 1 END) AS updated
		`, label)
		statements = append(statements, graph.Statement{
			Cypher: cypher,
			Params: map[string]any{"rows": rows},
		})
		nodeStatements++
	}

	relsByType := make(map[string][]map[string]any)
	for _, key := range batch.relOrder {
		rel := batch.rels[key]
		row := map[string]any{
			"from": rel.FromID.String(),
			"to":   rel.ToID.String(),
		}
		if rel.Props != nil {
			row["props"] = rel.Props
		} else {
			row["props"] = map[string]any{}
		}
		relsByType[rel.Type] = append(relsByType[rel.Type], row)
	}

	for _, relType := range schema.RelTypes() {
		rows, ok := relsByType[relType]
		if !ok {
			continue
		}
		fromLabel, toLabel, _ := schema.RelEndpoints(relType)
		cypher := fmt.Sprintf(`
			UNWIND $rows AS row
			MATCH (a:%s {id: row.from})
			MATCH (b:%s {id: row.to})
			MERGE (a)-[r:%s]->(b)
			ON CREATE SET r += row.props, r.created_at = timestamp()
			ON MATCH SET r += row.props, r.updated_at = timestamp()
			RETURN sum(CASE WHEN r.updated_at IS NULL THEN 1 ELSE 0 END) AS created
		`, fromLabel, toLabel, relType)
		statements = append(statements, graph.Statement{
			Cypher: cypher,
			Params: map[string]any{"rows": rows},
		})
	}

	results, err := l.client.WriteBatch(ctx, statements)
	if err != nil {
		return types.WrapError(types.STORE_UNAVAILABLE, "batch commit failed", err)
	}

	for i, qr := range results {
		if len(qr.Records) == 0 {
			continue
		}
		record := qr.Records[0]
		if i < nodeStatements {
			result.NodesCreated += intValue(record["created"])
			result.NodesUpdated += intValue(record["updated"])
		} else {
			// Relationship statements carry the same create marker as node
			// statements, so a reload never reports matched edges as new.
			result.RelationshipsCreated += intValue(record["created"])
		}
	}
	return nil
}

func intValue(v any) int {
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
