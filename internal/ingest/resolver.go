package ingest

import (
	"fmt"
	"sync"

	"github.com/adrianco/demo-brazil/internal/schema"
	"github.com/adrianco/demo-brazil/internal/types"
)

// ConflictPolicy decides what happens when one natural key arrives with
// materially different attribute values across sources.
type ConflictPolicy string

const (
	// ConflictReject fails the batch with CONFLICTING_IDENTITY. Default.
	ConflictReject ConflictPolicy = "reject"

	// ConflictLastWriteWins silently overwrites earlier attribute values.
	ConflictLastWriteWins ConflictPolicy = "last-write-wins"
)

// Validate checks if the ConflictPolicy is a valid value.
func (p ConflictPolicy) Validate() error {
	switch p {
	case ConflictReject, ConflictLastWriteWins:
		return nil
	default:
		return fmt.Errorf("invalid conflict policy: %s", p)
	}
}

// Resolver assigns stable, deterministic identifiers to canonical records
// and detects duplicates across source batches. Identifiers derive from
// UUIDv5 over the entity's fold-key natural key, so re-resolving the same
// logical record always yields the same id.
//
// Thread-safe; one Resolver is shared across all batches of a load.
type Resolver struct {
	policy ConflictPolicy

	mu   sync.Mutex
	seen map[types.ID]map[string]any
}

// NewResolver creates a Resolver with the given conflict policy.
func NewResolver(policy ConflictPolicy) *Resolver {
	if policy == "" {
		policy = ConflictReject
	}
	return &Resolver{
		policy: policy,
		seen:   make(map[types.ID]map[string]any),
	}
}

// TeamID derives the id for a canonical team name. Spelling variants that
// canonicalize identically resolve to the same id.
func (r *Resolver) TeamID(canonicalName string) types.ID {
	return types.DeriveID("team", FoldName(canonicalName))
}

// PlayerID derives the id for a player from the folded name alone, so a
// roster row and a bare scorer or transfer mention of the same person
// resolve to one node. Homonyms surface through Observe as birth_date
// conflicts rather than splitting into separate nodes.
func (r *Resolver) PlayerID(canonicalName string) types.ID {
	return types.DeriveID("player", FoldName(canonicalName))
}

// StadiumID derives the id for a stadium name.
func (r *Resolver) StadiumID(canonicalName string) types.ID {
	return types.DeriveID("stadium", FoldName(canonicalName))
}

// CompetitionID derives the id for a competition name.
func (r *Resolver) CompetitionID(canonicalName string) types.ID {
	return types.DeriveID("competition", FoldName(canonicalName))
}

// CoachID derives the id for a coach name.
func (r *Resolver) CoachID(canonicalName string) types.ID {
	return types.DeriveID("coach", FoldName(canonicalName))
}

// MatchID derives the id for a match from its natural key date+home+away.
func (r *Resolver) MatchID(date string, homeID, awayID types.ID) types.ID {
	return types.DeriveID("match", date, homeID.String(), awayID.String())
}

// TransferID derives the id for a transfer from player+date+teams.
func (r *Resolver) TransferID(playerID types.ID, date string, fromID, toID types.ID) types.ID {
	return types.DeriveID("transfer", playerID.String(), date, fromID.String(), toID.String())
}

// Observe registers the attributes seen for an id and reports identity
// conflicts: a key already observed with a materially different value.
// Under ConflictReject the conflict is returned as CONFLICTING_IDENTITY;
// under ConflictLastWriteWins the new value replaces the old one.
// Attributes absent from earlier observations merge in without conflict.
func (r *Resolver) Observe(id types.ID, label string, attrs map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.seen[id]
	if !ok {
		copied := make(map[string]any, len(attrs))
		for k, v := range attrs {
			copied[k] = v
		}
		r.seen[id] = copied
		return nil
	}

	for key, val := range attrs {
		prev, present := existing[key]
		if !present {
			existing[key] = val
			continue
		}
		if prev == val {
			continue
		}
		if r.policy == ConflictLastWriteWins {
			existing[key] = val
			continue
		}
		return types.NewError(types.CONFLICTING_IDENTITY, fmt.Sprintf(
			"%s %s: attribute %q resolves to both %v and %v across sources",
			label, id, key, prev, val))
	}
	return nil
}

// observedAttrs extracts the attribute fingerprint used for conflict
// detection from an entity's full property set. The id itself and
// relationship-bearing fields are excluded.
func observedAttrs(node schema.GraphNode) map[string]any {
	attrs := make(map[string]any)
	for k, v := range node.Properties() {
		if k == "id" {
			continue
		}
		attrs[k] = v
	}
	return attrs
}
