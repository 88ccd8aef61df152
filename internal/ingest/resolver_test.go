package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianco/demo-brazil/internal/types"
)

func TestResolverTeamIDFoldsVariants(t *testing.T) {
	r := NewResolver(ConflictReject)

	base := r.TeamID(CanonicalTeamName("Palmeiras"))
	for _, variant := range []string{"Palmeiras-SP", "SE Palmeiras", "palmeiras"} {
		assert.Equal(t, base, r.TeamID(CanonicalTeamName(variant)), "variant %q", variant)
	}
	assert.NotEqual(t, base, r.TeamID(CanonicalTeamName("Santos FC")))
}

func TestResolverPlayerIDDiacriticInsensitive(t *testing.T) {
	r := NewResolver(ConflictReject)

	assert.Equal(t, r.PlayerID("Pelé"), r.PlayerID("Pele"))
	assert.Equal(t, r.PlayerID("Pelé"), r.PlayerID("pelé"))
	assert.NotEqual(t, r.PlayerID("Pelé"), r.PlayerID("Garrincha"))
}

func TestResolverObserveFlagsHomonymBirthDates(t *testing.T) {
	r := NewResolver(ConflictReject)
	id := r.PlayerID("João Silva")

	require.NoError(t, r.Observe(id, "Player", map[string]any{"birth_date": "1990-01-15"}))

	// A second person with the same name is a conflict, not a second node.
	err := r.Observe(id, "Player", map[string]any{"birth_date": "1985-05-05"})
	require.Error(t, err)
	assert.Equal(t, types.CONFLICTING_IDENTITY, types.CodeOf(err))
	assert.Contains(t, err.Error(), "birth_date")
}

func TestResolverIDsAreStableAcrossInstances(t *testing.T) {
	a := NewResolver(ConflictReject)
	b := NewResolver(ConflictLastWriteWins)

	assert.Equal(t, a.TeamID("Santos"), b.TeamID("Santos"))
	assert.Equal(t, a.CoachID("Tite"), b.CoachID("Tite"))
	assert.Equal(t, a.StadiumID("Maracanã"), b.StadiumID("Maracana"))
}

func TestResolverMatchIDComponents(t *testing.T) {
	r := NewResolver(ConflictReject)
	home := r.TeamID("Flamengo")
	away := r.TeamID("Fluminense")

	id := r.MatchID("2023-11-12", home, away)
	assert.Equal(t, id, r.MatchID("2023-11-12", home, away))
	// Swapped fixture is a different match.
	assert.NotEqual(t, id, r.MatchID("2023-11-12", away, home))
	assert.NotEqual(t, id, r.MatchID("2023-11-13", home, away))
}

func TestResolverObserveRejectsConflicts(t *testing.T) {
	r := NewResolver(ConflictReject)
	id := r.PlayerID("Ronaldo")

	require.NoError(t, r.Observe(id, "Player", map[string]any{"position": "Forward"}))

	// Same value re-observed is fine.
	require.NoError(t, r.Observe(id, "Player", map[string]any{"position": "Forward"}))

	// New attribute merges in.
	require.NoError(t, r.Observe(id, "Player", map[string]any{"nationality": "Brazil"}))

	// Different value for a known attribute conflicts.
	err := r.Observe(id, "Player", map[string]any{"position": "Midfielder"})
	require.Error(t, err)
	assert.Equal(t, types.CONFLICTING_IDENTITY, types.CodeOf(err))
	assert.Contains(t, err.Error(), "position")
}

func TestResolverObserveLastWriteWins(t *testing.T) {
	r := NewResolver(ConflictLastWriteWins)
	id := r.TeamID("Corinthians")

	require.NoError(t, r.Observe(id, "Team", map[string]any{"founded": 1910}))
	require.NoError(t, r.Observe(id, "Team", map[string]any{"founded": 1911}))

	// Under reject the same sequence fails.
	rr := NewResolver(ConflictReject)
	require.NoError(t, rr.Observe(id, "Team", map[string]any{"founded": 1910}))
	assert.Error(t, rr.Observe(id, "Team", map[string]any{"founded": 1911}))
}

func TestConflictPolicyValidate(t *testing.T) {
	assert.NoError(t, ConflictReject.Validate())
	assert.NoError(t, ConflictLastWriteWins.Validate())
	assert.Error(t, ConflictPolicy("merge").Validate())
	assert.Error(t, ConflictPolicy("").Validate())
}
