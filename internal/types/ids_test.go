package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveID_Deterministic(t *testing.T) {
	a := DeriveID("team", "Palmeiras")
	b := DeriveID("team", "Palmeiras")

	assert.Equal(t, a, b)
	require.NoError(t, a.Validate())
}

func TestDeriveID_DistinctAcrossKinds(t *testing.T) {
	team := DeriveID("team", "Santos")
	stadium := DeriveID("stadium", "Santos")

	assert.NotEqual(t, team, stadium)
}

func TestDeriveID_DistinctKeys(t *testing.T) {
	a := DeriveID("match", "2023-02-05", "flamengo", "palmeiras")
	b := DeriveID("match", "2023-02-05", "palmeiras", "flamengo")

	assert.NotEqual(t, a, b)
}

func TestParseID(t *testing.T) {
	id := NewID()
	parsed, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("")
	assert.Error(t, err)

	_, err = ParseID("not-a-uuid")
	assert.Error(t, err)
}

func TestID_IsZero(t *testing.T) {
	var id ID
	assert.True(t, id.IsZero())
	assert.False(t, NewID().IsZero())
}
