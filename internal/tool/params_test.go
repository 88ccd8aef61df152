package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrianco/demo-brazil/internal/types"
)

func TestValidateParams(t *testing.T) {
	specs := []ParamSpec{
		{Name: "name", Type: ParamString, Required: true},
		limitSpec(),
	}

	t.Run("valid with default applied", func(t *testing.T) {
		got, err := ValidateParams(specs, map[string]any{"name": "Pelé"})
		require.NoError(t, err)
		assert.Equal(t, "Pelé", got["name"])
		assert.Equal(t, 10, got["limit"])
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := ValidateParams(specs, map[string]any{})
		require.Error(t, err)
		assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("empty string counts as absent", func(t *testing.T) {
		_, err := ValidateParams(specs, map[string]any{"name": ""})
		require.Error(t, err)
		assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
	})

	t.Run("unknown parameter rejected", func(t *testing.T) {
		_, err := ValidateParams(specs, map[string]any{"name": "x", "nmae": "y"})
		require.Error(t, err)
		assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
		assert.Contains(t, err.Error(), "nmae")
	})

	t.Run("limit bounds enforced", func(t *testing.T) {
		_, err := ValidateParams(specs, map[string]any{"name": "x", "limit": 0})
		assert.Error(t, err)
		_, err = ValidateParams(specs, map[string]any{"name": "x", "limit": 500})
		assert.Error(t, err)
	})

	t.Run("json float coerced to int", func(t *testing.T) {
		got, err := ValidateParams(specs, map[string]any{"name": "x", "limit": float64(25)})
		require.NoError(t, err)
		assert.Equal(t, 25, got["limit"])
	})

	t.Run("fractional float rejected", func(t *testing.T) {
		_, err := ValidateParams(specs, map[string]any{"name": "x", "limit": 2.5})
		require.Error(t, err)
		assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
	})

	t.Run("wrong type rejected", func(t *testing.T) {
		_, err := ValidateParams(specs, map[string]any{"name": 42})
		require.Error(t, err)
		assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
	})
}

func TestValidateParamsDate(t *testing.T) {
	specs := []ParamSpec{{Name: "start_date", Type: ParamDate, Required: true}}

	got, err := ValidateParams(specs, map[string]any{"start_date": "2023-11-08"})
	require.NoError(t, err)
	assert.Equal(t, "2023-11-08", got["start_date"])

	for _, bad := range []string{"08/11/2023", "2023-13-01", "yesterday"} {
		_, err := ValidateParams(specs, map[string]any{"start_date": bad})
		require.Error(t, err, "input %q", bad)
		assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
	}
}

func TestValidateParamsEnum(t *testing.T) {
	specs := []ParamSpec{{
		Name: "position", Type: ParamEnum, Required: true,
		Enum: []string{"Goalkeeper", "Defender", "Midfielder", "Forward"},
	}}

	got, err := ValidateParams(specs, map[string]any{"position": "Forward"})
	require.NoError(t, err)
	assert.Equal(t, "Forward", got["position"])

	_, err = ValidateParams(specs, map[string]any{"position": "Libero"})
	require.Error(t, err)
	assert.Equal(t, types.INVALID_PARAMETER, types.CodeOf(err))
	assert.Contains(t, err.Error(), "position")
}

func TestValidateSpecs(t *testing.T) {
	assert.NoError(t, validateSpecs("t", []ParamSpec{
		{Name: "a", Type: ParamString},
		{Name: "b", Type: ParamInt},
	}))

	err := validateSpecs("t", []ParamSpec{
		{Name: "a", Type: ParamString},
		{Name: "a", Type: ParamInt},
	})
	require.Error(t, err)
	assert.Equal(t, ErrToolInvalidCatalog, types.CodeOf(err))

	assert.Error(t, validateSpecs("t", []ParamSpec{{Name: "", Type: ParamString}}))
	assert.Error(t, validateSpecs("t", []ParamSpec{{Name: "e", Type: ParamEnum}}))
	assert.Error(t, validateSpecs("t", []ParamSpec{{Name: "x", Type: ParamType("blob")}}))
}
