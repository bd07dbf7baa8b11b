package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFeatures(t *testing.T) {
	got, err := NormalizeFeatures(json.RawMessage(`[" Pool ", "", "Spa"]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"Pool", "Spa"}, got)

	got, err = NormalizeFeatures(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = NormalizeFeatures(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NormalizeFeatures(json.RawMessage(`{"a":1}`))
	assert.ErrorIs(t, err, ErrInvalidFeatures)
}
