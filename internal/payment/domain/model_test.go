package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesUnmarshal(t *testing.T) {
	cases := map[string]Notes{
		`{"notes":{"memberId":"42"}}`:       {"memberId": "42"},
		`{"notes":{"memberId":42,"a":"b"}}`: {"memberId": "42", "a": "b"},
		`{"notes":[]}`:                      {},
		`{"notes":null}`:                    {},
		`{}`:                                nil,
	}
	for raw, want := range cases {
		var order Order
		require.NoError(t, json.Unmarshal([]byte(raw), &order), raw)
		assert.Equal(t, want, order.Notes, raw)
	}

	var order Order
	assert.Error(t, json.Unmarshal([]byte(`{"notes":["x"]}`), &order))
	assert.Error(t, json.Unmarshal([]byte(`{"notes":"x"}`), &order))
}

func TestSettle(t *testing.T) {
	remaining, status := Settle(1000, 400)
	assert.Equal(t, 600.0, remaining)
	assert.Equal(t, StatusPending, status)

	remaining, status = Settle(1000, 1000)
	assert.Zero(t, remaining)
	assert.Equal(t, StatusCompleted, status)
}
