package toy

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{`25`, 25},
		{`"25"`, 25},
		{`" 12.5 "`, 12.5},
		{`""`, 0},
		{`null`, 0},
		{`true`, 1},
		{`false`, 0},
		{`"0x1A"`, 26},
		{`"1e3"`, 1000},
		{`"-Infinity"`, math.Inf(-1)},
		{`[]`, 0},
		{`["7"]`, 7},
		{`[3]`, 3},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, float64(CoercePrice(json.RawMessage(tc.raw))))
		})
	}
}

func TestCoercePriceNaN(t *testing.T) {
	for _, raw := range []string{``, `"abc"`, `"12abc"`, `"1_000"`, `{}`, `[1,2]`, `[true]`, `"Infinityx"`} {
		t.Run(raw, func(t *testing.T) {
			assert.True(t, CoercePrice(json.RawMessage(raw)).IsNaN(), "raw %q", raw)
		})
	}
}

func TestPriceJSON(t *testing.T) {
	data, err := json.Marshal(Toy{Name: "X", Price: Price(math.NaN()), Labels: []string{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"X","price":null,"labels":[]}`, string(data))

	data, err = json.Marshal(Toy{ID: "a1", Name: "Bear", Price: 25, Labels: []string{"soft"}, CreatedAt: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id":"a1","name":"Bear","price":25,"labels":["soft"],"createdAt":7}`, string(data))

	var back Toy
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"a1","price":null}`), &back))
	assert.True(t, back.Price.IsNaN())
}
