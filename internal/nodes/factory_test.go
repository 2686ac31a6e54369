package nodes

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/scale"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFactory(seed int64) *Factory {
	return NewFactory(scale.DefaultOptions(), 940, 600, rand.New(rand.NewSource(seed)), nil)
}

func TestBuildOrdersByDescendingValue(t *testing.T) {
	records := []bubble.Record{
		{ID: "a", Value: "10"},
		{ID: "b", Value: "400"},
		{ID: "c", Value: "10"},
		{ID: "d", Value: "100"},
	}

	batch, err := newFactory(1).Build(records)
	require.NoError(t, err)

	ids := make([]string, len(batch.Nodes))
	for i, n := range batch.Nodes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids, "ties keep input order")
}

func TestBuildSizesFromObservedMaximum(t *testing.T) {
	batch, err := newFactory(1).Build([]bubble.Record{{ID: "1", Value: "100"}, {ID: "2", Value: "400"}})
	require.NoError(t, err)
	require.Len(t, batch.Nodes, 2)

	big, small := batch.Nodes[0], batch.Nodes[1]
	assert.Equal(t, "2", big.ID)
	assert.Equal(t, 85.0, big.Radius)
	assert.InDelta(t, 2.0, big.Radius/small.Radius, 0.05)
	assert.Equal(t, batch.Scaler.Color(400), big.Fill)
	assert.Equal(t, scale.Darker(big.Fill), big.Stroke)
}

func TestBuildDropsMalformedRecords(t *testing.T) {
	records := []bubble.Record{
		{ID: "1", Value: "100"},
		{ID: "2", Value: "lots"},
		{ID: "3", Value: ""},
		{ID: "4", Value: "-5"},
		{ID: "", Value: "7"},
		{ID: "1", Value: "8"},
		{ID: "7", Value: "NaN"},
		{ID: "8", Value: "$1,250"},
	}

	batch, err := newFactory(1).Build(records)
	require.NoError(t, err)

	assert.Len(t, batch.Nodes, 2)
	assert.Len(t, batch.Dropped, 6)
	assert.Equal(t, len(records)-len(batch.Dropped), len(batch.Nodes))

	var de *bubble.DataError
	require.True(t, errors.As(batch.Dropped[0], &de))
	assert.Equal(t, 1, de.Index)
	assert.ErrorIs(t, batch.Dropped[0], bubble.ErrParse)
	assert.ErrorIs(t, batch.Dropped[3], bubble.ErrMissingID)
	assert.ErrorIs(t, batch.Dropped[4], bubble.ErrDuplicateID)
}

func TestBuildPlacesNodesInsideCanvas(t *testing.T) {
	records := make([]bubble.Record, 200)
	for i := range records {
		records[i] = bubble.Record{ID: string(rune('A'+i%26)) + string(rune('a'+i/26)), Value: "5"}
	}

	batch, err := newFactory(7).Build(records)
	require.NoError(t, err)
	for _, n := range batch.Nodes {
		assert.True(t, n.X >= 0 && n.X < 940, "x %f", n.X)
		assert.True(t, n.Y >= 0 && n.Y < 600, "y %f", n.Y)
		assert.Equal(t, n.X, n.PX)
		assert.Equal(t, n.Y, n.PY)
	}
}

func TestBuildIsReproducibleWithSeed(t *testing.T) {
	records := []bubble.Record{{ID: "1", Value: "3"}, {ID: "2", Value: "30"}}
	a, err := newFactory(42).Build(records)
	require.NoError(t, err)
	b, err := newFactory(42).Build(records)
	require.NoError(t, err)
	assert.Equal(t, a.Nodes, b.Nodes)
}

func TestBuildCarriesAuxiliaryFields(t *testing.T) {
	meta := map[string]string{"inventory": "3"}
	batch, err := newFactory(1).Build([]bubble.Record{{ID: "x", Value: "9", Category: "2009", Name: "Pump", Confidence: "High", Meta: meta}})
	require.NoError(t, err)

	n := batch.Nodes[0]
	assert.Equal(t, "2009", n.Category)
	assert.Equal(t, "Pump", n.Name)
	assert.Equal(t, "High", n.Confidence)
	assert.Equal(t, "3", n.Meta["inventory"])

	meta["inventory"] = "4"
	assert.Equal(t, "3", n.Meta["inventory"], "meta is copied, not shared")
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"$1,000", 1000, true},
		{"0", 0, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseValue(tt.raw)
		if tt.ok {
			assert.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, got, tt.raw)
		} else {
			assert.ErrorIs(t, err, bubble.ErrParse, tt.raw)
		}
	}
}
