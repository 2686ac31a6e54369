package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/render"
)

func sampleRun() Run {
	return Run{
		Source:  "assets.csv",
		Seed:    42,
		Modes:   []string{"all", "year"},
		Ticks:   528,
		Dropped: 1,
		Metrics: map[string]float64{"overlap": 0.1},
		Alpha:   []float64{0.99, 0.9801},
		Layout: Layout{
			Width:  940,
			Height: 600,
			Mode:   "year",
			Nodes: []bubble.Node{
				{ID: "1", Value: 400, Radius: 85, Category: "2008", Name: "Pump, North", X: 313.5, Y: 300, Fill: "#023858", Stroke: "#01273d"},
				{ID: "2", Value: 100, Radius: 43.5, Category: "2009", X: 470, Y: 290, Fill: "#0570b0", Stroke: "#034e7b"},
			},
			Labels: []render.Label{{Class: "years", Text: "2008", X: 160, Y: 40}},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	require.NoError(t, store.Init())

	id, err := store.Save(sampleRun())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	for _, f := range []string{"metadata.json", "nodes.csv", "alpha.csv", "layout.json.sz"} {
		_, err := os.Stat(filepath.Join(dir, id, f))
		assert.NoError(t, err, f)
	}

	meta, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, "year", meta.Mode)
	assert.Equal(t, 2, meta.Nodes)
	assert.Equal(t, 528, meta.Ticks)
	assert.Equal(t, 0.1, meta.Metrics["overlap"])

	layout, err := store.LoadLayout(id)
	require.NoError(t, err)
	assert.Equal(t, sampleRun().Layout, *layout)

	alpha, err := store.LoadAlpha(id)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.99, 0.9801}, alpha)
}

func TestStoreList(t *testing.T) {
	store := New(t.TempDir())

	runs, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	a, err := store.Save(sampleRun())
	require.NoError(t, err)
	b, err := store.Save(sampleRun())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	runs, err = store.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestStoreMissingRun(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
	_, err = store.LoadLayout("../etc")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestLayoutScene(t *testing.T) {
	l := sampleRun().Layout
	sc := l.Scene()

	shapes := sc.Shapes()
	require.Len(t, shapes, 2)
	assert.Equal(t, render.Shape{ID: "1", X: 313.5, Y: 300, Radius: 85, Fill: "#023858", Stroke: "#01273d"}, shapes[0])
	assert.Len(t, sc.LabelsOf("years"), 1)
}
