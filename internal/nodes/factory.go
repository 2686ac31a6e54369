// Package nodes turns raw records into simulation nodes.
package nodes

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/logging"
	"github.com/psmith94/gates-bubbles/internal/scale"
)

// Batch is the outcome of one Build call. Dropped holds one *bubble.DataError
// per skipped record, in input order.
type Batch struct {
	Nodes   []bubble.Node
	Dropped []error
	Scaler  *scale.Scaler
}

// Factory builds nodes. Malformed records are skipped, logged and reported
// in Batch.Dropped; they never fail the batch.
type Factory struct {
	opts   scale.Options
	width  float64
	height float64
	rng    *rand.Rand
	log    *slog.Logger
}

func NewFactory(opts scale.Options, width, height float64, rng *rand.Rand, logger *slog.Logger) *Factory {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Factory{
		opts:   opts,
		width:  width,
		height: height,
		rng:    rng,
		log:    logging.Component(logger, "nodes"),
	}
}

type parsed struct {
	rec   bubble.Record
	value float64
}

// Build parses every record, sizes and colors the survivors from the largest
// surviving value, scatters them over the canvas and orders them by
// descending value so large bubbles are drawn first.
func (f *Factory) Build(records []bubble.Record) (*Batch, error) {
	batch := &Batch{Nodes: make([]bubble.Node, 0, len(records))}
	kept := make([]parsed, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	maxValue := 0.0

	for i, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			f.drop(batch, &bubble.DataError{Index: i, Field: "id", Raw: rec.ID, Err: bubble.ErrMissingID})
			continue
		}
		if _, dup := seen[id]; dup {
			f.drop(batch, &bubble.DataError{Index: i, ID: id, Field: "id", Raw: rec.ID, Err: bubble.ErrDuplicateID})
			continue
		}
		v, err := ParseValue(rec.Value)
		if err != nil {
			f.drop(batch, &bubble.DataError{Index: i, ID: id, Field: "value", Raw: rec.Value, Err: err})
			continue
		}
		seen[id] = struct{}{}
		rec.ID = id
		kept = append(kept, parsed{rec: rec, value: v})
		if v > maxValue {
			maxValue = v
		}
	}

	sc, err := scale.New(f.opts, maxValue)
	if err != nil {
		return nil, err
	}
	batch.Scaler = sc

	for _, p := range kept {
		x := f.rng.Float64() * f.width
		y := f.rng.Float64() * f.height
		fill := sc.Color(p.value)
		batch.Nodes = append(batch.Nodes, bubble.Node{
			ID:         p.rec.ID,
			Value:      p.value,
			Radius:     sc.Radius(p.value),
			Category:   p.rec.Category,
			Name:       p.rec.Name,
			Confidence: p.rec.Confidence,
			Meta:       copyMeta(p.rec.Meta),
			Fill:       fill,
			Stroke:     scale.Darker(fill),
			X:          x,
			Y:          y,
			PX:         x,
			PY:         y,
		})
	}

	sort.SliceStable(batch.Nodes, func(i, j int) bool {
		return batch.Nodes[i].Value > batch.Nodes[j].Value
	})

	f.log.Info("nodes built",
		slog.Int("records", len(records)),
		slog.Int("nodes", len(batch.Nodes)),
		slog.Int("dropped", len(batch.Dropped)),
		slog.Float64("max_value", maxValue))

	return batch, nil
}

func (f *Factory) drop(b *Batch, err *bubble.DataError) {
	f.log.Warn("record dropped", slog.Int("index", err.Index), slog.String("id", err.ID), slog.String("error", err.Err.Error()))
	b.Dropped = append(b.Dropped, err)
}

// ParseValue reads a non-negative finite number. Surrounding blanks, a
// leading "$" and thousands separators are tolerated.
func ParseValue(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty", bubble.ErrParse)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", bubble.ErrParse, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %g", bubble.ErrParse, v)
	}
	return v, nil
}

func copyMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
