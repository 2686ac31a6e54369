// Package storage keeps finished layouts on disk, one directory per run.
package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/render"
)

const (
	metadataFile = "metadata.json"
	nodesFile    = "nodes.csv"
	alphaFile    = "alpha.csv"
	layoutFile   = "layout.json.sz"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Source    string             `json:"source"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Mode      string             `json:"mode"`
	Modes     []string           `json:"modes,omitempty"`
	Ticks     int                `json:"ticks"`
	Nodes     int                `json:"nodes"`
	Dropped   int                `json:"dropped"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Layout is the final picture of a run.
type Layout struct {
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Mode   string         `json:"mode"`
	Nodes  []bubble.Node  `json:"nodes"`
	Labels []render.Label `json:"labels,omitempty"`
}

// Scene rebuilds a drawable scene from the stored layout.
func (l *Layout) Scene() *render.Scene {
	sc := render.NewScene(l.Width, l.Height)
	for _, n := range l.Nodes {
		sc.CreateNode(n.ID)
		sc.SetRadius(n.ID, n.Radius)
		sc.SetPosition(n.ID, n.X, n.Y)
		sc.SetFillColor(n.ID, n.Fill)
		sc.SetStrokeColor(n.ID, n.Stroke)
	}
	for _, lb := range l.Labels {
		sc.AddLabel(lb.Class, lb.Text, lb.X, lb.Y)
	}
	return sc
}

// Run is everything a finished session hands to Save.
type Run struct {
	Source  string
	Seed    int64
	Modes   []string
	Ticks   int
	Dropped int
	Metrics map[string]float64
	Alpha   []float64
	Layout  Layout
}

func (s *Store) Save(run Run) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Source:    run.Source,
		Timestamp: time.Now().UTC(),
		Seed:      run.Seed,
		Mode:      run.Layout.Mode,
		Modes:     run.Modes,
		Ticks:     run.Ticks,
		Nodes:     len(run.Layout.Nodes),
		Dropped:   run.Dropped,
		Width:     run.Layout.Width,
		Height:    run.Layout.Height,
		Metrics:   run.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeNodes(filepath.Join(runDir, nodesFile), run.Layout.Nodes); err != nil {
		return "", err
	}
	if err := writeAlpha(filepath.Join(runDir, alphaFile), run.Alpha); err != nil {
		return "", err
	}

	data, err := json.Marshal(run.Layout)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, layoutFile), snappy.Encode(nil, data), 0644); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeNodes(path string, nodes []bubble.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "value", "radius", "category", "name", "x", "y", "fill", "stroke"}); err != nil {
		return err
	}
	for _, n := range nodes {
		row := []string{
			n.ID,
			strconv.FormatFloat(n.Value, 'f', -1, 64),
			strconv.FormatFloat(n.Radius, 'f', 3, 64),
			n.Category,
			n.Name,
			strconv.FormatFloat(n.X, 'f', 3, 64),
			strconv.FormatFloat(n.Y, 'f', 3, 64),
			n.Fill,
			n.Stroke,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeAlpha(path string, alpha []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"tick", "alpha"}); err != nil {
		return err
	}
	for i, a := range alpha {
		if err := w.Write([]string{strconv.Itoa(i + 1), strconv.FormatFloat(a, 'f', 6, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := s.read(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadLayout(runID string) (*Layout, error) {
	compressed, err := s.read(runID, layoutFile)
	if err != nil {
		return nil, err
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &l, nil
}

func (s *Store) LoadAlpha(runID string) ([]float64, error) {
	data, err := s.read(runID, alphaFile)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	alpha := make([]float64, 0, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		a, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		alpha = append(alpha, a)
	}
	return alpha, nil
}

func (s *Store) read(runID, name string) ([]byte, error) {
	if runID == "" || filepath.Base(runID) != runID {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	return data, nil
}
