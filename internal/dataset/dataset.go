// Package dataset reads input records from CSV or JSON files.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/psmith94/gates-bubbles/internal/bubble"
	"github.com/psmith94/gates-bubbles/internal/config"
)

var ErrMissingColumn = errors.New("dataset: missing column")

// Load reads path as CSV or JSON. An empty format is inferred from the
// file extension, defaulting to CSV.
func Load(path, format string, fields config.FieldMap) ([]bubble.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "json":
		return ReadJSON(f, fields)
	default:
		return ReadCSV(f, fields)
	}
}

// ReadCSV expects a header row. The id and value columns must exist; other
// mapped columns are optional.
func ReadCSV(r io.Reader, fields config.FieldMap) ([]bubble.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, bubble.ErrEmptyDataset
		}
		return nil, fmt.Errorf("dataset: header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, name := range []string{fields.ID, fields.Value} {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	var records []bubble.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: %w", err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || name == "" || i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, build(fields, get))
	}
	return records, nil
}

// ReadJSON expects an array of flat objects. Numbers keep their literal
// text; null becomes empty.
func ReadJSON(r io.Reader, fields config.FieldMap) ([]bubble.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		if err == io.EOF {
			return nil, bubble.ErrEmptyDataset
		}
		return nil, fmt.Errorf("dataset: %w", err)
	}

	records := make([]bubble.Record, 0, len(rows))
	for _, row := range rows {
		get := func(name string) string {
			if name == "" {
				return ""
			}
			return text(row[name])
		}
		records = append(records, build(fields, get))
	}
	return records, nil
}

func build(fields config.FieldMap, get func(string) string) bubble.Record {
	rec := bubble.Record{
		ID:         get(fields.ID),
		Value:      get(fields.Value),
		Category:   get(fields.Category),
		Name:       get(fields.Name),
		Confidence: get(fields.Confidence),
	}
	for _, m := range fields.Meta {
		if v := get(m); v != "" {
			if rec.Meta == nil {
				rec.Meta = make(map[string]string, len(fields.Meta))
			}
			rec.Meta[m] = v
		}
	}
	return rec
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
