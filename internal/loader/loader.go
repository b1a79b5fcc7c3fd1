package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"data-audit/internal/model"
	"data-audit/internal/parser"
)

// DelimitedLoader reads CSV-like files. The first record is the header.
type DelimitedLoader struct {
	Comma rune
	// Schema, when it declares the table, fixes the kind of its columns.
	// Undeclared columns have their kind inferred from the values.
	Schema parser.Schema
}

func NewCSVLoader(schema parser.Schema) *DelimitedLoader {
	return &DelimitedLoader{Comma: ',', Schema: schema}
}

func NewTSVLoader(schema parser.Schema) *DelimitedLoader {
	return &DelimitedLoader{Comma: '\t', Schema: schema}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (l *DelimitedLoader) Load(name string, content []byte) (*model.Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, utf8BOM)))
	r.Comma = l.Comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: no header row", name)
	}

	header := records[0]
	body := records[1:]

	declared := make(map[string]model.Kind)
	for _, c := range l.Schema[name] {
		declared[c.Name] = c.Kind
	}

	table := &model.Table{Name: name, Columns: make([]model.Column, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(h)
		kind, ok := declared[h]
		if !ok {
			kind = inferKind(body, i)
		}
		table.Columns[i] = model.Column{Name: h, Kind: kind}
	}

	table.Rows = make([]model.Row, 0, len(body))
	for _, rec := range body {
		row := make(model.Row, len(header))
		for i, col := range table.Columns {
			cell := ""
			present := i < len(rec)
			if present {
				cell = rec[i]
			}
			row[i] = convert(cell, present, col.Kind)
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// convert turns a raw cell into a value of the column's kind. Empty and
// absent cells are missing; so are cells that do not fit the kind.
func convert(cell string, present bool, kind model.Kind) model.Value {
	if !present || cell == "" {
		return model.Missing()
	}
	switch kind {
	case model.KindNumeric:
		return model.ParseNumber(cell)
	case model.KindTemporal:
		t, ok := model.ParseTimestamp(cell)
		if !ok {
			return model.Missing()
		}
		return model.Timestamp(t)
	case model.KindText:
		return model.Text(cell)
	default:
		return model.Other(cell)
	}
}

// inferKind classifies column i from its non-empty cells: numeric when all
// parse as numbers, temporal when all parse as timestamps, text otherwise.
// A column with no values is unknown.
func inferKind(records [][]string, i int) model.Kind {
	numeric, temporal, seen := true, true, false
	for _, rec := range records {
		if i >= len(rec) || rec[i] == "" {
			continue
		}
		seen = true
		cell := rec[i]
		if numeric {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				numeric = false
			}
		}
		if temporal {
			if _, ok := model.ParseTimestamp(cell); !ok || cell != strings.TrimSpace(cell) {
				temporal = false
			}
		}
		if !numeric && !temporal {
			return model.KindText
		}
	}

	switch {
	case !seen:
		return model.KindUnknown
	case numeric:
		return model.KindNumeric
	case temporal:
		return model.KindTemporal
	default:
		return model.KindText
	}
}

// Manager selects the appropriate loader based on file extension
type Manager struct {
	loaders map[string]model.Loader
}

func NewManager() *Manager {
	return &Manager{
		loaders: make(map[string]model.Loader),
	}
}

func (m *Manager) Register(ext string, l model.Loader) {
	m.loaders[strings.ToLower(ext)] = l
}

// Extensions lists the registered extensions.
func (m *Manager) Extensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	return exts
}

// Load reads the file into a table named after the file's base name.
func (m *Manager) Load(filePath string) (*model.Table, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	l, ok := m.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("no loader registered for %q files", ext)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return l.Load(name, content)
}
