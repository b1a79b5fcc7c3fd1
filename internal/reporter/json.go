package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"data-audit/internal/model"
)

// JSONReporter writes the report as a single JSON document.
type JSONReporter struct {
	out         io.Writer
	runID       string
	includeRows bool
	now         func() time.Time
}

// NewJSONReporter writes to out, or to stdout when out is nil. With
// includeRows the flagged rows are embedded next to their counts.
func NewJSONReporter(out io.Writer, runID string, includeRows bool) *JSONReporter {
	if out == nil {
		out = os.Stdout
	}
	return &JSONReporter{out: out, runID: runID, includeRows: includeRows, now: time.Now}
}

type jsonReport struct {
	RunID            string      `json:"run_id"`
	GeneratedAt      string      `json:"generated_at"`
	UnmatchedCount   int         `json:"unmatched_count"`
	UnmatchedMessage string      `json:"unmatched_message"`
	Unmatched        *jsonRows   `json:"unmatched,omitempty"`
	Tables           []jsonTable `json:"tables"`
}

type jsonTable struct {
	Name                string    `json:"name"`
	Issues              []string  `json:"issues"`
	Warnings            []string  `json:"warnings"`
	ProblematicRowCount int       `json:"problematic_row_count"`
	WarningRowCount     int       `json:"warning_row_count"`
	ProblematicRows     *jsonRows `json:"problematic_rows,omitempty"`
	WarningRows         *jsonRows `json:"warning_rows,omitempty"`
}

type jsonRows struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

func (r *JSONReporter) Report(rep *model.Report) error {
	doc := jsonReport{
		RunID:            r.runID,
		GeneratedAt:      r.now().UTC().Format(time.RFC3339),
		UnmatchedCount:   rep.Unmatched.Len(),
		UnmatchedMessage: rep.UnmatchedMessage,
		Tables:           make([]jsonTable, 0, len(rep.ProblematicRows)),
	}
	if r.includeRows {
		doc.Unmatched = rowsOf(rep.Unmatched)
	}

	for _, name := range rep.Tables() {
		t := jsonTable{
			Name:                name,
			Issues:              messages(rep.Issues(name)),
			Warnings:            messages(rep.Warnings(name)),
			ProblematicRowCount: rep.ProblematicRows[name].Len(),
			WarningRowCount:     rep.WarningRows[name].Len(),
		}
		if r.includeRows {
			t.ProblematicRows = rowsOf(rep.ProblematicRows[name])
			t.WarningRows = rowsOf(rep.WarningRows[name])
		}
		doc.Tables = append(doc.Tables, t)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := r.out.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func messages(findings []model.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Message)
	}
	return out
}

func rowsOf(rs model.RowSet) *jsonRows {
	out := &jsonRows{
		Columns: make([]string, len(rs.Columns)),
		Rows:    make([][]interface{}, 0, rs.Len()),
	}
	for i, c := range rs.Columns {
		out.Columns[i] = c.Name
	}
	for _, row := range rs.Rows {
		vals := make([]interface{}, len(row))
		for i, v := range row {
			vals[i] = jsonValue(v)
		}
		out.Rows = append(out.Rows, vals)
	}
	return out
}

// jsonValue renders missing values as null and numbers as JSON numbers.
func jsonValue(v model.Value) interface{} {
	if v.Null {
		return nil
	}
	if v.Kind == model.KindNumeric {
		return v.Num
	}
	return v.String()
}
