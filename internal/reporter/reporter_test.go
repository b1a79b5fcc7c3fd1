package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"data-audit/internal/model"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func sampleReport() *model.Report {
	cols := []model.Column{{Name: "login_hash", Kind: model.KindText}, {Name: "volume", Kind: model.KindNumeric}}
	bad := model.RowSet{
		Table:   "trades",
		Columns: cols,
		Indices: []int{1},
		Rows:    []model.Row{{model.Text(" h2"), model.Missing()}},
	}
	warn := model.RowSet{
		Table:   "trades",
		Columns: cols,
		Indices: []int{2},
		Rows:    []model.Row{{model.Text("h3"), model.Number(-1)}},
	}

	return &model.Report{
		Unmatched: model.RowSet{
			Table:   "trades",
			Columns: cols,
			Indices: []int{0},
			Rows:    []model.Row{{model.Text("h9"), model.Number(2)}},
		},
		UnmatchedMessage: "Found 1 records where `login_hash` in `trades` do not exist in `users`",
		IssuesAndWarnings: map[string][]model.Finding{
			"trades": {
				{Rule: "text_format", Severity: model.SeverityIssue, Table: "trades", Message: "Column login_hash contains 1 rows with leading/trailing spaces", Count: 1, Rows: bad},
				{Rule: "numeric_range", Severity: model.SeverityWarning, Table: "trades", Message: "Column volume contains 1 rows exceeding the warning threshold", Count: 1, Rows: warn},
			},
		},
		ProblematicRows: map[string]model.RowSet{
			"trades": bad,
			"users":  {Table: "users"},
		},
		WarningRows: map[string]model.RowSet{
			"trades": warn,
			"users":  {Table: "users"},
		},
	}
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsoleReporter(&buf).Report(sampleReport()); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	out := buf.String()

	want := []string{
		"Found 1 records where `login_hash` in `trades` do not exist in `users`",
		"Table trades",
		"  [ISSUE] Column login_hash contains 1 rows with leading/trailing spaces",
		"  [WARNING] Column volume contains 1 rows exceeding the warning threshold",
		"Problematic rows: 1, warning rows: 1",
		"found 1 issues and 1 warnings in 1 tables, 1 unmatched records.",
	}
	last := -1
	for _, w := range want {
		idx := strings.Index(out, w)
		if idx < 0 {
			t.Fatalf("output missing %q:\n%s", w, out)
		}
		if idx < last {
			t.Errorf("%q printed out of order:\n%s", w, out)
		}
		last = idx
	}
	if strings.Contains(out, "Table users") {
		t.Errorf("table without findings should not be listed:\n%s", out)
	}
}

func TestConsoleReporter_Clean(t *testing.T) {
	rep := &model.Report{
		UnmatchedMessage:  "All records matched",
		IssuesAndWarnings: map[string][]model.Finding{},
		ProblematicRows:   map[string]model.RowSet{"users": {}},
		WarningRows:       map[string]model.RowSet{"users": {}},
	}

	var buf bytes.Buffer
	if err := NewConsoleReporter(&buf).Report(rep); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No data quality issues found") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestJSONReporter(t *testing.T) {
	tests := []struct {
		name        string
		includeRows bool
	}{
		{"counts only", false},
		{"with rows", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			r := NewJSONReporter(&buf, "run-1", tt.includeRows)
			r.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

			if err := r.Report(sampleReport()); err != nil {
				t.Fatalf("Report() error = %v", err)
			}

			var doc jsonReport
			if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
			}

			if doc.RunID != "run-1" || doc.GeneratedAt != "2024-01-02T03:04:05Z" {
				t.Errorf("header = %q %q", doc.RunID, doc.GeneratedAt)
			}
			if doc.UnmatchedCount != 1 {
				t.Errorf("unmatched_count = %d, want 1", doc.UnmatchedCount)
			}
			if len(doc.Tables) != 2 || doc.Tables[0].Name != "trades" || doc.Tables[1].Name != "users" {
				t.Fatalf("tables = %+v", doc.Tables)
			}

			trades := doc.Tables[0]
			if len(trades.Issues) != 1 || len(trades.Warnings) != 1 {
				t.Errorf("trades messages = %v / %v", trades.Issues, trades.Warnings)
			}
			if trades.ProblematicRowCount != 1 || trades.WarningRowCount != 1 {
				t.Errorf("trades counts = %d / %d", trades.ProblematicRowCount, trades.WarningRowCount)
			}
			if users := doc.Tables[1]; users.Issues == nil || len(users.Issues) != 0 {
				t.Errorf("users issues = %#v, want empty list", users.Issues)
			}

			if !tt.includeRows {
				if trades.ProblematicRows != nil || doc.Unmatched != nil {
					t.Errorf("rows embedded without include_rows")
				}
				return
			}
			rows := trades.ProblematicRows
			if rows == nil || len(rows.Rows) != 1 {
				t.Fatalf("problematic rows = %+v", rows)
			}
			if rows.Rows[0][0] != " h2" || rows.Rows[0][1] != nil {
				t.Errorf("row = %#v", rows.Rows[0])
			}
			if got := trades.WarningRows.Rows[0][1]; got != float64(-1) {
				t.Errorf("numeric value = %#v, want -1", got)
			}
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	for _, format := range []string{"", "console", "JSON"} {
		if _, err := New(format, &buf, "id", false); err != nil {
			t.Errorf("New(%q) error = %v", format, err)
		}
	}
	if _, err := New("html", &buf, "id", false); err == nil {
		t.Errorf("New(html) expected error")
	}
}
