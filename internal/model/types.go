package model

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind is the classification of a column, resolved once at ingestion.
type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindNumeric
	KindTemporal
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindTemporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// Value is a single cell. Null marks a missing value, which is distinct
// from an empty string or zero.
type Value struct {
	Kind Kind
	Null bool
	Str  string
	Num  float64
	Time time.Time
}

func Missing() Value { return Value{Null: true} }

func Text(s string) Value { return Value{Kind: KindText, Str: s} }

func Number(f float64) Value { return Value{Kind: KindNumeric, Num: f} }

func Timestamp(t time.Time) Value { return Value{Kind: KindTemporal, Time: t} }

// Other holds a value of a column whose kind is unknown (booleans, blobs...).
func Other(s string) Value { return Value{Kind: KindUnknown, Str: s} }

// String returns the canonical text form of the value. Missing values
// render as the empty string; use Key when missing must stay distinct.
func (v Value) String() string {
	if v.Null {
		return ""
	}
	switch v.Kind {
	case KindNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindTemporal:
		return v.Time.UTC().Format(time.RFC3339Nano)
	default:
		return v.Str
	}
}

// Key is the comparison form used for row equality: missing values
// compare equal to each other and never equal a present value.
func (v Value) Key() string {
	if v.Null {
		return "\x00"
	}
	return "\x01" + v.String()
}

// Row is aligned with its table's Columns.
type Row []Value

type Column struct {
	Name string
	Kind Kind
}

// Table is an ordered, named set of rows sharing the same columns.
type Table struct {
	Name    string
	Columns []Column
	Rows    []Row
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) Has(names ...string) bool {
	for _, n := range names {
		if t.Index(n) < 0 {
			return false
		}
	}
	return true
}

// ColumnsOf returns the columns of the given kind in table order.
func (t *Table) ColumnsOf(kind Kind) []Column {
	var cols []Column
	for _, c := range t.Columns {
		if c.Kind == kind {
			cols = append(cols, c)
		}
	}
	return cols
}

// Select returns the rows matching pred, in table order.
func (t *Table) Select(pred func(Row) bool) RowSet {
	rs := RowSet{Table: t.Name, Columns: t.Columns}
	for i, r := range t.Rows {
		if pred(r) {
			rs.Indices = append(rs.Indices, i)
			rs.Rows = append(rs.Rows, r)
		}
	}
	return rs
}

// Dataset maps table name to table.
type Dataset map[string]*Table

// Names returns the table names sorted, for deterministic iteration.
func (d Dataset) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RowSet is a subset of a table's rows. Rows are the source rows themselves;
// Indices are their positions in the source table (-1 for synthesized rows).
type RowSet struct {
	Table   string
	Columns []Column
	Indices []int
	Rows    []Row
}

func (rs RowSet) Len() int { return len(rs.Rows) }

// Append concatenates other onto rs. Rows already present are not
// deduplicated.
func (rs RowSet) Append(other RowSet) RowSet {
	if rs.Columns == nil {
		rs.Columns = other.Columns
	}
	if rs.Table == "" {
		rs.Table = other.Table
	}
	rs.Indices = append(rs.Indices, other.Indices...)
	rs.Rows = append(rs.Rows, other.Rows...)
	return rs
}

// Severity of a finding.
type Severity string

const (
	SeverityIssue   Severity = "ISSUE"
	SeverityWarning Severity = "WARNING"
)

// Finding is one reported issue or warning together with the rows that
// triggered it. Count always equals Rows.Len().
type Finding struct {
	Rule     string
	Severity Severity
	Table    string
	Column   string // empty for table-wide rules
	Message  string
	Count    int
	Rows     RowSet
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
}

// JoinConfig names the participants of the referential integrity check.
type JoinConfig struct {
	ChildTable  string   `yaml:"child_table"`
	ParentTable string   `yaml:"parent_table"`
	JoinKeys    []string `yaml:"join_keys"`
}

// Report is the outcome of one audit run.
type Report struct {
	Unmatched         RowSet
	UnmatchedMessage  string
	IssuesAndWarnings map[string][]Finding
	ProblematicRows   map[string]RowSet
	WarningRows       map[string]RowSet
}

// Tables returns every audited table name, sorted.
func (r *Report) Tables() []string {
	names := make([]string, 0, len(r.ProblematicRows))
	for n := range r.ProblematicRows {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Issues returns the table's issue findings in emission order.
func (r *Report) Issues(table string) []Finding {
	return r.bySeverity(table, SeverityIssue)
}

// Warnings returns the table's warning findings in emission order.
func (r *Report) Warnings(table string) []Finding {
	return r.bySeverity(table, SeverityWarning)
}

func (r *Report) bySeverity(table string, sev Severity) []Finding {
	var out []Finding
	for _, f := range r.IssuesAndWarnings[table] {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Messages returns the message lists keyed "{table}_issues" and
// "{table}_warnings". Empty lists are omitted.
func (r *Report) Messages() map[string][]string {
	out := make(map[string][]string)
	for table := range r.IssuesAndWarnings {
		for _, f := range r.Issues(table) {
			out[table+"_issues"] = append(out[table+"_issues"], f.Message)
		}
		for _, f := range r.Warnings(table) {
			out[table+"_warnings"] = append(out[table+"_warnings"], f.Message)
		}
	}
	return out
}

// FindingCount is the number of findings across all tables.
func (r *Report) FindingCount() int {
	n := 0
	for _, fs := range r.IssuesAndWarnings {
		n += len(fs)
	}
	return n
}
