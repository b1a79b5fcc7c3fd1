package auditor

import (
	"fmt"

	"data-audit/internal/model"
)

// ColumnCheck is a predicate over a single value. Missing values are never
// passed to Match.
type ColumnCheck struct {
	Name     string
	Severity model.Severity
	// Describe completes "Column {col} contains {n} ..."
	Describe string
	Match    func(v model.Value) bool
}

// ColumnRule applies its checks to every column of Kind. Columns are the
// outer loop, so findings for one column stay together in the report.
type ColumnRule struct {
	RuleName string
	Kind     model.Kind
	Checks   []ColumnCheck
}

func (r *ColumnRule) Name() string { return r.RuleName }

func (r *ColumnRule) Check(t *model.Table) ([]model.Finding, error) {
	var findings []model.Finding

	for _, col := range t.ColumnsOf(r.Kind) {
		idx := t.Index(col.Name)
		for _, chk := range r.Checks {
			if chk.Match == nil {
				return nil, fmt.Errorf("check %s has no predicate", chk.Name)
			}
			match := chk.Match
			rows := t.Select(func(row model.Row) bool {
				v := row[idx]
				return !v.Null && match(v)
			})
			if rows.Len() == 0 {
				continue
			}
			findings = append(findings, model.Finding{
				Rule:     chk.Name,
				Severity: chk.Severity,
				Table:    t.Name,
				Column:   col.Name,
				Message:  fmt.Sprintf("Column %s contains %d %s", col.Name, rows.Len(), chk.Describe),
				Count:    rows.Len(),
				Rows:     rows,
			})
		}
	}

	return findings, nil
}

// RowView gives a rule access to a row's values by column name.
type RowView struct {
	index map[string]int
	row   model.Row
}

// Get returns the named value, or a missing value if the column is absent.
func (rv RowView) Get(name string) model.Value {
	i, ok := rv.index[name]
	if !ok {
		return model.Missing()
	}
	return rv.row[i]
}

// Number returns the named value as a number when it is a present numeric value.
func (rv RowView) Number(name string) (float64, bool) {
	v := rv.Get(name)
	if v.Null || v.Kind != model.KindNumeric {
		return 0, false
	}
	return v.Num, true
}

// RowRule is a table-wide predicate that only runs when every column in
// Requires is present.
type RowRule struct {
	RuleName string
	Severity model.Severity
	Requires []string
	Match    func(rv RowView) bool
	// Format receives the table name and the row count.
	Format string
}

func (r *RowRule) Name() string { return r.RuleName }

func (r *RowRule) Check(t *model.Table) ([]model.Finding, error) {
	if r.Match == nil {
		return nil, fmt.Errorf("rule %s has no predicate", r.RuleName)
	}
	if !t.Has(r.Requires...) {
		return nil, nil
	}

	index := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		index[c.Name] = i
	}

	rows := t.Select(func(row model.Row) bool {
		return r.Match(RowView{index: index, row: row})
	})
	if rows.Len() == 0 {
		return nil, nil
	}

	return []model.Finding{{
		Rule:     r.RuleName,
		Severity: r.Severity,
		Table:    t.Name,
		Message:  fmt.Sprintf(r.Format, t.Name, rows.Len()),
		Count:    rows.Len(),
		Rows:     rows,
	}}, nil
}
