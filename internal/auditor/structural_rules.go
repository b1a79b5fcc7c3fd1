package auditor

import (
	"fmt"
	"strings"

	"data-audit/internal/model"
)

// MissingRule reports every column holding missing values in a single
// finding, and flags each row with at least one missing value.
type MissingRule struct{}

func (r *MissingRule) Name() string { return "missing_values" }

func (r *MissingRule) Check(t *model.Table) ([]model.Finding, error) {
	counts := make([]int, len(t.Columns))
	rows := t.Select(func(row model.Row) bool {
		hasMissing := false
		for i, v := range row {
			if v.Null {
				counts[i]++
				hasMissing = true
			}
		}
		return hasMissing
	})
	if rows.Len() == 0 {
		return nil, nil
	}

	var parts []string
	for i, n := range counts {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", t.Columns[i].Name, n))
		}
	}

	return []model.Finding{{
		Rule:     r.Name(),
		Severity: model.SeverityIssue,
		Table:    t.Name,
		Message:  fmt.Sprintf("Missing values detected: {%s}", strings.Join(parts, ", ")),
		Count:    rows.Len(),
		Rows:     rows,
	}}, nil
}

// DuplicateRule flags every row equal across all columns to an earlier row.
// The first occurrence is not flagged.
type DuplicateRule struct{}

func (r *DuplicateRule) Name() string { return "duplicate_rows" }

func (r *DuplicateRule) Check(t *model.Table) ([]model.Finding, error) {
	seen := make(map[string]struct{}, len(t.Rows))
	rows := t.Select(func(row model.Row) bool {
		k := rowKey(row)
		if _, ok := seen[k]; ok {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
	if rows.Len() == 0 {
		return nil, nil
	}

	return []model.Finding{{
		Rule:     r.Name(),
		Severity: model.SeverityIssue,
		Table:    t.Name,
		Message:  fmt.Sprintf("Table %s contains %d duplicate rows", t.Name, rows.Len()),
		Count:    rows.Len(),
		Rows:     rows,
	}}, nil
}

func rowKey(row model.Row) string {
	var b strings.Builder
	for _, v := range row {
		b.WriteString(v.Key())
		b.WriteByte('\x1f')
	}
	return b.String()
}
