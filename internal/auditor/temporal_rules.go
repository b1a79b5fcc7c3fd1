package auditor

import (
	"math"

	"data-audit/internal/model"
)

const (
	OpenTimeColumn  = "open_time"
	CloseTimeColumn = "close_time"
)

// NormalizeTimestamps re-types the named columns as temporal when all of
// them are present. Unparseable values become missing. The input table is
// left untouched; a new table is returned when anything changed.
func NormalizeTimestamps(t *model.Table, cols ...string) *model.Table {
	if len(cols) == 0 || !t.Has(cols...) {
		return t
	}

	out := &model.Table{
		Name:    t.Name,
		Columns: make([]model.Column, len(t.Columns)),
		Rows:    make([]model.Row, len(t.Rows)),
	}
	copy(out.Columns, t.Columns)

	targets := make([]int, 0, len(cols))
	for _, c := range cols {
		i := t.Index(c)
		out.Columns[i].Kind = model.KindTemporal
		targets = append(targets, i)
	}

	for r, row := range t.Rows {
		nr := make(model.Row, len(row))
		copy(nr, row)
		for _, i := range targets {
			nr[i] = model.AsTimestamp(row[i])
		}
		out.Rows[r] = nr
	}

	return out
}

// openClose returns both timestamps when present.
func openClose(rv RowView) (opened, closed model.Value, ok bool) {
	opened, closed = rv.Get(OpenTimeColumn), rv.Get(CloseTimeColumn)
	if opened.Null || closed.Null || opened.Kind != model.KindTemporal || closed.Kind != model.KindTemporal {
		return opened, closed, false
	}
	return opened, closed, true
}

// InvertedIntervalRule flags rows opened after they were closed.
func InvertedIntervalRule() *RowRule {
	return &RowRule{
		RuleName: "inverted_interval",
		Severity: model.SeverityIssue,
		Requires: []string{OpenTimeColumn, CloseTimeColumn},
		Match: func(rv RowView) bool {
			opened, closed, ok := openClose(rv)
			return ok && opened.Time.After(closed.Time)
		},
		Format: "Table %s contains %d rows where open_time is later than close_time",
	}
}

// HoldingDays is the whole number of days between opened and closed, rounded
// toward negative infinity.
func HoldingDays(opened, closed model.Value) int64 {
	return int64(math.Floor(closed.Time.Sub(opened.Time).Hours() / 24))
}

// HoldingPeriodRule flags rows held for more than maxDays whole days.
func HoldingPeriodRule(maxDays int) *RowRule {
	return &RowRule{
		RuleName: "holding_period",
		Severity: model.SeverityIssue,
		Requires: []string{OpenTimeColumn, CloseTimeColumn},
		Match: func(rv RowView) bool {
			opened, closed, ok := openClose(rv)
			return ok && HoldingDays(opened, closed) > int64(maxDays)
		},
		Format: "Table %s contains %d rows where holding period exceeds 1 year",
	}
}
