package auditor

import "data-audit/internal/model"

// TableResult holds the findings of one table, in rule emission order.
type TableResult struct {
	Table    string
	Columns  []model.Column
	Findings []model.Finding
}

// Aggregate merges per-table results and the referential check outcome into
// a report. Issue rows go to ProblematicRows and warning rows to WarningRows;
// a row flagged by several rules appears once per rule.
func Aggregate(results []TableResult, unmatched model.RowSet, unmatchedMsg string) *model.Report {
	report := &model.Report{
		Unmatched:         unmatched,
		UnmatchedMessage:  unmatchedMsg,
		IssuesAndWarnings: make(map[string][]model.Finding),
		ProblematicRows:   make(map[string]model.RowSet),
		WarningRows:       make(map[string]model.RowSet),
	}

	for _, res := range results {
		problematic := model.RowSet{Table: res.Table, Columns: res.Columns}
		warning := model.RowSet{Table: res.Table, Columns: res.Columns}

		for _, f := range res.Findings {
			if f.Severity == model.SeverityWarning {
				warning = warning.Append(f.Rows)
			} else {
				problematic = problematic.Append(f.Rows)
			}
		}

		if len(res.Findings) > 0 {
			report.IssuesAndWarnings[res.Table] = append([]model.Finding(nil), res.Findings...)
		}
		report.ProblematicRows[res.Table] = problematic
		report.WarningRows[res.Table] = warning
	}

	return report
}
