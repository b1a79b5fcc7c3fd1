package auditor

import "data-audit/internal/model"

// RangeCheck warns on values above max or below min. Warnings are reported
// apart from issues.
func RangeCheck(min, max float64) ColumnCheck {
	return ColumnCheck{
		Name:     "numeric_range",
		Severity: model.SeverityWarning,
		Describe: "rows exceeding the warning threshold",
		Match: func(v model.Value) bool {
			return v.Num > max || v.Num < min
		},
	}
}

func NumericRule(th Thresholds) *ColumnRule {
	return &ColumnRule{
		RuleName: "numeric_range",
		Kind:     model.KindNumeric,
		Checks:   []ColumnCheck{RangeCheck(th.NumericMin, th.NumericMax)},
	}
}

// VolumeContractRule flags trades with no volume but a positive contract size.
func VolumeContractRule() *RowRule {
	return &RowRule{
		RuleName: "volume_contractsize",
		Severity: model.SeverityIssue,
		Requires: []string{"volume", "contractsize"},
		Match: func(rv RowView) bool {
			vol, ok := rv.Number("volume")
			if !ok {
				return false
			}
			size, ok := rv.Number("contractsize")
			return ok && vol == 0 && size > 0
		},
		Format: "Table %s contains %d rows where volume is 0 but contractsize > 0",
	}
}
