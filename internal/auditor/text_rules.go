package auditor

import (
	"strings"
	"unicode/utf8"

	"data-audit/internal/model"
)

// DefaultSpecialCharacters is the punctuation flagged in text columns.
const DefaultSpecialCharacters = `!@#$%^&*(),.?/"'`

// PaddingCheck flags values that start or end with a space.
func PaddingCheck() ColumnCheck {
	return ColumnCheck{
		Name:     "padding",
		Severity: model.SeverityIssue,
		Describe: "rows with leading/trailing spaces",
		Match: func(v model.Value) bool {
			return strings.HasPrefix(v.Str, " ") || strings.HasSuffix(v.Str, " ")
		},
	}
}

// SpecialCharacterCheck flags values containing any of chars.
func SpecialCharacterCheck(chars string) ColumnCheck {
	if chars == "" {
		chars = DefaultSpecialCharacters
	}
	return ColumnCheck{
		Name:     "special_characters",
		Severity: model.SeverityIssue,
		Describe: "rows with special characters",
		Match: func(v model.Value) bool {
			return strings.ContainsAny(v.Str, chars)
		},
	}
}

// LengthCheck flags values longer than max characters.
func LengthCheck(max int) ColumnCheck {
	return ColumnCheck{
		Name:     "excessive_length",
		Severity: model.SeverityIssue,
		Describe: "rows with excessively long strings",
		Match: func(v model.Value) bool {
			return utf8.RuneCountInString(v.Str) > max
		},
	}
}

// TextRule runs padding, special character and length checks over every
// text column.
func TextRule(th Thresholds) *ColumnRule {
	return &ColumnRule{
		RuleName: "text_format",
		Kind:     model.KindText,
		Checks: []ColumnCheck{
			PaddingCheck(),
			SpecialCharacterCheck(th.SpecialCharacters),
			LengthCheck(th.MaxTextLength),
		},
	}
}
