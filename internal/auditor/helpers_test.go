package auditor

import (
	"time"

	"data-audit/internal/model"
)

// newTable builds a table from columns and rows of raw Go values:
// nil -> missing, string -> text, float64/int -> numeric, time.Time -> temporal.
func newTable(name string, cols []model.Column, rows ...[]any) *model.Table {
	t := &model.Table{Name: name, Columns: cols}
	for _, raw := range rows {
		row := make(model.Row, len(raw))
		for i, v := range raw {
			switch x := v.(type) {
			case nil:
				row[i] = model.Missing()
			case string:
				row[i] = model.Text(x)
			case int:
				row[i] = model.Number(float64(x))
			case float64:
				row[i] = model.Number(x)
			case time.Time:
				row[i] = model.Timestamp(x)
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func text(name string) model.Column    { return model.Column{Name: name, Kind: model.KindText} }
func numeric(name string) model.Column { return model.Column{Name: name, Kind: model.KindNumeric} }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
