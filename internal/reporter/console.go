package reporter

import (
	"fmt"
	"io"
	"os"

	"data-audit/internal/model"

	"github.com/fatih/color"
)

type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter writes to out, or to stdout when out is nil.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Report(rep *model.Report) error {
	unmatched := rep.Unmatched.Len()
	if rep.UnmatchedMessage != "" {
		msgColor := color.New(color.FgGreen)
		if unmatched > 0 {
			msgColor = color.New(color.FgRed, color.Bold)
		}
		fmt.Fprintf(r.out, "%s\n\n", msgColor.Sprint(rep.UnmatchedMessage))
	}

	if rep.FindingCount() == 0 && unmatched == 0 {
		fmt.Fprintln(r.out, color.GreenString("✔ No data quality issues found."))
		return nil
	}

	issueColor := color.New(color.FgRed, color.Bold)
	warnColor := color.New(color.FgYellow, color.Bold)

	var issues, warnings, tables int
	for _, table := range rep.Tables() {
		is, ws := rep.Issues(table), rep.Warnings(table)
		if len(is)+len(ws) == 0 {
			continue
		}
		tables++

		// Format: [LEVEL] Message
		fmt.Fprintln(r.out, color.New(color.Bold).Sprintf("Table %s", table))
		for _, f := range is {
			fmt.Fprintf(r.out, "  [%s] %s\n", issueColor.Sprint(f.Severity), f.Message)
		}
		for _, f := range ws {
			fmt.Fprintf(r.out, "  [%s] %s\n", warnColor.Sprint(f.Severity), f.Message)
		}
		fmt.Fprintf(r.out, "  Problematic rows: %d, warning rows: %d\n\n",
			rep.ProblematicRows[table].Len(), rep.WarningRows[table].Len())

		issues += len(is)
		warnings += len(ws)
	}

	// Summary
	fmt.Fprintf(r.out, "%s found %d issues and %d warnings in %d tables, %d unmatched records.\n",
		color.RedString("✘"), issues, warnings, tables, unmatched)
	return nil
}
