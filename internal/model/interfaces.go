package model

import "context"

// Loader reads a single file into a table
type Loader interface {
	// Load parses the file content; name is the table name to assign
	Load(name string, content []byte) (*Table, error)
}

// Rule represents a single-table audit logic unit
type Rule interface {
	// Name returns the unique identifier of the rule
	Name() string
	// Check examines the table and returns any findings.
	// A rule whose preconditions are unmet returns no findings and no error.
	Check(table *Table) ([]Finding, error)
}

// CrossTableRule compares two tables of a dataset
type CrossTableRule interface {
	Name() string
	// Check returns the offending rows and a summary message (empty when nothing was found)
	Check(ds Dataset) (RowSet, string)
}

// Source produces the dataset to audit
type Source interface {
	Load(ctx context.Context) (Dataset, error)
	Close() error
}

// Reporter defines how to output results
type Reporter interface {
	Report(report *Report) error
}
