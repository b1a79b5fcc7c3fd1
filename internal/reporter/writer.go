package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"data-audit/internal/model"
)

// New returns the reporter for format ("console" or "json") writing to w.
func New(format string, w io.Writer, runID string, includeRows bool) (model.Reporter, error) {
	switch strings.ToLower(format) {
	case "", "console":
		return NewConsoleReporter(w), nil
	case "json":
		return NewJSONReporter(w, runID, includeRows), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// OpenOutput opens path for writing, or returns stdout for an empty path.
// The returned function closes the file.
func OpenOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create report file: %w", err)
	}
	return f, f.Close, nil
}
