// Package logging configures the process-wide zap logger.
//
// Components obtain named children with zap.L().Named("component"), so the
// logger must be installed before any component is constructed.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for the given level and format and installs it as
// the global logger. The returned function restores the previous globals.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "console", "json" (default: "console")
func New(level, format string) (*zap.Logger, func(), error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableStacktrace = true
	// Reports go to stdout; logs stay on stderr
	cfg.OutputPaths = []string{"stderr"}

	if strings.ToLower(format) == "json" {
		cfg.Encoding = "json"
	} else {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	restore := zap.ReplaceGlobals(logger)
	return logger, restore, nil
}

// parseLevel converts a string log level to a zap level.
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
