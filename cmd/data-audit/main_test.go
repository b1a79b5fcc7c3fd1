package main

import (
	"testing"

	"data-audit/internal/config"
)

func TestApplyFlags(t *testing.T) {
	flags := rootCmd.Flags()
	if err := flags.Parse([]string{"--dir", "./exports", "--keys", "a,b", "-w", "3", "-r", "json"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg := config.Default()
	applyFlags(flags, cfg)

	if cfg.Source != config.SourceDir || cfg.Dir.Path != "./exports" {
		t.Errorf("source = %q, dir = %q", cfg.Source, cfg.Dir.Path)
	}
	if len(cfg.Join.JoinKeys) != 2 || cfg.Join.JoinKeys[1] != "b" {
		t.Errorf("join keys = %v", cfg.Join.JoinKeys)
	}
	if cfg.Workers != 3 || cfg.Report.Format != "json" {
		t.Errorf("workers = %d, report = %q", cfg.Workers, cfg.Report.Format)
	}
	// Flags not given keep the configured values.
	if cfg.Join.ChildTable != "trades" || cfg.Log.Level != "info" {
		t.Errorf("unset flags changed config: %+v", cfg.Join)
	}
}
