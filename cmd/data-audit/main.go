package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"data-audit/internal/auditor"
	"data-audit/internal/config"
	"data-audit/internal/logging"
	"data-audit/internal/reporter"
	"data-audit/internal/source"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	configPath  string
	envFile     string
	sourceKind  string
	dirPath     string
	schemaPath  string
	excludes    []string
	recursive   bool
	tables      []string
	childTable  string
	parentTable string
	joinKeys    []string
	workers     int
	reportFmt   string
	outputFile  string
	includeRows bool
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "data-audit",
	Short: "A data quality auditor for tabular datasets",
	Long: `data-audit loads every table of a PostgreSQL or Snowflake schema, or a
directory of CSV/TSV exports, and checks it for formatting problems,
out-of-range values, inconsistent timestamps, missing values, duplicate
rows and child records without a matching parent.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runAudit(ctx, cmd.Flags())
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "Path to .env file (ignored if missing)")
	rootCmd.Flags().StringVar(&sourceKind, "source", "", "Data source (postgres, snowflake, dir)")
	rootCmd.Flags().StringVarP(&dirPath, "dir", "d", "", "Directory of CSV/TSV files (implies --source dir)")
	rootCmd.Flags().StringVarP(&schemaPath, "schema", "S", "", "DDL file declaring column types for --dir")
	rootCmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "Glob patterns to exclude from the directory scan")
	rootCmd.Flags().BoolVar(&recursive, "recursive", false, "Scan sub-directories")
	rootCmd.Flags().StringSliceVarP(&tables, "tables", "t", nil, "Only audit these tables")
	rootCmd.Flags().StringVar(&childTable, "child", "", "Child table of the referential check")
	rootCmd.Flags().StringVar(&parentTable, "parent", "", "Parent table of the referential check")
	rootCmd.Flags().StringSliceVar(&joinKeys, "keys", nil, "Join keys of the referential check")
	rootCmd.Flags().IntVarP(&workers, "workers", "w", 0, "Tables audited in parallel (0 = one per CPU)")
	rootCmd.Flags().StringVarP(&reportFmt, "report", "r", "", "Report format (console, json)")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&includeRows, "include-rows", false, "Embed flagged rows in the JSON report")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags copies the flags given on the command line over cfg.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) {
	if flags.Changed("source") {
		cfg.Source = sourceKind
	}
	if flags.Changed("dir") {
		cfg.Dir.Path = dirPath
		if !flags.Changed("source") {
			cfg.Source = config.SourceDir
		}
	}
	if flags.Changed("schema") {
		cfg.Dir.SchemaFile = schemaPath
	}
	if flags.Changed("exclude") {
		cfg.Dir.Excludes = excludes
	}
	if flags.Changed("recursive") {
		cfg.Dir.Recursive = recursive
	}
	if flags.Changed("tables") {
		cfg.Tables = tables
	}
	if flags.Changed("child") {
		cfg.Join.ChildTable = childTable
	}
	if flags.Changed("parent") {
		cfg.Join.ParentTable = parentTable
	}
	if flags.Changed("keys") {
		cfg.Join.JoinKeys = joinKeys
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("report") {
		cfg.Report.Format = reportFmt
	}
	if flags.Changed("out") {
		cfg.Report.Output = outputFile
	}
	if flags.Changed("include-rows") {
		cfg.Report.IncludeRows = includeRows
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
}

func runAudit(ctx context.Context, flags *pflag.FlagSet) error {
	// 0. Configuration
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	cfg, err := config.LoadWith(configPath, func(c *config.Config) { applyFlags(flags, c) })
	if err != nil {
		return err
	}

	logger, restore, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer restore()
	defer func() { _ = logger.Sync() }()

	runID := uuid.New().String()
	logger = logger.Named("main").With(zap.String("run_id", runID))
	logger.Info("Starting audit", zap.String("source", cfg.Source), zap.Int("workers", cfg.Workers))

	// 1. Ingest
	src, err := source.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	ds, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	// 2. Audit
	aud := auditor.NewAuditor(auditor.NewReferentialCheck(cfg.Join), cfg.Workers)
	aud.Register(auditor.DefaultRules(cfg.Thresholds)...)

	report, err := aud.Audit(ds)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}
	logger.Info("Audit complete",
		zap.Int("tables", len(ds)),
		zap.Int("findings", report.FindingCount()),
		zap.Int("unmatched", report.Unmatched.Len()))

	// 3. Report
	out, closeOut, err := reporter.OpenOutput(cfg.Report.Output)
	if err != nil {
		return err
	}
	rpt, err := reporter.New(cfg.Report.Format, out, runID, cfg.Report.IncludeRows)
	if err != nil {
		closeOut()
		return err
	}
	if err := rpt.Report(report); err != nil {
		closeOut()
		return fmt.Errorf("reporting failed: %w", err)
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if cfg.Report.Output != "" {
		logger.Info("Report written", zap.String("file", cfg.Report.Output))
	}

	return nil
}
