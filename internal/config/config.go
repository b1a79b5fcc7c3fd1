// Package config loads the audit configuration from a YAML file, the
// environment and an optional .env file, in that order of precedence
// (environment wins over the file). Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"data-audit/internal/auditor"
	"data-audit/internal/model"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

const (
	SourcePostgres  = "postgres"
	SourceSnowflake = "snowflake"
	SourceDir       = "dir"
)

var ErrUnknownSource = errors.New("unknown source")

type Config struct {
	Source     string             `yaml:"source"`
	Postgres   PostgresConfig     `yaml:"postgres"`
	Snowflake  SnowflakeConfig    `yaml:"snowflake"`
	Dir        DirConfig          `yaml:"dir"`
	Tables     []string           `yaml:"tables"`
	Join       model.JoinConfig   `yaml:"join"`
	Thresholds auditor.Thresholds `yaml:"thresholds"`
	// Workers bounds table-level parallelism; 0 means one per CPU.
	Workers int          `yaml:"workers"`
	Log     LogConfig    `yaml:"log"`
	Report  ReportConfig `yaml:"report"`
}

// DirConfig describes a directory of delimited files, one table per file.
type DirConfig struct {
	Path       string   `yaml:"path"`
	SchemaFile string   `yaml:"schema_file"`
	Excludes   []string `yaml:"excludes"`
	Recursive  bool     `yaml:"recursive"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ReportConfig struct {
	Format      string `yaml:"format"`
	Output      string `yaml:"output"`
	IncludeRows bool   `yaml:"include_rows"`
}

// Default returns the configuration of the reference run: trades checked
// against users on (login_hash, server_hash).
func Default() *Config {
	return &Config{
		Source: SourcePostgres,
		Postgres: PostgresConfig{
			Host:         "localhost",
			Port:         5432,
			SSLMode:      "disable",
			Schema:       "public",
			QueryTimeout: 5 * time.Minute,
		},
		Snowflake: SnowflakeConfig{
			Schema:       "PUBLIC",
			QueryTimeout: 5 * time.Minute,
		},
		Dir: DirConfig{
			Excludes: []string{".git"},
		},
		Join: model.JoinConfig{
			ChildTable:  "trades",
			ParentTable: "users",
			JoinKeys:    []string{"login_hash", "server_hash"},
		},
		Thresholds: auditor.DefaultThresholds(),
		Log:        LogConfig{Level: "info", Format: "console"},
		Report:     ReportConfig{Format: "console"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	return LoadWith(path, nil)
}

// LoadWith is Load with override applied after the environment and before
// validation. The CLI passes its flags through it.
func LoadWith(path string, override func(*Config)) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := LoadYAML(path, cfg); err != nil {
			return nil, fmt.Errorf("YAML config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv()
	if override != nil {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads variables from a .env file into the environment without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	if err := yaml.UnmarshalStrict(content, data); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// ApplyEnv overrides values with the environment variables that are set.
func (c *Config) ApplyEnv() {
	c.Source = getEnv("AUDIT_SOURCE", c.Source)

	c.Postgres.Host = getEnv("DB_HOST", c.Postgres.Host)
	c.Postgres.Port = getEnvAsInt("DB_PORT", c.Postgres.Port)
	c.Postgres.Database = getEnv("DB_NAME", c.Postgres.Database)
	c.Postgres.User = getEnv("DB_USER", c.Postgres.User)
	c.Postgres.Password = getEnv("DB_PASSWORD", c.Postgres.Password)
	c.Postgres.SSLMode = getEnv("DB_SSLMODE", c.Postgres.SSLMode)
	c.Postgres.Schema = getEnv("DB_SCHEMA", c.Postgres.Schema)

	c.Snowflake.Account = getEnv("SNOWFLAKE_ACCOUNT", c.Snowflake.Account)
	c.Snowflake.User = getEnv("SNOWFLAKE_USER", c.Snowflake.User)
	c.Snowflake.Password = getEnv("SNOWFLAKE_PASSWORD", c.Snowflake.Password)
	c.Snowflake.Warehouse = getEnv("SNOWFLAKE_WAREHOUSE", c.Snowflake.Warehouse)
	c.Snowflake.Database = getEnv("SNOWFLAKE_DATABASE", c.Snowflake.Database)
	c.Snowflake.Schema = getEnv("SNOWFLAKE_SCHEMA", c.Snowflake.Schema)
	c.Snowflake.Role = getEnv("SNOWFLAKE_ROLE", c.Snowflake.Role)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Source {
	case SourcePostgres:
		if err := c.Postgres.Validate(); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	case SourceSnowflake:
		if err := c.Snowflake.Validate(); err != nil {
			return fmt.Errorf("snowflake: %w", err)
		}
	case SourceDir:
		if c.Dir.Path == "" {
			return errors.New("dir: path is required")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source)
	}

	if err := validateJoin(c.Join); err != nil {
		return fmt.Errorf("join: %w", err)
	}

	th := c.Thresholds
	if th.MaxTextLength < 0 {
		return errors.New("thresholds: max_text_length cannot be negative")
	}
	if th.NumericMin > th.NumericMax {
		return fmt.Errorf("thresholds: numeric_min %v is above numeric_max %v", th.NumericMin, th.NumericMax)
	}
	if th.MaxHoldingDays < 0 {
		return errors.New("thresholds: max_holding_days cannot be negative")
	}

	if c.Workers < 0 {
		return errors.New("workers cannot be negative")
	}

	if !oneOf(c.Log.Level, "debug", "info", "warn", "warning", "error") {
		return fmt.Errorf("log: unsupported level %q", c.Log.Level)
	}
	if !oneOf(c.Log.Format, "console", "json") {
		return fmt.Errorf("log: unsupported format %q", c.Log.Format)
	}
	if !oneOf(c.Report.Format, "console", "json") {
		return fmt.Errorf("report: unsupported format %q", c.Report.Format)
	}

	return nil
}

// validateJoin accepts an empty join (the check is skipped) or a complete one.
func validateJoin(j model.JoinConfig) error {
	if j.ChildTable == "" && j.ParentTable == "" && len(j.JoinKeys) == 0 {
		return nil
	}
	if j.ChildTable == "" || j.ParentTable == "" {
		return errors.New("child_table and parent_table are both required")
	}
	if len(j.JoinKeys) == 0 {
		return errors.New("join_keys cannot be empty")
	}
	for _, k := range j.JoinKeys {
		if strings.TrimSpace(k) == "" {
			return errors.New("join_keys cannot contain empty names")
		}
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	v = strings.ToLower(v)
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
