package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Schema whose base tables are audited
	Schema       string        `yaml:"schema"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	Account      string        `yaml:"account"`
	User         string        `yaml:"user"`
	Password     string        `yaml:"password"`
	Warehouse    string        `yaml:"warehouse"`
	Database     string        `yaml:"database"`
	Schema       string        `yaml:"schema"`
	Role         string        `yaml:"role"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

func (c *PostgresConfig) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %d", c.Port)
	}
	if c.Database == "" {
		return errors.New("database is required (DB_NAME)")
	}
	if c.User == "" {
		return errors.New("user is required (DB_USER)")
	}
	return nil
}

// ConnectionString returns a lib/pq keyword/value connection string.
func (c *PostgresConfig) ConnectionString() string {
	parts := []string{
		"host=" + quoteConnValue(c.Host),
		fmt.Sprintf("port=%d", c.Port),
		"dbname=" + quoteConnValue(c.Database),
		"user=" + quoteConnValue(c.User),
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteConnValue(c.Password))
	}
	if c.SSLMode != "" {
		parts = append(parts, "sslmode="+quoteConnValue(c.SSLMode))
	}
	return strings.Join(parts, " ")
}

// quoteConnValue single-quotes a value, escaping backslashes and quotes.
func quoteConnValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (c *SnowflakeConfig) Validate() error {
	if c.Account == "" {
		return errors.New("account is required (SNOWFLAKE_ACCOUNT)")
	}
	if c.User == "" {
		return errors.New("user is required (SNOWFLAKE_USER)")
	}
	if c.Password == "" {
		return errors.New("password is required (SNOWFLAKE_PASSWORD)")
	}
	if c.Database == "" {
		return errors.New("database is required (SNOWFLAKE_DATABASE)")
	}
	return nil
}

// DSN builds the gosnowflake data source name.
func (c *SnowflakeConfig) DSN() (string, error) {
	return gosnowflake.DSN(&gosnowflake.Config{
		Account:   c.Account,
		User:      c.User,
		Password:  c.Password,
		Warehouse: c.Warehouse,
		Database:  c.Database,
		Schema:    c.Schema,
		Role:      c.Role,
	})
}
