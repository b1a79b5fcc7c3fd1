package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"data-audit/internal/model"
	"data-audit/internal/parser"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"
)

var ErrNoTables = errors.New("no tables found")

const (
	listTablesQuery = `SELECT table_name FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name`
	listColumnsQuery = `SELECT column_name, data_type FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`
)

type columnInfo struct {
	Name     string `db:"column_name"`
	DataType string `db:"data_type"`
}

// SQLSource reads every base table of a schema through database/sql.
type SQLSource struct {
	db      *sqlx.DB
	schema  string
	tables  []string
	timeout time.Duration
	logger  *zap.Logger
}

// NewSQLSource opens a connection with the registered driver ("postgres" or
// "snowflake") and verifies it. tables, when not empty, restricts the audit
// to those tables.
func NewSQLSource(ctx context.Context, driver, dsn, schema string, tables []string, timeout time.Duration) (*SQLSource, error) {
	logger := zap.L().Named(driver + "-source")

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connection: %w", driver, err)
	}
	db.SetMaxOpenConns(4)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	logger.Info("Connected", zap.String("schema", schema))
	return newSQLSource(db, schema, tables, timeout, logger), nil
}

func newSQLSource(db *sqlx.DB, schema string, tables []string, timeout time.Duration, logger *zap.Logger) *SQLSource {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &SQLSource{db: db, schema: schema, tables: tables, timeout: timeout, logger: logger}
}

func (s *SQLSource) Close() error {
	stats := s.db.Stats()
	s.logger.Debug("Closing connection",
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle))
	return s.db.Close()
}

// Load reads all selected tables fully into memory.
func (s *SQLSource) Load(ctx context.Context) (model.Dataset, error) {
	names, err := s.listTables(ctx)
	if err != nil {
		return nil, err
	}
	names = filterTables(names, s.tables, s.logger)
	if len(names) == 0 {
		return nil, fmt.Errorf("schema %s: %w", s.schema, ErrNoTables)
	}

	ds := make(model.Dataset, len(names))
	for _, name := range names {
		s.logger.Info("Reading table", zap.String("table", name))
		table, err := s.loadTable(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}
		ds[name] = table
	}

	s.logger.Info("All tables loaded", zap.Int("tables", len(ds)))
	return ds, nil
}

func (s *SQLSource) listTables(ctx context.Context) ([]string, error) {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var names []string
	if err := s.db.SelectContext(qctx, &names, s.db.Rebind(listTablesQuery), s.schema); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return names, nil
}

func (s *SQLSource) loadTable(ctx context.Context, name string) (*model.Table, error) {
	qctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var infos []columnInfo
	if err := s.db.SelectContext(qctx, &infos, s.db.Rebind(listColumnsQuery), s.schema, name); err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	kinds := make(map[string]model.Kind, len(infos))
	for _, ci := range infos {
		kinds[ci.Name] = parser.KindOf(ci.DataType)
	}

	query := fmt.Sprintf("SELECT * FROM %s.%s", quoteIdent(s.schema), quoteIdent(name))
	rows, err := s.db.QueryxContext(qctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	table := &model.Table{Name: name, Columns: make([]model.Column, len(names))}
	for i, n := range names {
		table.Columns[i] = model.Column{Name: n, Kind: kinds[n]}
	}

	for rows.Next() {
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		row := make(model.Row, len(raw))
		for i, v := range raw {
			row[i] = toValue(v, table.Columns[i].Kind)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

// toValue converts a driver value to a value of the column's kind. Values
// that do not fit the kind become missing.
func toValue(raw interface{}, kind model.Kind) model.Value {
	if raw == nil {
		return model.Missing()
	}

	switch kind {
	case model.KindNumeric:
		switch v := raw.(type) {
		case int64:
			return model.Number(float64(v))
		case float64:
			return model.FromFloat(v)
		case []byte:
			return model.ParseNumber(string(v))
		case string:
			return model.ParseNumber(v)
		}
		return model.Missing()
	case model.KindTemporal:
		switch v := raw.(type) {
		case time.Time:
			return model.Timestamp(v)
		case []byte:
			return model.AsTimestamp(model.Text(string(v)))
		case string:
			return model.AsTimestamp(model.Text(v))
		}
		return model.Missing()
	case model.KindText:
		return model.Text(rawString(raw))
	default:
		return model.Other(rawString(raw))
	}
}

func rawString(raw interface{}) string {
	switch v := raw.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}

// quoteIdent double-quotes an identifier for PostgreSQL and Snowflake.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// filterTables keeps the allowed tables, in the order they were listed.
// An empty allow-list keeps everything.
func filterTables(names, allowed []string, logger *zap.Logger) []string {
	if len(allowed) == 0 {
		return names
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	want := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		want[a] = true
		if !present[a] {
			logger.Warn("Requested table not found", zap.String("table", a))
		}
	}

	var out []string
	for _, n := range names {
		if want[n] {
			out = append(out, n)
		}
	}
	return out
}
