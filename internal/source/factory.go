package source

import (
	"context"
	"fmt"

	"data-audit/internal/config"
	"data-audit/internal/model"
)

// New creates the source selected by cfg.Source.
func New(ctx context.Context, cfg *config.Config) (model.Source, error) {
	switch cfg.Source {
	case config.SourcePostgres:
		pg := cfg.Postgres
		return NewSQLSource(ctx, "postgres", pg.ConnectionString(), pg.Schema, cfg.Tables, pg.QueryTimeout)
	case config.SourceSnowflake:
		sf := cfg.Snowflake
		dsn, err := sf.DSN()
		if err != nil {
			return nil, fmt.Errorf("snowflake DSN: %w", err)
		}
		return NewSQLSource(ctx, "snowflake", dsn, sf.Schema, cfg.Tables, sf.QueryTimeout)
	case config.SourceDir:
		d := cfg.Dir
		return NewDirSource(d.Path, d.SchemaFile, d.Excludes, d.Recursive, cfg.Tables, cfg.Workers), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, cfg.Source)
	}
}
