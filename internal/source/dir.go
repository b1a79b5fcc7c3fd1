package source

import (
	"context"
	"fmt"
	"sort"

	"data-audit/internal/loader"
	"data-audit/internal/model"
	"data-audit/internal/parser"
	"data-audit/internal/scanner"

	"go.uber.org/zap"
)

// DirSource reads a directory of delimited files, one table per file.
type DirSource struct {
	Path       string
	SchemaFile string
	Excludes   []string
	Recursive  bool
	Tables     []string
	Workers    int

	logger *zap.Logger
}

func NewDirSource(path, schemaFile string, excludes []string, recursive bool, tables []string, workers int) *DirSource {
	return &DirSource{
		Path:       path,
		SchemaFile: schemaFile,
		Excludes:   excludes,
		Recursive:  recursive,
		Tables:     tables,
		Workers:    workers,
		logger:     zap.L().Named("dir-source"),
	}
}

func (s *DirSource) Close() error { return nil }

// Load reads every .csv and .tsv file. Any unreadable file fails the load.
func (s *DirSource) Load(ctx context.Context) (model.Dataset, error) {
	var schema parser.Schema
	if s.SchemaFile != "" {
		var err error
		s.logger.Info("Loading schema", zap.String("file", s.SchemaFile))
		schema, err = parser.NewSQLParser().LoadSchema(s.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		s.logger.Info("Schema loaded", zap.Int("tables", len(schema)))
	}

	mgr := loader.NewManager()
	mgr.Register("csv", loader.NewCSVLoader(schema))
	mgr.Register("tsv", loader.NewTSVLoader(schema))

	walker := scanner.NewFileWalker(mgr.Extensions(), s.Excludes)
	walker.Recursive = s.Recursive

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	paths, errs := walker.Walk(ctx, s.Path)
	results := scanner.NewWorkerPool(s.Workers, mgr.Load).Start(ctx, paths)

	ds, err := s.collect(ctx, results, errs)
	if err != nil {
		return nil, err
	}

	if len(s.Tables) > 0 {
		kept := make(model.Dataset, len(s.Tables))
		for _, name := range filterTables(ds.Names(), s.Tables, s.logger) {
			kept[name] = ds[name]
		}
		ds = kept
	}
	if len(ds) == 0 {
		return nil, fmt.Errorf("directory %s: %w", s.Path, ErrNoTables)
	}

	s.logger.Info("All tables loaded", zap.Int("tables", len(ds)))
	return ds, nil
}

// collect drains the pool. Workers stop without a result once ctx is done, so
// a cancelled context means the dataset is incomplete.
func (s *DirSource) collect(ctx context.Context, results <-chan scanner.LoadResult, errs <-chan error) (model.Dataset, error) {
	ds := make(model.Dataset)
	files := make(map[string]string)
	var loadErrs []string
	for res := range results {
		if res.Error != nil {
			loadErrs = append(loadErrs, fmt.Sprintf("%s: %v", res.File, res.Error))
			continue
		}
		if prev, dup := files[res.Table.Name]; dup {
			loadErrs = append(loadErrs, fmt.Sprintf("%s: table %s already loaded from %s", res.File, res.Table.Name, prev))
			continue
		}
		files[res.Table.Name] = res.File
		ds[res.Table.Name] = res.Table
		s.logger.Debug("Table loaded",
			zap.String("table", res.Table.Name),
			zap.String("file", res.File),
			zap.Int("rows", len(res.Table.Rows)))
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("walk %s: %w", s.Path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s interrupted: %w", s.Path, err)
	}
	if len(loadErrs) > 0 {
		sort.Strings(loadErrs)
		return nil, fmt.Errorf("failed to load %d file(s): %v", len(loadErrs), loadErrs)
	}
	return ds, nil
}
