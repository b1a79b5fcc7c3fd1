package source

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"data-audit/internal/config"
	"data-audit/internal/model"
	"data-audit/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestToValue(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  interface{}
		kind model.Kind
		want model.Value
	}{
		{"nil", nil, model.KindNumeric, model.Missing()},
		{"int64", int64(7), model.KindNumeric, model.Number(7)},
		{"float64", 1.5, model.KindNumeric, model.Number(1.5)},
		{"numeric bytes", []byte("12.50"), model.KindNumeric, model.Number(12.5)},
		{"bad numeric", []byte("abc"), model.KindNumeric, model.Missing()},
		{"nan bytes", []byte("NaN"), model.KindNumeric, model.Missing()},
		{"nan float", math.NaN(), model.KindNumeric, model.Missing()},
		{"bool as numeric", true, model.KindNumeric, model.Missing()},
		{"time", ts, model.KindTemporal, model.Timestamp(ts)},
		{"timestamp text", "2024-03-01 12:30:00", model.KindTemporal, model.Timestamp(ts)},
		{"bad timestamp", []byte("soon"), model.KindTemporal, model.Missing()},
		{"text bytes", []byte("EURUSD"), model.KindText, model.Text("EURUSD")},
		{"text string", " x ", model.KindText, model.Text(" x ")},
		{"unknown", true, model.KindUnknown, model.Other("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := toValue(tt.raw, tt.kind)
			assert.Equal(t, tt.want.Key(), got.Key())
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.Equal(t, tt.want.Null, got.Null)
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"trades"`, quoteIdent("trades"))
	assert.Equal(t, `"odd""name"`, quoteIdent(`odd"name`))
}

func TestFilterTables(t *testing.T) {
	names := []string{"a", "b", "c"}
	logger := zap.NewNop()

	assert.Equal(t, names, filterTables(names, nil, logger))
	assert.Equal(t, []string{"a", "c"}, filterTables(names, []string{"c", "a", "z"}, logger))
	assert.Empty(t, filterTables(names, []string{"z"}, logger))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDirSource_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trades.csv", "login_hash,volume\nh1,1.5\nh2,\n")
	writeFile(t, dir, "users.tsv", "login_hash\tcountry\nh1\tDE\n")
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".hidden.csv", "a\n1\n")
	writeFile(t, dir, "nested/deep.csv", "a\n1\n")

	src := NewDirSource(dir, "", nil, false, nil, 2)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, []string{"trades", "users"}, ds.Names())

	trades := ds["trades"]
	require.Len(t, trades.Rows, 2)
	assert.Equal(t, model.KindNumeric, trades.Columns[1].Kind)
	assert.True(t, trades.Rows[1][1].Null)
	assert.Equal(t, "DE", ds["users"].Rows[0][1].Str)
}

func TestDirSource_Recursive(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "top.csv", "a\n1\n")
	writeFile(t, dir, "nested/deep.csv", "a\n1\n")
	writeFile(t, dir, "skip/other.csv", "a\n1\n")

	src := NewDirSource(dir, "", []string{"skip"}, true, nil, 1)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"deep", "top"}, ds.Names())
}

func TestDirSource_SchemaFile(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	writeFile(t, data, "trades.csv", "ticket,symbol\n100,EURUSD\n")
	schema := filepath.Join(dir, "schema.sql")
	writeFile(t, dir, "schema.sql", "CREATE TABLE trades (ticket VARCHAR(20), symbol VARCHAR(10));")

	ds, err := NewDirSource(data, schema, nil, false, nil, 1).Load(context.Background())
	require.NoError(t, err)

	// Declared as text even though the values look numeric
	assert.Equal(t, model.KindText, ds["trades"].Columns[0].Kind)
	assert.Equal(t, "100", ds["trades"].Rows[0][0].Str)
}

func TestDirSource_AllowList(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "trades.csv", "a\n1\n")
	writeFile(t, dir, "users.csv", "a\n1\n")

	ds, err := NewDirSource(dir, "", nil, false, []string{"users"}, 1).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"users"}, ds.Names())
}

func TestDirSource_Errors(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		_, err := NewDirSource(t.TempDir(), "", nil, false, nil, 1).Load(context.Background())
		assert.True(t, errors.Is(err, ErrNoTables))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewDirSource(filepath.Join(t.TempDir(), "nope"), "", nil, false, nil, 1).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("missing schema file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.csv", "a\n1\n")
		_, err := NewDirSource(dir, filepath.Join(dir, "none.sql"), nil, false, nil, 1).Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("duplicate table names", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "trades.csv", "a\n1\n")
		writeFile(t, dir, "trades.tsv", "a\n1\n")
		_, err := NewDirSource(dir, "", nil, false, nil, 1).Load(context.Background())
		assert.ErrorContains(t, err, "already loaded")
	})
}

func TestDirSource_CancelledWhileLoading(t *testing.T) {
	// One file loaded before cancellation; the walk itself finished cleanly.
	results := make(chan scanner.LoadResult, 1)
	results <- scanner.LoadResult{File: "trades.csv", Table: &model.Table{Name: "trades"}}
	close(results)
	errs := make(chan error)
	close(errs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewDirSource("exports", "", nil, false, nil, 1)
	ds, err := src.collect(ctx, results, errs)
	assert.Nil(t, ds)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestNew_UnknownSource(t *testing.T) {
	cfg := config.Default()
	cfg.Source = "mongo"

	_, err := New(context.Background(), cfg)
	assert.True(t, errors.Is(err, config.ErrUnknownSource))
}

func TestNew_Dir(t *testing.T) {
	cfg := config.Default()
	cfg.Source = config.SourceDir
	cfg.Dir.Path = t.TempDir()

	src, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &DirSource{}, src)
}
