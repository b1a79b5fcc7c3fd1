package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"data-audit/internal/model"
)

func TestFileWalker_Walk(t *testing.T) {
	rootDir := t.TempDir()

	files := []string{
		"trades.csv",
		"users.CSV",
		"positions.tsv",
		"notes.txt",
		".hidden.csv",
		"archive/old.csv",
		"nested/deals.csv",
	}

	for _, f := range files {
		path := filepath.Join(rootDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("a\n1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name      string
		exts      []string
		excludes  []string
		recursive bool
		want      []string
	}{
		{
			name: "Top level CSV files",
			exts: []string{"csv"},
			want: []string{"trades.csv", "users.CSV"},
		},
		{
			name: "CSV and TSV",
			exts: []string{"csv", ".tsv"},
			want: []string{"positions.tsv", "trades.csv", "users.CSV"},
		},
		{
			name:      "Recursive with exclude",
			exts:      []string{"csv"},
			excludes:  []string{"archive", "users.*"},
			recursive: true,
			want:      []string{"nested/deals.csv", "trades.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			walker := NewFileWalker(tt.exts, tt.excludes)
			walker.Recursive = tt.recursive

			paths, errs := walker.Walk(context.Background(), rootDir)

			var got []string
			for p := range paths {
				rel, err := filepath.Rel(rootDir, p)
				if err != nil {
					t.Fatalf("Rel error: %v", err)
				}
				got = append(got, filepath.ToSlash(rel))
			}
			for err := range errs {
				t.Errorf("Walk() error: %v", err)
			}

			sort.Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s: Walk() got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileWalker_ExcludeMatchesComponents(t *testing.T) {
	rootDir := filepath.Join(t.TempDir(), "site.github.io")
	for _, f := range []string{"trades.csv", "pages.github/users.csv", "repo.git/old.csv"} {
		path := filepath.Join(rootDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("a\n1\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	walker := NewFileWalker([]string{"csv"}, []string{".git", "*.git"})
	walker.Recursive = true

	paths, errs := walker.Walk(context.Background(), rootDir)
	var got []string
	for p := range paths {
		rel, _ := filepath.Rel(rootDir, p)
		got = append(got, filepath.ToSlash(rel))
	}
	for err := range errs {
		t.Errorf("Walk() error: %v", err)
	}

	sort.Strings(got)
	want := []string{"pages.github/users.csv", "trades.csv"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Walk() got %v, want %v", got, want)
	}
}

func TestFileWalker_MissingRoot(t *testing.T) {
	paths, errs := NewFileWalker([]string{"csv"}, nil).Walk(context.Background(), filepath.Join(t.TempDir(), "nope"))
	for range paths {
	}
	if err := <-errs; err == nil {
		t.Errorf("expected error for missing root")
	}
}

func TestWorkerPool_Start(t *testing.T) {
	mockProc := func(path string) (*model.Table, error) {
		if path == "bad" {
			return nil, errors.New("unreadable")
		}
		return &model.Table{Name: path}, nil
	}

	pool := NewWorkerPool(2, mockProc)
	paths := make(chan string, 5)

	for _, p := range []string{"a", "b", "bad", "c", "d"} {
		paths <- p
	}
	close(paths)

	results := pool.Start(context.Background(), paths)

	count, failed := 0, 0
	for res := range results {
		if res.Error != nil {
			failed++
			continue
		}
		if res.Table == nil || res.Table.Name != res.File {
			t.Errorf("unexpected result %+v", res)
		}
		count++
	}

	if count != 4 || failed != 1 {
		t.Errorf("Expected 4 tables and 1 failure, got %d and %d", count, failed)
	}
}
