package scanner

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"data-audit/internal/model"
)

// FileWalker finds data files under a directory and feeds them to a channel
type FileWalker struct {
	Extensions map[string]struct{}
	Excludes   []string
	// Recursive descends into sub-directories. Table names come from file
	// base names, so nested files with the same name collide.
	Recursive bool
}

func NewFileWalker(exts []string, excludes []string) *FileWalker {
	e := make(map[string]struct{})
	for _, ext := range exts {
		e[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &FileWalker{
		Extensions: e,
		Excludes:   excludes,
	}
}

// Walk starts the traversal and returns a channel of file paths.
// It runs in a separate goroutine and closes the channel when done.
func (fw *FileWalker) Walk(ctx context.Context, root string) (<-chan string, <-chan error) {
	paths := make(chan string, 100)
	errs := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errs)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if d.IsDir() {
				if path == root {
					return nil
				}
				if !fw.Recursive || fw.excluded(root, path) || strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}

			if fw.excluded(root, path) || strings.HasPrefix(d.Name(), ".") {
				return nil
			}

			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			if _, ok := fw.Extensions[ext]; ok {
				select {
				case paths <- path:
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			return nil
		})

		if err != nil {
			errs <- err
		}
	}()

	return paths, errs
}

// excluded matches each pattern against the path relative to the walk root
// and against each of its components. The root itself is never matched.
func (fw *FileWalker) excluded(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		rel = filepath.Base(p)
	}
	rel = filepath.ToSlash(rel)
	parts := strings.Split(rel, "/")

	for _, exclude := range fw.Excludes {
		if matched, _ := path.Match(exclude, rel); matched {
			return true
		}
		for _, part := range parts {
			if matched, _ := path.Match(exclude, part); matched {
				return true
			}
		}
	}
	return false
}

type LoadResult struct {
	File  string
	Table *model.Table
	Error error
}

// Processor loads one file
type Processor func(path string) (*model.Table, error)

// WorkerPool manages concurrent loading
type WorkerPool struct {
	Concurrency int
	Processor   Processor
}

func NewWorkerPool(concurrency int, proc Processor) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &WorkerPool{
		Concurrency: concurrency,
		Processor:   proc,
	}
}

func (wp *WorkerPool) Start(ctx context.Context, paths <-chan string) <-chan LoadResult {
	results := make(chan LoadResult)
	var wg sync.WaitGroup

	for i := 0; i < wp.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				select {
				case <-ctx.Done():
					return
				default:
					table, err := wp.Processor(path)
					// Failed loads are sent too; the caller decides whether they are fatal
					select {
					case results <- LoadResult{File: path, Table: table, Error: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
