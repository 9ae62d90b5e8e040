/*
Package batch parses multiple proto3 source files concurrently, bounding
how many run at once with a weighted semaphore and aggregating the first
failure with an errgroup. The underlying parser is already pure and
synchronous per file, so all batch adds is the orchestration: the files
themselves are read and parsed independently, with no shared mutable state.
*/
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/protolang-go/protoparse/ast"
	"github.com/protolang-go/protoparse/parser"
)

// Result pairs a path with the outcome of parsing it.
type Result struct {
	Path string
	File *ast.File
	Err  error
}

// ReadFileFunc loads the contents of path. Tests substitute an in-memory
// implementation; ParseFiles defaults to os.ReadFile.
type ReadFileFunc func(path string) ([]byte, error)

// ParseFiles parses every path in paths, running up to concurrency parses
// at once. If concurrency is non-positive, it defaults to the number of
// available CPUs. It returns one *ast.File per path, in the same order as
// paths, and the first error encountered across all files (via errgroup),
// or nil if every file parsed cleanly. The ctx controls early cancellation:
// once any file fails, or ctx is itself cancelled, outstanding parses are
// abandoned as soon as they next check in.
func ParseFiles(ctx context.Context, paths []string, concurrency int) ([]*ast.File, error) {
	return parseFiles(ctx, paths, concurrency, os.ReadFile, slog.Default())
}

// ParseFilesWithLogger is ParseFiles with an explicit logger and file
// reader, for tests and callers that don't read from the OS filesystem.
func ParseFilesWithLogger(ctx context.Context, paths []string, concurrency int, read ReadFileFunc, logger *slog.Logger) ([]*ast.File, error) {
	return parseFiles(ctx, paths, concurrency, read, logger)
}

func parseFiles(ctx context.Context, paths []string, concurrency int, read ReadFileFunc, logger *slog.Logger) ([]*ast.File, error) {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	results := make([]*ast.File, len(paths))
	sem := semaphore.NewWeighted(int64(concurrency))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				return fmt.Errorf("batch: acquiring slot for %s: %w", path, err)
			}
			defer sem.Release(1)

			logger.Debug("parsing file", "path", path)
			src, err := read(path)
			if err != nil {
				return fmt.Errorf("batch: reading %s: %w", path, err)
			}
			f, err := parser.Parse(string(src))
			if err != nil {
				logger.Warn("parse failed", "path", path, "error", err)
				return fmt.Errorf("batch: parsing %s: %w", path, err)
			}
			results[i] = f
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParseFilesCollectingErrors is like ParseFiles but runs every parse to
// completion even after some fail, returning one Result per path instead of
// bailing out on the first error.
func ParseFilesCollectingErrors(ctx context.Context, paths []string, concurrency int) []Result {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	logger := slog.Default()

	results := make([]Result, len(paths))
	sem := semaphore.NewWeighted(int64(concurrency))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path
		results[i].Path = path
		group.Go(func() error {
			if err := sem.Acquire(groupCtx, 1); err != nil {
				results[i].Err = err
				return nil
			}
			defer sem.Release(1)

			src, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("read failed", "path", path, "error", err)
				results[i].Err = err
				return nil
			}
			f, err := parser.Parse(string(src))
			if err != nil {
				logger.Warn("parse failed", "path", path, "error", err)
				results[i].Err = err
				return nil
			}
			results[i].File = f
			return nil
		})
	}
	_ = group.Wait() // every task reports its own error into results; nothing to propagate
	return results
}
