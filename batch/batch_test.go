package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fakeReader(files map[string]string) ReadFileFunc {
	return func(path string) ([]byte, error) {
		src, ok := files[path]
		if !ok {
			return nil, fmt.Errorf("no such file: %s", path)
		}
		return []byte(src), nil
	}
}

func TestParseFilesSucceedsForAllValidFiles(t *testing.T) {
	files := map[string]string{
		"a.proto": `message A { string name = 1; }`,
		"b.proto": `message B { int32 id = 1; }`,
		"c.proto": `message C { bool ok = 1; }`,
	}
	paths := []string{"a.proto", "b.proto", "c.proto"}

	results, err := ParseFilesWithLogger(context.Background(), paths, 2, fakeReader(files), discardLogger())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, path := range paths {
		require.NotNil(t, results[i], "result for %s", path)
		require.Len(t, results[i].Messages, 1)
	}
}

func TestParseFilesReturnsFirstError(t *testing.T) {
	files := map[string]string{
		"good.proto": `message Good { string name = 1; }`,
		"bad.proto":  `message Bad { string name = 1; string name = 2; }`,
	}
	paths := []string{"good.proto", "bad.proto"}

	_, err := ParseFilesWithLogger(context.Background(), paths, 2, fakeReader(files), discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.proto")
}

func TestParseFilesDefaultsConcurrency(t *testing.T) {
	files := map[string]string{"a.proto": `message A {}`}
	results, err := ParseFilesWithLogger(context.Background(), []string{"a.proto"}, 0, fakeReader(files), discardLogger())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Messages[0].Name)
}

func TestParseFilesCollectingErrorsRunsAllDespiteFailures(t *testing.T) {
	paths := []string{"/nonexistent/one.proto", "/nonexistent/two.proto"}
	results := ParseFilesCollectingErrors(context.Background(), paths, 2)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Error(t, r.Err)
		assert.Nil(t, r.File)
	}
}
