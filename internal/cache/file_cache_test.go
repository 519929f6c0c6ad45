package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/reachgrep/internal/cache"
	"github.com/flanksource/reachgrep/jsast"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCacheParsesOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "function greet() {\n  hello()\n}\n")

	fc := cache.NewFileCache(nil)
	f1, err := fc.Get(path)
	require.NoError(t, err)
	f2, err := fc.Get(path)
	require.NoError(t, err)

	assert.Same(t, f1, f2, "repeated Get for the same path must return the cached entry")
}

func TestFileCacheRecordsLinesOnce(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.js", "function greet() {\n  hello()\n}\n")

	fc := cache.NewFileCache(nil)
	f, err := fc.Get(path)
	require.NoError(t, err)

	assert.False(t, f.IsRecorded(1))
	f.MarkRecorded(1)
	assert.True(t, f.IsRecorded(1))
}

func TestFileCachePropagatesParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.js", "function greet() {\n  hello(\n")

	fc := cache.NewFileCache(nil)
	_, err := fc.Get(path)
	assert.Error(t, err)
}

func TestPersistedCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reachgrep-cache.db")

	persisted, err := cache.OpenPersistedCache(dbPath)
	require.NoError(t, err)
	defer persisted.Close()

	path := writeFile(t, dir, "a.js", "function greet() {\n  hello()\n}\n")

	fc1 := cache.NewFileCache(persisted)
	f1, err := fc1.Get(path)
	require.NoError(t, err)

	// A fresh FileCache over the same persisted store should recover the
	// same AST shape without needing to re-parse.
	fc2 := cache.NewFileCache(persisted)
	f2, err := fc2.Get(path)
	require.NoError(t, err)

	assert.Equal(t, len(f1.AST.Statements), len(f2.AST.Statements))
}

func TestPersistedCacheInvalidatesOnContentChange(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "reachgrep-cache.db")

	persisted, err := cache.OpenPersistedCache(dbPath)
	require.NoError(t, err)
	defer persisted.Close()

	path := writeFile(t, dir, "a.js", "function greet() {\n  hello()\n}\n")
	fc1 := cache.NewFileCache(persisted)
	_, err = fc1.Get(path)
	require.NoError(t, err)

	writeFile(t, dir, "a.js", "function greet() {\n  hello()\n  goodbye()\n}\n")
	fc2 := cache.NewFileCache(persisted)
	f2, err := fc2.Get(path)
	require.NoError(t, err)

	fn, ok := f2.AST.Statements[0].(*jsast.FunctionStatement)
	require.True(t, ok)
	assert.Len(t, fn.Body.Statements, 2, "changed content must be re-parsed, not served from the stale entry")
}
