package walk_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/reachgrep/internal/walk"
)

func touch(t *testing.T, dir, rel string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("function f() {}\n"), 0o644))
}

func TestExpandFindsNestedJSFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.js")
	touch(t, dir, "sub/b.js")
	touch(t, dir, "a.go")

	files, err := walk.Expand(dir, nil)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestExpandHonorsIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.js")
	touch(t, dir, "vendor/b.js")

	files, err := walk.Expand(dir, []string{"vendor/**"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.js", filepath.Base(files[0]))
}
