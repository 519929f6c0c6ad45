package legacy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flanksource/reachgrep/legacy"
)

func TestSearcherReportsPerFileMatchCounts(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.js", "function foo() {\n  obj.x = 1;\n  obj.y = 2;\n}\n")
	write(t, dir, "b.js", "function bar() {\n  obj.z = 3;\n}\n")

	ix := legacy.NewIndexer()
	require.NoError(t, ix.Index(dir))

	searcher := legacy.NewSearcher(ix)
	matches, counts := searcher.Search("obj.")

	assert.Len(t, matches, 3)
	assert.Equal(t, 2, counts[dir+"/a.js"])
	assert.Equal(t, 1, counts[dir+"/b.js"])
}
