// Package cache holds the two caches the search visitor depends on: an
// in-process FileCache (mandatory — every source file the visitor
// touches is parsed at most once per run) and an optional
// SQLite-backed PersistedCache that remembers a file's parsed AST
// across runs, keyed by its content hash.
package cache

import (
	"fmt"
	"os"
	"strings"

	"github.com/flanksource/reachgrep/jsast"
	"github.com/flanksource/reachgrep/parser"
)

// File is one source file's cached parse: its AST, its lines (for
// grepping), and the set of line numbers already emitted as a match so
// the visitor never reports the same line twice.
type File struct {
	Path          string
	AST           *jsast.Program
	Lines         []string
	linesRecorded map[int]bool
}

// IsRecorded reports whether line has already been emitted as a match.
func (f *File) IsRecorded(line int) bool {
	return f.linesRecorded[line]
}

// MarkRecorded marks line as emitted so it is never reported twice.
func (f *File) MarkRecorded(line int) {
	f.linesRecorded[line] = true
}

// Line returns the 0-based line's text, or "" if out of range — the
// visitor's grep windows can run one past the last real line when a
// node's span touches EOF.
func (f *File) Line(n int) string {
	if n < 0 || n >= len(f.Lines) {
		return ""
	}
	return f.Lines[n]
}

// FileCache loads and parses each distinct file path at most once per
// process, matching the reference visitor's own file map. It also
// consults a PersistedCache, if one is configured, to skip re-parsing
// files whose content hasn't changed since a previous run.
type FileCache struct {
	files     map[string]*File
	persisted *PersistedCache
}

// NewFileCache creates an empty FileCache. persisted may be nil, in
// which case every file is parsed fresh.
func NewFileCache(persisted *PersistedCache) *FileCache {
	return &FileCache{
		files:     make(map[string]*File),
		persisted: persisted,
	}
}

// Get returns the cached File for path, loading and parsing it first if
// this is the first time path has been requested this run.
func (c *FileCache) Get(path string) (*File, error) {
	if f, ok := c.files[path]; ok {
		return f, nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var prog *jsast.Program
	if c.persisted != nil {
		if cached, ok := c.persisted.Lookup(path, src); ok {
			prog = cached
		}
	}

	if prog == nil {
		prog, err = parser.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if c.persisted != nil {
			c.persisted.Store(path, src, prog)
		}
	}

	f := &File{
		Path:          path,
		AST:           prog,
		Lines:         strings.Split(string(src), "\n"),
		linesRecorded: make(map[int]bool),
	}
	c.files[path] = f
	return f, nil
}

// Peek returns the File for path without loading it, for callers that
// must already know it has been visited.
func (c *FileCache) Peek(path string) (*File, bool) {
	f, ok := c.files[path]
	return f, ok
}
