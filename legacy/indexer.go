// Package legacy is the tool's original shape: a line-by-line regex
// indexer and a substring searcher, with no parsing and no call-graph
// awareness. It predates the AST-based core and is kept only as a
// fallback for source that won't parse at all, exposed via
// `reachgrep search --legacy`.
package legacy

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/flanksource/commons/logger"
)

// functionDeclRe and arrowDeclRe recognize the two function-declaration
// shapes this tool's core parser also understands, by pattern alone.
var (
	functionDeclRe = regexp.MustCompile(`^\s*function\s+([a-zA-Z_$][0-9a-zA-Z_$]*)\s*\(`)
	arrowDeclRe    = regexp.MustCompile(`^\s*(?:const|let|var)\s+([a-zA-Z_$][0-9a-zA-Z_$]*)\s+=\s+\(`)
)

type funcDecl struct {
	name string
	line int // 1-based
}

type fileIndex struct {
	lines []string
	funcs []funcDecl // ascending by line
}

// enclosingFunction returns the name of the last function declaration
// recognized at or before line (1-based), or "" if none precedes it.
func (f *fileIndex) enclosingFunction(line int) string {
	name := ""
	for _, fn := range f.funcs {
		if fn.line > line {
			break
		}
		name = fn.name
	}
	return name
}

// Indexer walks a directory tree once, storing every matching file's
// lines and recognizable function declarations.
type Indexer struct {
	files map[string]*fileIndex
	order []string // insertion order, for deterministic iteration
}

func NewIndexer() *Indexer {
	return &Indexer{files: make(map[string]*fileIndex)}
}

func skipDir(name string) bool {
	return name == "node_modules" || name == ".git" || strings.HasPrefix(name, ".")
}

// skipFile mirrors the original tool's filter: only plain ".js" files,
// never dot-prefixed, never with "test" anywhere in the name.
func skipFile(name string) bool {
	return !strings.HasSuffix(name, ".js") || strings.HasPrefix(name, ".") || strings.Contains(name, "test")
}

// Index walks root, recording the content and recognized function
// declarations of every file skipFile lets through.
func (ix *Indexer) Index(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFile(d.Name()) {
			return nil
		}
		return ix.indexFile(path)
	})
}

func (ix *Indexer) indexFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("legacy: reading %s: %w", path, err)
	}
	defer f.Close()

	file := &fileIndex{}
	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Text()
		file.lines = append(file.lines, line)

		if m := functionDeclRe.FindStringSubmatch(line); m != nil {
			file.funcs = append(file.funcs, funcDecl{name: m[1], line: lineNum})
		} else if m := arrowDeclRe.FindStringSubmatch(line); m != nil {
			file.funcs = append(file.funcs, funcDecl{name: m[1], line: lineNum})
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("legacy: scanning %s: %w", path, err)
	}

	ix.files[path] = file
	ix.order = append(ix.order, path)
	logger.Debugf("legacy: indexed %s (%d lines, %d functions)", path, len(file.lines), len(file.funcs))
	return nil
}
