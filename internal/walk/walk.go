// Package walk implements entry directory expansion: turning a directory
// positional argument into the list of .js files a search should run
// against, one at a time, skipping anything matched by an ignore
// pattern. Grounded on the teacher's doublestar-based
// ast.shouldIncludeFile.
package walk

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/flanksource/commons/logger"
)

// Expand returns the sorted list of .js files under root (root itself if
// it is already a file), excluding any whose path - relative to root, or
// by basename - matches one of the ignore glob patterns.
func Expand(root string, ignore []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	root = abs

	if stat, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	} else if !stat.IsDir() {
		if isIgnored(filepath.Dir(root), root, ignore) {
			return nil, nil
		}
		return []string{root}, nil
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(root, "**", "*.js"))
	if err != nil {
		return nil, fmt.Errorf("expanding %s: %w", root, err)
	}

	var files []string
	for _, path := range matches {
		if isIgnored(root, path, ignore) {
			logger.Debugf("walk: ignoring %s", path)
			continue
		}
		files = append(files, path)
	}
	logger.Debugf("walk: expanded %s to %d files", root, len(files))
	return files, nil
}

func isIgnored(root, path string, ignore []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	base := filepath.Base(path)

	for _, pattern := range ignore {
		if match, err := doublestar.Match(pattern, rel); err == nil && match {
			return true
		}
		if match, err := doublestar.Match(pattern, base); err == nil && match {
			return true
		}
	}
	return false
}
