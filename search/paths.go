package search

import "path/filepath"

// resolveModulePath turns a require() argument (always relative — "./foo"
// or "../foo") into a file path relative to the file that required it,
// appending a ".js" extension when the argument has none, then
// canonicalizing the result.
func resolveModulePath(fromFile, relative string) (string, error) {
	joined := filepath.Join(filepath.Dir(fromFile), relative)
	if filepath.Ext(joined) == "" {
		joined += ".js"
	}
	return filepath.Abs(joined)
}
