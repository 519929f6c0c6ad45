package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/reachgrep/internal/cache"
	"github.com/flanksource/reachgrep/internal/colorout"
	"github.com/flanksource/reachgrep/internal/walk"
	"github.com/flanksource/reachgrep/legacy"
	"github.com/flanksource/reachgrep/search"
)

var (
	functionName string
	useColor     bool
	useLegacy    bool
	cacheDBPath  string
	ignoreGlobs  []string
)

// reportLine is one printed match, formatted by clicky, with plain
// "<file>:<line>: <text>" lines as the fallback when clicky.Format
// returns an error.
type reportLine struct {
	File string `json:"file" pretty:"label=File,color=cyan"`
	Line int    `json:"line" pretty:"label=Line,style=text-gray-600"`
	Text string `json:"text" pretty:"label=Text"`
}

var searchCmd = &cobra.Command{
	Use:   "search <needle> <entry-file>",
	Short: "Search source reachable by call graph from an entry point",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		needle, entry := args[0], args[1]

		ignore := ignoreGlobs
		if !cmd.Flags().Changed("ignore") && cfg != nil {
			ignore = cfg.Ignore
		}
		if !cmd.Flags().Changed("cache-db") && cfg != nil {
			cacheDBPath = cfg.CacheDB
		}
		if !cmd.Flags().Changed("color") && cfg != nil {
			useColor = cfg.Color
		}
		if !cmd.Flags().Changed("legacy") && cfg != nil {
			useLegacy = cfg.Legacy
		}

		if useLegacy {
			return runLegacySearch(needle, entry, ignore)
		}
		return runSearch(needle, entry, functionName, ignore)
	},
}

func init() {
	searchCmd.Flags().StringVarP(&functionName, "function-name", "n", "", "top-level function to start the search from")
	searchCmd.Flags().BoolVar(&useColor, "color", false, "highlight the needle and line numbers in the output")
	searchCmd.Flags().BoolVar(&useLegacy, "legacy", false, "use the line-by-line regex searcher instead of the AST visitor")
	searchCmd.Flags().StringVar(&cacheDBPath, "cache-db", "", "SQLite database caching parsed ASTs across runs")
	searchCmd.Flags().StringSliceVar(&ignoreGlobs, "ignore", nil, "glob pattern to exclude when the entry is a directory (repeatable)")
}

func runSearch(needle, entry, fnName string, ignore []string) error {
	files, err := walk.Expand(entry, ignore)
	if err != nil {
		return err
	}
	// A directory entry runs one search per discovered file, each from the
	// top of that file.
	if info, statErr := os.Stat(entry); statErr == nil && info.IsDir() {
		fnName = ""
	}

	var persisted *cache.PersistedCache
	if cacheDBPath != "" {
		persisted, err = cache.OpenPersistedCache(cacheDBPath)
		if err != nil {
			return fmt.Errorf("opening cache db: %w", err)
		}
	}
	fileCache := cache.NewFileCache(persisted)

	var allMatches []search.Match
	for _, file := range files {
		logger.Debugf("searching %s", file)
		engine := search.New(needle, fileCache)
		matches, err := engine.Search(file, fnName)
		if err != nil {
			return fmt.Errorf("searching %s: %w", file, err)
		}
		allMatches = append(allMatches, matches...)
	}

	return printMatches(allMatches, needle)
}

func printMatches(matches []search.Match, needle string) error {
	if useColor {
		for _, m := range matches {
			fmt.Println(colorout.Line(m.File, m.Line+1, m.Text, needle))
		}
		return nil
	}

	lines := make([]reportLine, len(matches))
	for i, m := range matches {
		lines[i] = reportLine{File: m.File, Line: m.Line + 1, Text: m.Text}
	}

	output, err := clicky.Format(lines)
	if err != nil {
		for _, l := range lines {
			fmt.Printf("%s:%d: %s\n", l.File, l.Line, l.Text)
		}
		return nil
	}
	fmt.Print(output)
	return nil
}

func runLegacySearch(needle, entry string, ignore []string) error {
	info, err := os.Stat(entry)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", entry, err)
	}

	root := entry
	if !info.IsDir() {
		root = filepath.Dir(entry)
	}

	ix := legacy.NewIndexer()
	if err := ix.Index(root); err != nil {
		return err
	}

	searcher := legacy.NewSearcher(ix)
	matches, counts := searcher.Search(needle)

	for _, m := range matches {
		if useColor {
			fmt.Println(colorout.Line(m.File, m.Line, m.Text, needle))
		} else {
			fmt.Printf("%s:%d: %s\n", m.File, m.Line, m.Text)
		}
	}
	for file, count := range counts {
		logger.Infof("%s: %d match(es)", file, count)
	}
	return nil
}
