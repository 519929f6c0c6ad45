package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/flanksource/reachgrep/internal/config"
	"github.com/flanksource/reachgrep/parser"
	"github.com/flanksource/reachgrep/search"
)

// Exit codes the CLI branches on by error type, so a caller scripting
// against reachgrep can distinguish "the file tree wasn't readable"
// from "the source didn't parse" from any other failure.
const (
	exitUsage   = 1
	exitIOError = 2
	exitGrammar = 3
)

var (
	cfgFile    string
	debugAgent bool
	cfg        *config.Config
)

// VersionInfo represents version information with pretty formatting.
type VersionInfo struct {
	Program string `json:"program" pretty:"label=Program,style=text-blue-600 font-bold"`
	Version string `json:"version" pretty:"label=Version,color=green"`
	Commit  string `json:"commit" pretty:"label=Commit,style=text-gray-600"`
	Built   string `json:"built" pretty:"label=Built,style=text-gray-600"`
	Status  string `json:"status" pretty:"label=Status,color=green=clean,yellow=dirty"`
}

var rootCmd = &cobra.Command{
	Use:   "reachgrep",
	Short: "Call-graph-guided code search for CommonJS-style scripts",
	Long: `reachgrep greps a needle across only the source reachable, by call
graph, from a given entry point - instead of every line in every file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugAgent {
			if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
				return fmt.Errorf("starting debug agent: %w", err)
			}
			logger.Debugf("debug agent listening")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if debugAgent {
			agent.Close()
		}
	},
}

// Execute runs the root command, exiting the process on error. The exit
// code distinguishes an I/O failure (an unreadable entry file or
// require() target) from a grammar failure (an unterminated construct
// inside a production the parser had already committed to) from any
// other error, per SPEC_FULL.md §10.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var ioErr *search.IOError
		var grammarErr *parser.GrammarError
		switch {
		case errors.As(err, &ioErr):
			os.Exit(exitIOError)
		case errors.As(err, &grammarErr):
			os.Exit(exitGrammar)
		default:
			os.Exit(exitUsage)
		}
	}

	if exitCode := clicky.WaitForGlobalCompletion(); exitCode != 0 {
		os.Exit(exitCode)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .reachgrep.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugAgent, "debug-agent", false, "start a gops diagnostics agent for this run")

	clicky.BindAllFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		logger.Errorf("loading config: %v", err)
		loaded = &config.Config{}
	}
	cfg = loaded

	clicky.Flags.UseFlags()
}
