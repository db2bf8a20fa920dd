// Package cli implements the rook command-line interface. Every content
// operation routes through the shared tool registry, so the CLI and the MCP
// server expose exactly the same behavior.
package cli

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/ui"
)

// Global flags, bound fresh on every NewRootCmd.
var (
	graphFlag     string // graph nickname or name, feeds the router
	jsonOutput    bool
	configDirFlag string // override ~/.rook (tests, scripts)
)

// prefs is loaded by the persistent pre-run; commands running before it
// (help, completion) see defaults.
var prefs = &config.Preferences{}

// Output streams, swapped by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

// apiOptions builds the client options for one call. Tests swap this to
// inject a scripted transport.
var apiOptions = func() roam.Options {
	return roam.Options{Port: prefs.API.Port}
}

// NewRootCmd builds the full command tree. Constructing it fresh per
// execution resets all flag state, which matters for tests that run several
// commands in one process.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rook",
		Short: "Rook - a Roam Research companion",
		Long: `Rook drives the Roam Research desktop app through its local API:
search, read, and edit pages and blocks from the terminal or from an
LLM agent via MCP.

Connect a graph once with ` + "`rook setup`" + `; every command then takes an
optional --graph to pick between connected graphs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			prefs = config.LoadPreferences()
			ui.ConfigureTheme(prefs.UI.Accent)
			ui.ConfigureMarkdownCodeTheme(prefs.UI.CodeTheme)
		},
	}

	root.PersistentFlags().StringVarP(&graphFlag, "graph", "g", "", "Graph to use (nickname or name)")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
	root.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "Override the rook config directory (default ~/.rook)")

	addOperationCommands(root)
	root.AddCommand(
		newGraphCmd(),
		newSetupCmd(),
		newApplyCmd(),
		newServeCmd(),
		newMCPCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI. A non-nil return means the process should exit
// non-zero; everything user-facing has already been printed.
func Execute() error {
	err := NewRootCmd().Execute()
	if err == nil {
		return nil
	}
	if !errors.Is(err, errReported) {
		printHumanError(err)
	}
	return err
}

// openStore resolves the connection store for this invocation.
func openStore() (*config.Store, error) {
	return config.DefaultStore(configDirFlag)
}
