package cli

import (
	"fmt"
	"strconv"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/mcpclient"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/ui"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Connect a graph (guided)",
		Long: `Guided setup: lists the graphs the running Roam app can share, walks
through picking one, requests a token (approved inside Roam), and
saves the connection. Optionally installs the MCP entry for Claude
Code afterwards.

Requires a terminal; in scripts use ` + "`rook graph connect`" + ` instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !interactive() {
				return handleErr(roam.NewError(roam.ErrCodeValidation,
					"setup is interactive and needs a terminal").
					WithSuggestion("Use `rook graph connect <name> --nickname <nick>` for scripted setup."))
			}
			return runSetup()
		},
	}
}

func runSetup() error {
	fmt.Fprintln(stdout, ui.Header("Connect a Roam graph"))
	fmt.Fprintln(stdout, ui.Hint("The Roam desktop app must be running (unlock encrypted graphs first)."))
	fmt.Fprintln(stdout)

	graphs, err := roam.NewDiscovery(apiOptions()).ListGraphs()
	if err != nil {
		return err
	}
	if len(graphs) == 0 {
		return roam.NewError(roam.ErrCodeInternal, "Roam reported no graphs available for connection").
			WithSuggestion("Open the graph you want to connect inside Roam, then rerun `rook setup`.")
	}

	choice := pickGraph(graphs)

	nickname := promptLine("Nickname for this graph?", slug.Make(choice.Name))
	access := pickAccessLevel()

	conn, err := connectGraph(choice.Name, choice.Type, nickname, access)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, ui.Successf("Connected graph %q as %s (%s access).",
		conn.Name, ui.Nickname(conn.Nickname), conn.AccessLevel))

	offerMCPInstall()
	return nil
}

func pickGraph(graphs []roam.GraphInfo) roam.GraphInfo {
	if len(graphs) == 1 {
		fmt.Fprintf(stdout, "Found one graph: %s (%s)\n", ui.Accent.Render(graphs[0].Name), graphs[0].Type)
		return graphs[0]
	}

	fmt.Fprintln(stdout, "Available graphs:")
	for i, g := range graphs {
		fmt.Fprintf(stdout, "  %d. %s (%s)\n", i+1, ui.Accent.Render(g.Name), g.Type)
	}
	for {
		answer := promptLine("Which graph?", "1")
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(graphs) {
			return graphs[n-1]
		}
		fmt.Fprintln(stdout, ui.Warningf("Enter a number between 1 and %d.", len(graphs)))
	}
}

func pickAccessLevel() string {
	fmt.Fprintln(stdout, "Access level:")
	fmt.Fprintln(stdout, "  1. read-only   (search and read)")
	fmt.Fprintln(stdout, "  2. read-append (read plus adding new blocks)")
	fmt.Fprintln(stdout, "  3. full        (read, write, delete)")
	for {
		switch promptLine("Which level?", "3") {
		case "1":
			return roam.AccessReadOnly
		case "2":
			return roam.AccessReadAppend
		case "3":
			return roam.AccessFull
		}
		fmt.Fprintln(stdout, ui.Warning("Enter 1, 2, or 3."))
	}
}

// offerMCPInstall optionally wires `rook serve` into Claude Code. Declining
// or failing here never fails setup; the connection is already saved.
func offerMCPInstall() {
	if !promptConfirm("Install the rook MCP server for Claude Code?") {
		return
	}
	cfgPath, err := mcpclient.ConfigPath(mcpclient.ClaudeCode, "")
	if err != nil {
		fmt.Fprintln(stdout, ui.Warningf("Could not locate the Claude Code config: %v", err))
		return
	}
	entry := mcpclient.BuildServerEntry("", configDirFlag)
	result, err := mcpclient.Install(cfgPath, entry)
	if err != nil {
		fmt.Fprintln(stdout, ui.Warningf("Could not update %s: %v", cfgPath, err))
		return
	}
	fmt.Fprintln(stdout, ui.Successf("MCP entry %s in %s.", result, cfgPath))
}
