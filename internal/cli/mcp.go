package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/mcpclient"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/ui"
)

const supportedClientsHint = "Supported clients: claude-code, claude-desktop, cursor"

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage MCP client integrations",
		Long: `Install, remove, or inspect the rook MCP server entry in supported
client config files (Claude Code, Claude Desktop, Cursor).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newMCPInstallCmd(),
		newMCPRemoveCmd(),
		newMCPStatusCmd(),
		newMCPShowCmd(),
	)
	return cmd
}

func parseClient(raw string) (mcpclient.Client, error) {
	if !mcpclient.ValidClient(raw) {
		return "", roam.Errorf(roam.ErrCodeValidation, "unknown MCP client %q", raw).
			WithSuggestion(supportedClientsHint)
	}
	return mcpclient.Client(raw), nil
}

func newMCPInstallCmd() *cobra.Command {
	var clientFlag string
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Add rook to an MCP client config",
		Long: `Adds the rook serve entry to an MCP client config file.

--graph pins the server to one configured graph; omit it to let agents
pick per call.

Examples:
  rook mcp install --client claude-code
  rook mcp install --client cursor --graph work`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := parseClient(clientFlag)
			if err != nil {
				return handleErr(err)
			}
			cfgPath, err := mcpclient.ConfigPath(client, "")
			if err != nil {
				return handleErr(err)
			}

			entry := mcpclient.BuildServerEntry(graphFlag, configDirFlag)
			result, err := mcpclient.Install(cfgPath, entry)
			if err != nil {
				return handleErr(err)
			}

			if jsonOutput {
				outputSuccess(map[string]any{
					"client":      string(client),
					"config_path": cfgPath,
					"result":      result.String(),
					"entry":       entry,
				})
				return nil
			}
			fmt.Fprintln(stdout, ui.Successf("rook %s in the %s config.", result, client))
			fmt.Fprintln(stdout, ui.Hint("config: "+cfgPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&clientFlag, "client", "", "MCP client: claude-code, claude-desktop, or cursor")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newMCPRemoveCmd() *cobra.Command {
	var clientFlag string
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove rook from an MCP client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := parseClient(clientFlag)
			if err != nil {
				return handleErr(err)
			}
			cfgPath, err := mcpclient.ConfigPath(client, "")
			if err != nil {
				return handleErr(err)
			}

			removed, err := mcpclient.Remove(cfgPath)
			if err != nil {
				return handleErr(err)
			}

			if jsonOutput {
				outputSuccess(map[string]any{
					"client":      string(client),
					"config_path": cfgPath,
					"removed":     removed,
				})
				return nil
			}
			if removed {
				fmt.Fprintln(stdout, ui.Successf("Removed rook from the %s config.", client))
			} else {
				fmt.Fprintf(stdout, "rook was not configured for %s.\n", client)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clientFlag, "client", "", "MCP client: claude-code, claude-desktop, or cursor")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newMCPStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show rook's MCP entry in each client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses := make([]*mcpclient.ClientStatus, 0, len(mcpclient.AllClients()))
			for _, client := range mcpclient.AllClients() {
				cfgPath, err := mcpclient.ConfigPath(client, "")
				if err != nil {
					return handleErr(err)
				}
				status, err := mcpclient.Status(client, cfgPath)
				if err != nil {
					return handleErr(err)
				}
				statuses = append(statuses, status)
			}

			if jsonOutput {
				outputSuccess(map[string]any{"clients": statuses})
				return nil
			}
			tbl := ui.NewTable(3)
			tbl.Header("CLIENT", "INSTALLED", "CONFIG")
			for _, status := range statuses {
				installed := "no"
				if status.Installed {
					installed = "yes"
				}
				tbl.AddRow(string(status.Client), installed, status.ConfigPath)
			}
			fmt.Fprint(stdout, tbl.String())
			return nil
		},
	}
}

func newMCPShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the MCP server entry for manual configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := mcpclient.BuildServerEntry(graphFlag, configDirFlag)
			snippet := map[string]any{
				"mcpServers": map[string]any{
					"rook": entry,
				},
			}
			if jsonOutput {
				outputSuccess(snippet)
				return nil
			}
			data, err := json.MarshalIndent(snippet, "", "  ")
			if err != nil {
				return handleErr(err)
			}
			fmt.Fprintln(stdout, string(data))
			return nil
		},
	}
}
