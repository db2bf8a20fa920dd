package cli

import (
	"fmt"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/ui"
)

// graphRow is the JSON shape of one connection in listings. Tokens never
// appear in command output.
type graphRow struct {
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	AccessLevel string `json:"accessLevel,omitempty"`
	TokenStatus string `json:"tokenStatus,omitempty"`
}

func rowFor(conn config.Connection) graphRow {
	return graphRow{
		Nickname:    conn.Nickname,
		Name:        conn.Name,
		Type:        conn.Type,
		AccessLevel: conn.AccessLevel,
		TokenStatus: conn.LastKnownTokenStatus,
	}
}

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Manage graph connections",
		Long: `Manage the graphs rook is connected to.

Connections live in the rook config directory (default ~/.rook) with
one token per graph. Use ` + "`rook setup`" + ` for the guided flow, or
` + "`rook graph connect`" + ` to add a connection non-interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newGraphListCmd(),
		newGraphStatusCmd(),
		newGraphRemoveCmd(),
		newGraphConnectCmd(),
	)
	return cmd
}

func newGraphListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connected graphs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return handleErr(err)
			}
			conns, err := store.Load()
			if err != nil && roam.CodeOf(err) != roam.ErrCodeConfigNotFound {
				return handleErr(err)
			}

			rows := make([]graphRow, 0, len(conns))
			for _, conn := range conns {
				rows = append(rows, rowFor(conn))
			}

			if jsonOutput {
				outputSuccess(map[string]any{"graphs": rows})
				return nil
			}
			if len(rows) == 0 {
				fmt.Fprintln(stdout, "No graphs connected.")
				fmt.Fprintln(stdout, ui.Hint("Run `rook setup` to connect your first graph."))
				return nil
			}
			printGraphTable(rows)
			return nil
		},
	}
}

func newGraphStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check token status for connected graphs",
		Long: `Probes every connection's token against the running Roam app and
records the result. The probe is best-effort: when Roam is closed or
the check is inconclusive the status reads "unknown" and nothing is
recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return handleErr(err)
			}
			conns, err := store.Load()
			if err != nil {
				return handleErr(err)
			}

			type statusRow struct {
				graphRow
				Probed string `json:"probed"`
			}
			rows := make([]statusRow, 0, len(conns))
			for _, conn := range conns {
				probe := roam.NewClient(conn.Graph(), apiOptions()).TokenInfo()
				// Unknown is a probe outcome, never a stored status.
				if probe.Status != roam.TokenUnknown {
					_, err := store.UpdateStatus(conn.Nickname, config.StatusUpdate{
						TokenStatus: probe.Status,
						AccessLevel: probe.AccessLevel,
					})
					if err != nil {
						return handleErr(err)
					}
					conn.LastKnownTokenStatus = probe.Status
					if probe.AccessLevel != "" {
						conn.AccessLevel = probe.AccessLevel
					}
				}
				rows = append(rows, statusRow{graphRow: rowFor(conn), Probed: probe.Status})
			}

			if jsonOutput {
				outputSuccess(map[string]any{"graphs": rows})
				return nil
			}
			tbl := ui.NewTable(5)
			tbl.Header("NICKNAME", "NAME", "TYPE", "ACCESS", "TOKEN")
			for _, row := range rows {
				tbl.AddRow(row.Nickname, row.Name, row.Type, row.AccessLevel, row.Probed)
			}
			fmt.Fprint(stdout, tbl.String())
			return nil
		},
	}
}

func newGraphRemoveCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "remove <nickname>",
		Short: "Remove a graph connection",
		Long: `Removes a connection and its stored token. The graph itself is
untouched; reconnecting later issues a fresh token.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nickname := args[0]
			store, err := openStore()
			if err != nil {
				return handleErr(err)
			}

			if !force && !jsonOutput {
				if !promptConfirm(fmt.Sprintf("Remove connection %q and its token?", nickname)) {
					fmt.Fprintln(stdout, "Cancelled.")
					return nil
				}
			}

			removed, err := store.Remove(nickname)
			if err != nil {
				return handleErr(err)
			}
			if !removed {
				return handleErr(roam.Errorf(roam.ErrCodeGraphNotConfigured,
					"no connection has the nickname %q", nickname).
					WithSuggestion("Run `rook graph list` to see connected graphs."))
			}

			if jsonOutput {
				outputSuccess(map[string]any{"removed": true, "nickname": nickname})
				return nil
			}
			fmt.Fprintln(stdout, ui.Successf("Removed connection %q.", nickname))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func newGraphConnectCmd() *cobra.Command {
	var (
		graphType string
		nickname  string
		access    string
	)
	cmd := &cobra.Command{
		Use:   "connect <graph-name>",
		Short: "Connect a graph non-interactively",
		Long: `Requests a token for the named graph and saves the connection.

Roam shows an approval prompt for the request; the command waits until
the user approves or denies it in the app. For the guided flow use
` + "`rook setup`" + ` instead.

Examples:
  rook graph connect work-graph --nickname work
  rook graph connect private-notes --type offline --access read-append`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if nickname == "" {
				nickname = slug.Make(name)
			}
			conn, err := connectGraph(name, graphType, nickname, access)
			if err != nil {
				return handleErr(err)
			}

			if jsonOutput {
				outputSuccess(map[string]any{"graph": rowFor(*conn)})
				return nil
			}
			fmt.Fprintln(stdout, ui.Successf("Connected graph %q as %s (%s access).",
				conn.Name, ui.Nickname(conn.Nickname), conn.AccessLevel))
			return nil
		},
	}
	cmd.Flags().StringVar(&graphType, "type", roam.GraphHosted, "Graph type: hosted or offline")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname for the connection (default: slug of the graph name)")
	cmd.Flags().StringVar(&access, "access", roam.AccessFull, "Access level: read-only, read-append, or full")
	return cmd
}

// connectGraph runs the token exchange and saves the connection. Shared by
// `graph connect` and the setup wizard.
func connectGraph(name, graphType, nickname, access string) (*config.Connection, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}

	spinner := ui.NewSpinner(fmt.Sprintf("Requesting access to %q - approve the prompt in Roam", name))
	spinner.Start()
	token, err := roam.NewDiscovery(apiOptions()).RequestToken(name, graphType, access)
	spinner.Stop()
	if err != nil {
		return nil, err
	}

	conn := config.Connection{
		Name:                 name,
		Type:                 graphType,
		Token:                token,
		Nickname:             nickname,
		AccessLevel:          access,
		LastKnownTokenStatus: roam.TokenActive,
	}
	if err := store.Save(conn); err != nil {
		return nil, err
	}
	return &conn, nil
}

func printGraphTable(rows []graphRow) {
	tbl := ui.NewTable(5)
	tbl.Header("NICKNAME", "NAME", "TYPE", "ACCESS", "TOKEN")
	for _, row := range rows {
		tbl.AddRow(row.Nickname, row.Name, row.Type, row.AccessLevel, row.TokenStatus)
	}
	fmt.Fprint(stdout, tbl.String())
}
