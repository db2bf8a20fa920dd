package cli

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/tools"
)

// groupHelp descriptions for the command groups the registry declares.
var groupHelp = map[string]string{
	"page":  "Create, read, rename, and delete pages",
	"block": "Add, read, edit, move, and delete blocks",
}

// addOperationCommands generates one cobra command per registry tool,
// grouped the way the registry declares ("page create", "block add", ...).
func addOperationCommands(root *cobra.Command) {
	groups := make(map[string]*cobra.Command)
	for _, name := range tools.Names() {
		def, _ := tools.Lookup(name)
		cmd := tools.GenerateCommand(def, runTool)
		if def.Group == "" {
			root.AddCommand(cmd)
			continue
		}
		group := groups[def.Group]
		if group == nil {
			group = &cobra.Command{
				Use:   def.Group,
				Short: groupHelp[def.Group],
				Args:  cobra.NoArgs,
				RunE: func(cmd *cobra.Command, args []string) error {
					return cmd.Help()
				},
			}
			groups[def.Group] = group
			root.AddCommand(group)
		}
		group.AddCommand(cmd)
	}
}

// runTool executes one registry tool on behalf of a generated command:
// inject the --graph selector, confirm destructive operations, route, and
// print the outcome.
func runTool(name string, args map[string]any) error {
	if graphFlag != "" {
		if _, ok := args["graph"]; !ok {
			args["graph"] = graphFlag
		}
	}

	// Destructive tools confirm before routing. --force and --json skip the
	// prompt; MCP calls never pass through here.
	force, _ := args["force"].(bool)
	delete(args, "force")
	if def, ok := tools.Lookup(name); ok && def.Destructive && !force && !jsonOutput {
		if !promptConfirm(confirmMessage(def, args)) {
			fmt.Fprintln(stdout, "Cancelled.")
			return nil
		}
	}

	store, err := openStore()
	if err != nil {
		return handleErr(err)
	}

	res, err := tools.RouteToolCall(name, args, tools.RouteOptions{
		Store:  store,
		Client: apiOptions(),
	})
	if err != nil {
		return handleErr(err)
	}
	printResult(res)
	return nil
}

// confirmMessage names the operation and its first target, e.g.
// `Confirm page delete "Reading List"? This cannot be undone.`
func confirmMessage(def tools.Definition, args map[string]any) string {
	op := def.Name
	if def.Group != "" && def.CLIName != "" {
		op = def.Group + " " + def.CLIName
	}
	if len(def.Args) > 0 {
		if v, ok := args[def.Args[0].Name]; ok {
			return fmt.Sprintf("Confirm %s %q? This cannot be undone.", op, fmt.Sprint(v))
		}
	}
	return fmt.Sprintf("Confirm %s? This cannot be undone.", op)
}

// printResult renders a tool result at the CLI boundary. JSON mode emits the
// envelope; text mode prints content items, with page-shaped payloads
// rendered as markdown on a terminal.
func printResult(res *tools.Result) {
	if jsonOutput {
		writeEnvelope(tools.Success(res.Data))
		return
	}

	if rendered, ok := renderPageResult(res); ok {
		fmt.Fprint(stdout, rendered)
		return
	}

	for _, item := range res.Content {
		switch item.Type {
		case tools.ContentText:
			fmt.Fprintln(stdout, item.Text)
		case tools.ContentBlob:
			writeBlob(item)
		}
	}
}

// writeBlob sends binary content to stdout when it is piped; on a terminal
// it prints a summary instead of raw bytes.
func writeBlob(item tools.Content) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintf(stdout, "binary content (%d bytes, %s); pass --out <path> to save it\n",
			len(item.Blob), item.MediaType)
		return
	}
	_, _ = stdout.Write(item.Blob)
}
