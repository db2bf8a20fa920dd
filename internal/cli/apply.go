package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aidanlsb/rook/internal/batch"
	"github.com/aidanlsb/rook/internal/resolver"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/tools"
	"github.com/aidanlsb/rook/internal/ui"
)

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <script.yaml>",
		Short: "Apply a YAML batch script",
		Long: `Writes a whole block outline to a page in one batch call.

The script names a target page and a nested list of blocks:

  page: Reading List
  blocks:
    - content: The Prose Edda
      children:
        - content: recommended by [[Alice]]
    - content: Njal's Saga

The script may also name a graph; --graph wins when both are given.

Examples:
  rook apply weekly-review.yaml
  rook apply capture.yaml --graph work --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := batch.Load(args[0])
			if err != nil {
				return handleErr(err)
			}

			ref := graphFlag
			if ref == "" {
				ref = script.Graph
			}

			store, err := openStore()
			if err != nil {
				return handleErr(err)
			}
			graph, err := resolver.Resolve(store, ref)
			if err != nil {
				return handleErr(err)
			}

			raw, err := roam.NewClient(graph, apiOptions()).Call("batch", script.Args())
			if err != nil {
				return handleErr(err)
			}

			if jsonOutput {
				writeEnvelope(tools.Success(raw))
				return nil
			}
			fmt.Fprintln(stdout, ui.Successf("Applied %s to page %q in graph %s.",
				args[0], script.Page, ui.Nickname(graph.DisplayName())))
			return nil
		},
	}
}
