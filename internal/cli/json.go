package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/resolver"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/tools"
	"github.com/aidanlsb/rook/internal/ui"
)

// errReported marks an error that has already been printed (as a JSON
// envelope); Execute must not print it again but still exits non-zero.
var errReported = errors.New("error already reported")

func writeEnvelope(env tools.Envelope) {
	// Store warnings (dedup, loose permissions) ride along structurally so
	// agents see them without scraping stderr.
	for _, n := range config.TakeNotices() {
		env.Warnings = append(env.Warnings, tools.Warning{Code: n.Code, Message: n.Message})
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(env)
}

// outputSuccess emits a positive envelope in JSON mode. Callers handle
// human output themselves.
func outputSuccess(data any) {
	writeEnvelope(tools.Success(data))
}

// handleErr is the single error funnel for command RunE bodies. In JSON mode
// the envelope goes to stdout here; in text mode the error flows back to
// Execute, which formats it once.
func handleErr(err error) error {
	if err == nil {
		return nil
	}
	if jsonOutput {
		writeEnvelope(tools.Failure(err))
		return errReported
	}
	return err
}

// printHumanError formats a classified error for the terminal: the message,
// the remediation hint, and the configured graphs when the error carries
// them for disambiguation.
func printHumanError(err error) {
	re, ok := roam.AsError(err)
	if !ok {
		fmt.Fprintln(stderr, ui.Error(err.Error()))
		return
	}

	fmt.Fprintln(stderr, ui.Error(re.Message))
	if graphs := availableGraphs(re); len(graphs) > 0 {
		tbl := ui.NewTable(4)
		for _, g := range graphs {
			tbl.AddRow("  "+g.Nickname, g.Name, g.Type, g.AccessLevel)
		}
		fmt.Fprint(stderr, tbl.String())
	}
	if re.Suggestion != "" {
		fmt.Fprintln(stderr, ui.Hint(re.Suggestion))
	}
}

// availableGraphs recovers the structured candidate list from error context.
// The context is stored as []resolver.Candidate by the resolver but may have
// been round-tripped through JSON by other boundaries.
func availableGraphs(re *roam.Error) []resolver.Candidate {
	raw, ok := re.Context["available_graphs"]
	if !ok {
		return nil
	}
	if graphs, ok := raw.([]resolver.Candidate); ok {
		return graphs
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var graphs []resolver.Candidate
	if err := json.Unmarshal(data, &graphs); err != nil {
		return nil
	}
	return graphs
}
