// Package resolver picks the graph a call runs against.
//
// Resolution is stateless: every call re-reads the connection store, so a
// connection added, removed, or revoked elsewhere is reflected on the very
// next call. No "current graph" is remembered between calls.
package resolver

import (
	"strings"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/roam"
)

// Candidate is one configured graph, attached as available_graphs context to
// disambiguation errors so the caller can retry with a valid reference.
type Candidate struct {
	Nickname    string `json:"nickname"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	AccessLevel string `json:"accessLevel,omitempty"`
	TokenStatus string `json:"tokenStatus,omitempty"`
}

// Resolve materializes the graph for one call:
//  1. ref given: nickname match (case-insensitive) first, then exact name;
//     no match is GRAPH_NOT_CONFIGURED.
//  2. no ref, exactly one connection: auto-select it.
//  3. otherwise GRAPH_NOT_SELECTED, listing every configured graph.
func Resolve(store *config.Store, ref string) (roam.Graph, error) {
	conns, err := store.Load()
	if err != nil {
		return roam.Graph{}, err
	}

	ref = strings.TrimSpace(ref)
	if ref != "" {
		for _, c := range conns {
			if strings.EqualFold(c.Nickname, ref) {
				return c.Graph(), nil
			}
		}
		for _, c := range conns {
			if c.Name == ref {
				return c.Graph(), nil
			}
		}
		return roam.Graph{}, roam.Errorf(roam.ErrCodeGraphNotConfigured,
			"no configured graph matches %q", ref).
			WithSuggestion("Use one of the configured nicknames, or run `rook graph connect` to add this graph.").
			WithContext("available_graphs", candidates(conns))
	}

	switch len(conns) {
	case 1:
		return conns[0].Graph(), nil
	case 0:
		return roam.Graph{}, roam.Errorf(roam.ErrCodeGraphNotConfigured, "no graphs are configured").
			WithSuggestion("Run `rook setup` to connect your first graph.")
	default:
		return roam.Graph{}, roam.Errorf(roam.ErrCodeGraphNotSelected,
			"%d graphs are configured; specify which one to use", len(conns)).
			WithSuggestion("Pass a graph nickname, e.g. `--graph "+conns[0].Nickname+"` (CLI) or a \"graph\" argument (tools).").
			WithContext("available_graphs", candidates(conns))
	}
}

func candidates(conns []config.Connection) []Candidate {
	out := make([]Candidate, 0, len(conns))
	for _, c := range conns {
		out = append(out, Candidate{
			Nickname:    c.Nickname,
			Name:        c.Name,
			Type:        c.Type,
			AccessLevel: c.AccessLevel,
			TokenStatus: c.LastKnownTokenStatus,
		})
	}
	return out
}
