package tools

import (
	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/resolver"
	"github.com/aidanlsb/rook/internal/roam"
)

// Handler translates validated arguments into API calls and shapes the
// result. Handlers never see the reserved "graph" field; the router consumes
// it during resolution.
type Handler func(client *roam.Client, args map[string]any) (*Result, error)

// handlers maps tool names to implementations, registered at init by
// handlers.go. Every Registry entry must have one.
var handlers = map[string]Handler{}

// RegisterHandler wires a handler to a tool name.
func RegisterHandler(name string, h Handler) {
	handlers[name] = h
}

// RouteOptions carries the router's collaborators. Client configures the API
// clients built per call; tests inject transports and clocks through it.
type RouteOptions struct {
	Store  *config.Store
	Client roam.Options
}

// RouteToolCall is the single entry point for tool execution, shared by the
// CLI and the MCP server. It validates arguments against the tool's
// definition, resolves the target graph, builds a client for this call only,
// and dispatches. Errors pass through unmodified so the boundary sees the
// original codes and suggestions.
func RouteToolCall(name string, raw map[string]any, opts RouteOptions) (*Result, error) {
	def, ok := Lookup(name)
	if !ok {
		return nil, roam.Errorf(roam.ErrCodeToolNotFound, "unknown tool %q", name).
			WithSuggestion("Run `rook --help` to list available commands.").
			WithContext("available_tools", Names())
	}

	args, err := ValidateArgs(def, raw)
	if err != nil {
		return nil, err
	}

	ref, _ := args["graph"].(string)
	delete(args, "graph")

	graph, err := resolver.Resolve(opts.Store, ref)
	if err != nil {
		return nil, err
	}

	handler := handlers[def.Name]
	if handler == nil {
		return nil, roam.Errorf(roam.ErrCodeInternal, "tool %q has no handler", name)
	}
	return handler(roam.NewClient(graph, opts.Client), args)
}
