package tools

import "strings"

// mutatingToolNames lists tools that write graph state. This powers the
// read-only hints in MCP schemas.
var mutatingToolNames = map[string]struct{}{
	"page_create":  {},
	"page_update":  {},
	"page_delete":  {},
	"block_add":    {},
	"block_update": {},
	"block_move":   {},
	"block_delete": {},
	"daily":        {}, // creates the page when missing
	"upload":       {},
	"import":       {},
}

// destructiveToolNames lists tools that delete graph state. These get an
// interactive confirmation prompt in the CLI (with a --force escape) and a
// destructive hint in MCP schemas.
var destructiveToolNames = map[string]struct{}{
	"page_delete":  {},
	"block_delete": {},
}

func init() {
	for name := range mutatingToolNames {
		def, ok := Registry[name]
		if !ok {
			continue
		}
		def.Mutating = true
		if _, destructive := destructiveToolNames[name]; destructive {
			def.Destructive = true
		}
		Registry[name] = def
	}
}

// ResolveToolName resolves a CLI command path to a registry tool name.
// Example: "block add" -> "block_add".
func ResolveToolName(path string) (string, bool) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", false
	}
	if _, ok := Registry[trimmed]; ok {
		return trimmed, true
	}
	underscored := strings.ReplaceAll(trimmed, " ", "_")
	if _, ok := Registry[underscored]; ok {
		return underscored, true
	}
	return "", false
}
