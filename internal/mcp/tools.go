package mcp

import (
	"strings"

	"github.com/aidanlsb/rook/internal/tools"
)

// GenerateToolSchemas generates MCP tool schemas from the tool registry.
// This ensures MCP tools stay in sync with CLI commands automatically.
func GenerateToolSchemas() []Tool {
	schemas := make([]Tool, 0, len(tools.Registry))

	for _, name := range tools.Names() {
		def, _ := tools.Lookup(name)

		schema := Tool{
			Name:        mcpToolName(def.Name),
			Description: def.Description,
			InputSchema: InputSchema{
				Type:       "object",
				Properties: make(map[string]interface{}),
			},
			Annotations: &ToolAnnotations{
				ReadOnlyHint:    !def.Mutating,
				DestructiveHint: def.Destructive,
			},
		}

		// Prefer the long description; it carries the agent guidance.
		if def.LongDesc != "" {
			schema.Description = def.LongDesc
		}

		var required []string
		for _, arg := range def.Args {
			schema.InputSchema.Properties[arg.Name] = fieldProperty(arg)
			if arg.Required {
				required = append(required, arg.Name)
			}
		}
		for _, flag := range def.Flags {
			schema.InputSchema.Properties[flag.Name] = fieldProperty(flag)
		}

		// Every tool accepts the router-level graph selector.
		schema.InputSchema.Properties[tools.GraphField.Name] = fieldProperty(tools.GraphField)

		if len(required) > 0 {
			schema.InputSchema.Required = required
		}

		schemas = append(schemas, schema)
	}

	return schemas
}

func fieldProperty(f tools.Field) map[string]interface{} {
	prop := map[string]interface{}{
		"description": f.Description,
	}

	switch f.Type {
	case tools.FieldBool:
		prop["type"] = "boolean"
	case tools.FieldInt:
		prop["type"] = "integer"
	default:
		prop["type"] = "string"
	}

	if len(f.Examples) > 0 {
		prop["examples"] = f.Examples
	}

	return prop
}

// mcpToolName converts a registry tool name to an MCP tool name.
// e.g., "search" -> "roam_search", "page_create" -> "roam_page_create"
func mcpToolName(name string) string {
	return "roam_" + name
}

// registryName converts an MCP tool name back to its registry key and
// reports whether the tool exists. Bare registry names and CLI-style paths
// ("page delete") are accepted too; some clients strip the prefix or echo
// command help verbatim.
func registryName(toolName string) (string, bool) {
	return tools.ResolveToolName(strings.TrimPrefix(toolName, "roam_"))
}
