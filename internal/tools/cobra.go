package tools

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandRunner executes a routed tool call on behalf of a generated
// command. The CLI supplies it so output formatting stays at the boundary.
type CommandRunner func(name string, args map[string]any) error

// GenerateCommand builds the cobra command for one tool definition.
// Positional args map by index, flags by name; everything funnels into the
// runner as the single argument map RouteToolCall expects. Only flags the
// caller actually set are forwarded, so absent fields keep the app's
// defaults.
func GenerateCommand(def Definition, run CommandRunner) *cobra.Command {
	use := def.CLIName
	if use == "" {
		use = def.Name
	}
	for _, a := range def.Args {
		if a.Required {
			use += fmt.Sprintf(" <%s>", a.Name)
		} else {
			use += fmt.Sprintf(" [%s]", a.Name)
		}
	}

	long := def.LongDesc
	if long == "" {
		long = def.Description
	}
	if len(def.Examples) > 0 {
		long += "\n\nExamples:\n  " + strings.Join(def.Examples, "\n  ")
	}

	minArgs := 0
	for _, a := range def.Args {
		if a.Required {
			minArgs++
		}
	}
	maxArgs := len(def.Args)

	var positional cobra.PositionalArgs
	switch {
	case maxArgs == 0:
		positional = cobra.NoArgs
	case minArgs == maxArgs:
		positional = cobra.ExactArgs(minArgs)
	default:
		positional = cobra.RangeArgs(minArgs, maxArgs)
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: def.Description,
		Long:  long,
		Args:  positional,
		RunE: func(cmd *cobra.Command, argv []string) error {
			call := make(map[string]any, len(def.Args)+len(def.Flags))
			for i, a := range def.Args {
				if i < len(argv) {
					call[a.Name] = argv[i]
				}
			}
			collectFlags(cmd.Flags(), def.Flags, call)
			if def.Destructive {
				if v, _ := cmd.Flags().GetBool("force"); v {
					call["force"] = true
				}
			}
			return run(def.Name, call)
		},
	}

	for _, f := range def.Flags {
		switch f.Type {
		case FieldBool:
			cmd.Flags().Bool(f.Name, f.Default == "true", f.Description)
		case FieldInt:
			n := 0
			if f.Default != "" {
				n, _ = strconv.Atoi(f.Default)
			}
			cmd.Flags().Int(f.Name, n, f.Description)
		default:
			cmd.Flags().String(f.Name, f.Default, f.Description)
		}
	}
	if def.Destructive {
		cmd.Flags().Bool("force", false, "Skip the confirmation prompt")
	}

	return cmd
}

// collectFlags copies the flags the caller actually set into the call map,
// typed per the field definition.
func collectFlags(flags *pflag.FlagSet, fields []Field, call map[string]any) {
	for _, f := range fields {
		if !flags.Changed(f.Name) {
			continue
		}
		switch f.Type {
		case FieldBool:
			v, _ := flags.GetBool(f.Name)
			call[f.Name] = v
		case FieldInt:
			v, _ := flags.GetInt(f.Name)
			call[f.Name] = v
		default:
			v, _ := flags.GetString(f.Name)
			call[f.Name] = v
		}
	}
}
