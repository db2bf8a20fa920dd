package tools

import (
	"fmt"
	"math"
	"strconv"

	"github.com/aidanlsb/rook/internal/roam"
)

// ValidateArgs checks raw caller arguments against the definition's declared
// fields and returns a normalized copy: declared fields coerced to their
// declared types, undeclared fields dropped. The reserved "graph" field is
// accepted on every tool.
func ValidateArgs(def Definition, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for _, f := range declaredFields(def) {
		val, ok := raw[f.Name]
		if !ok || val == nil {
			if f.Required {
				return nil, roam.Errorf(roam.ErrCodeValidation, "%q is required", f.Name).
					WithContext("field", f.Name)
			}
			continue
		}
		coerced, err := coerceField(f, val)
		if err != nil {
			return nil, err
		}
		out[f.Name] = coerced
	}
	return out, nil
}

func declaredFields(def Definition) []Field {
	fields := make([]Field, 0, len(def.Args)+len(def.Flags)+1)
	fields = append(fields, def.Args...)
	fields = append(fields, def.Flags...)
	fields = append(fields, GraphField)
	return fields
}

// coerceField normalizes one value to its declared type. Numbers arrive as
// float64 from JSON decoding and as strings from CLI positionals; both are
// accepted for int fields when they represent a whole number. Bool fields
// accept the literal strings "true" and "false".
func coerceField(f Field, val any) (any, error) {
	switch f.Type {
	case FieldInt:
		switch v := val.(type) {
		case int:
			return v, nil
		case int64:
			return int(v), nil
		case float64:
			if v != math.Trunc(v) {
				return nil, fieldError(f, "must be a whole number")
			}
			return int(v), nil
		case string:
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fieldError(f, fmt.Sprintf("must be a number, got %q", v))
			}
			return n, nil
		}
		return nil, fieldError(f, fmt.Sprintf("must be a number, got %T", val))
	case FieldBool:
		switch v := val.(type) {
		case bool:
			return v, nil
		case string:
			switch v {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
			return nil, fieldError(f, fmt.Sprintf("must be true or false, got %q", v))
		}
		return nil, fieldError(f, fmt.Sprintf("must be true or false, got %T", val))
	default:
		if s, ok := val.(string); ok {
			return s, nil
		}
		return nil, fieldError(f, fmt.Sprintf("must be a string, got %T", val))
	}
}

func fieldError(f Field, problem string) error {
	return roam.Errorf(roam.ErrCodeValidation, "%q %s", f.Name, problem).
		WithContext("field", f.Name)
}
