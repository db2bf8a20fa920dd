package tools

import (
	"github.com/aidanlsb/rook/internal/roam"
)

// Envelope is the machine-readable shape every boundary emits: the CLI behind
// --json and the MCP server's tool results. Agents branch on Error.Code, so
// the shape is stable even when the payload under Data is not.
type Envelope struct {
	OK       bool       `json:"ok"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Warnings []Warning  `json:"warnings,omitempty"`
}

// ErrorInfo is the serialized form of a classified error.
type ErrorInfo struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// Warning is a non-fatal notice attached to an otherwise successful call.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success wraps a payload in a positive envelope.
func Success(data any) Envelope {
	return Envelope{OK: true, Data: data}
}

// Failure wraps err in a negative envelope, keeping the classified code,
// suggestion, and context when err carries them.
func Failure(err error) Envelope {
	if re, ok := roam.AsError(err); ok {
		return Envelope{OK: false, Error: &ErrorInfo{
			Code:       re.Code,
			Message:    re.Message,
			Suggestion: re.Suggestion,
			Context:    re.Context,
		}}
	}
	return Envelope{OK: false, Error: &ErrorInfo{
		Code:    roam.ErrCodeInternal,
		Message: err.Error(),
	}}
}
