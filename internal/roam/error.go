package roam

import (
	"errors"
	"fmt"
)

// Error codes form a fixed taxonomy. Every failure rook surfaces carries one
// of these so the CLI and MCP boundaries can format consistently and agents
// can branch on stable identifiers.
const (
	// Configuration.
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigTooNew   = "CONFIG_TOO_NEW"
	ErrCodeValidation     = "VALIDATION_ERROR"

	// Identity.
	ErrCodeGraphNotConfigured = "GRAPH_NOT_CONFIGURED"
	ErrCodeGraphNotSelected   = "GRAPH_NOT_SELECTED"
	ErrCodeNicknameCollision  = "NICKNAME_COLLISION"

	// Authentication / authorization.
	ErrCodeAuthentication   = "AUTHENTICATION_ERROR"
	ErrCodePermissionDenied = "PERMISSION_DENIED"

	// Protocol / transport.
	ErrCodeVersionMismatch  = "VERSION_MISMATCH"
	ErrCodeConnectionFailed = "CONNECTION_FAILED"

	// Remote.
	ErrCodeUnknownAction = "UNKNOWN_ACTION"
	ErrCodeInternal      = "INTERNAL_ERROR"

	// Routing.
	ErrCodeToolNotFound = "TOOL_NOT_FOUND"
)

// Error is a classified failure. It is created at the point of failure and
// propagated unchanged to the outermost boundary; only that boundary decides
// textual formatting, exit codes, or protocol error flags.
type Error struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds a classified error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds a classified error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithSuggestion attaches remediation text and returns the same error.
func (e *Error) WithSuggestion(s string) *Error {
	e.Suggestion = s
	return e
}

// WithContext attaches one structured context value and returns the same error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any, 1)
	}
	e.Context[key] = value
	return e
}

// AsError extracts a classified error from err's chain.
func AsError(err error) (*Error, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// CodeOf returns err's taxonomy code, or INTERNAL_ERROR for unclassified errors.
func CodeOf(err error) string {
	if re, ok := AsError(err); ok {
		return re.Code
	}
	return ErrCodeInternal
}
