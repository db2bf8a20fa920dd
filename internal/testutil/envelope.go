package testutil

import (
	"encoding/json"
	"strings"
	"testing"
)

// Envelope is the parsed JSON output of one command.
type Envelope struct {
	OK       bool              `json:"ok"`
	Data     json.RawMessage   `json:"data,omitempty"`
	Error    *EnvelopeError    `json:"error,omitempty"`
	Warnings []EnvelopeWarning `json:"warnings,omitempty"`
	RawJSON  string            `json:"-"`
}

// EnvelopeError is the structured error half of the envelope.
type EnvelopeError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Suggestion string         `json:"suggestion,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// EnvelopeWarning is one non-fatal notice attached to a result.
type EnvelopeWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseEnvelope decodes one envelope as printed by --json commands.
func ParseEnvelope(t *testing.T, raw []byte) *Envelope {
	t.Helper()
	var e Envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		t.Fatalf("parse envelope: %v\nraw: %s", err, raw)
	}
	e.RawJSON = string(raw)
	return &e
}

// MustSucceed fails the test unless the envelope reports success.
func (e *Envelope) MustSucceed(t *testing.T) *Envelope {
	t.Helper()
	if !e.OK {
		msg := "unknown error"
		if e.Error != nil {
			msg = e.Error.Code + ": " + e.Error.Message
		}
		t.Fatalf("expected success, got %s\nraw: %s", msg, e.RawJSON)
	}
	return e
}

// MustFail fails the test unless the envelope carries the expected code.
func (e *Envelope) MustFail(t *testing.T, code string) *Envelope {
	t.Helper()
	if e.OK {
		t.Fatalf("expected failure with code %s, got success\nraw: %s", code, e.RawJSON)
	}
	if e.Error == nil {
		t.Fatalf("expected error with code %s, got nil error\nraw: %s", code, e.RawJSON)
	}
	if e.Error.Code != code {
		t.Fatalf("expected error code %s, got %s: %s", code, e.Error.Code, e.Error.Message)
	}
	return e
}

// MustSuggest fails the test unless the error suggestion mentions substr.
func (e *Envelope) MustSuggest(t *testing.T, substr string) *Envelope {
	t.Helper()
	if e.Error == nil {
		t.Fatalf("expected a suggestion mentioning %q, got nil error\nraw: %s", substr, e.RawJSON)
	}
	if !strings.Contains(e.Error.Suggestion, substr) {
		t.Errorf("expected suggestion to mention %q, got %q", substr, e.Error.Suggestion)
	}
	return e
}

// DataMap decodes the data payload as an object.
func (e *Envelope) DataMap(t *testing.T) map[string]any {
	t.Helper()
	if len(e.Data) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(e.Data, &m); err != nil {
		t.Fatalf("data is not an object: %v\nraw: %s", err, e.RawJSON)
	}
	return m
}

// DataString extracts a string field from the data payload.
func (e *Envelope) DataString(t *testing.T, key string) string {
	t.Helper()
	m := e.DataMap(t)
	s, _ := m[key].(string)
	return s
}
