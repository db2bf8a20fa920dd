package tools

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Result is the normalized outcome of a successful tool call. Content holds
// the presentation items (text, or binary tagged with a media type); Data
// holds the structured payload for JSON output modes.
type Result struct {
	Content []Content
	Data    any
}

// Content is one result item.
type Content struct {
	Type      ContentType
	Text      string // text items
	Blob      []byte // binary items
	MediaType string // binary items, e.g. "image/png"
}

// ContentType distinguishes text from binary result items.
type ContentType string

const (
	ContentText ContentType = "text"
	ContentBlob ContentType = "blob"
)

// TextResult wraps plain text.
func TextResult(text string) *Result {
	return &Result{
		Content: []Content{{Type: ContentText, Text: text}},
		Data:    map[string]any{"message": text},
	}
}

// TextResultf wraps formatted text.
func TextResultf(format string, args ...any) *Result {
	return TextResult(fmt.Sprintf(format, args...))
}

// JSONResult wraps a raw API payload: the payload verbatim as structured
// data, pretty-printed as text.
func JSONResult(raw json.RawMessage) *Result {
	text := string(raw)
	var buf any
	if err := json.Unmarshal(raw, &buf); err == nil {
		if pretty, err := json.MarshalIndent(buf, "", "  "); err == nil {
			text = string(pretty)
		}
	}
	return &Result{
		Content: []Content{{Type: ContentText, Text: text}},
		Data:    raw,
	}
}

// BlobResult wraps binary content. Data carries a base64 copy so JSON
// boundaries stay self-contained; callers that want the raw bytes read the
// Content item.
func BlobResult(blob []byte, mediaType string) *Result {
	return &Result{
		Content: []Content{{Type: ContentBlob, Blob: blob, MediaType: mediaType}},
		Data: map[string]any{
			"data":      base64.StdEncoding.EncodeToString(blob),
			"mediaType": mediaType,
			"bytes":     len(blob),
		},
	}
}
