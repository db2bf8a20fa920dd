package cli

import (
	"encoding/json"
	"testing"

	"github.com/aidanlsb/rook/internal/tools"
)

func TestPageMarkdownNestsChildren(t *testing.T) {
	page := pagePayload{
		Title: "Projects",
		UID:   "abc123DEF",
		Blocks: []pageBlock{
			{Content: "rook", Children: []pageBlock{
				{Content: "ship v1", Children: []pageBlock{
					{Content: "write docs"},
				}},
			}},
			{Content: "errands"},
		},
	}

	got := pageMarkdown(page)
	want := "# Projects\n\n" +
		"- rook\n" +
		"  - ship v1\n" +
		"    - write docs\n" +
		"- errands\n"
	if got != want {
		t.Errorf("pageMarkdown:\n%q\nwant:\n%q", got, want)
	}
}

func TestPageMarkdownEmptyPage(t *testing.T) {
	got := pageMarkdown(pagePayload{Title: "Inbox", UID: "u1"})
	if got != "# Inbox\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderPageResultRejectsNonPages(t *testing.T) {
	raw := json.RawMessage(`{"results": []}`)
	if _, ok := renderPageResult(tools.JSONResult(raw)); ok {
		t.Error("search-shaped payload rendered as a page")
	}
	if _, ok := renderPageResult(tools.TextResult("plain text")); ok {
		t.Error("text result rendered as a page")
	}
}
