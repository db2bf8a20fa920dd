package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/aidanlsb/rook/internal/tools"
	"github.com/aidanlsb/rook/internal/ui"
)

// pageBlock mirrors one block node in a page.get / block.get result.
type pageBlock struct {
	Content  string      `json:"content"`
	Children []pageBlock `json:"children,omitempty"`
}

// pagePayload mirrors a page-shaped API result.
type pagePayload struct {
	Title  string      `json:"title"`
	UID    string      `json:"uid"`
	Blocks []pageBlock `json:"blocks,omitempty"`
}

// renderPageResult pretty-prints page-shaped results (page get, daily) as a
// markdown outline, glamour-rendered on a terminal. Anything that does not
// look like a page falls through to the default text output.
func renderPageResult(res *tools.Result) (string, bool) {
	raw, ok := res.Data.(json.RawMessage)
	if !ok {
		return "", false
	}
	var page pagePayload
	if err := json.Unmarshal(raw, &page); err != nil {
		return "", false
	}
	if page.Title == "" || page.UID == "" {
		return "", false
	}

	md := pageMarkdown(page)
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return md, true
	}
	rendered, err := ui.RenderMarkdown(md, ui.TermWidth())
	if err != nil {
		return md, true
	}
	return rendered, true
}

// pageMarkdown flattens a page into a markdown outline: title heading, one
// bullet per block, two-space indent per nesting level.
func pageMarkdown(page pagePayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", page.Title)
	if len(page.Blocks) > 0 {
		sb.WriteString("\n")
		writeBlocks(&sb, page.Blocks, 0)
	}
	return sb.String()
}

func writeBlocks(sb *strings.Builder, blocks []pageBlock, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, b := range blocks {
		fmt.Fprintf(sb, "%s- %s\n", indent, b.Content)
		writeBlocks(sb, b.Children, depth+1)
	}
}
