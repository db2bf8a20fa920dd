// Package markdown converts markdown documents into nested block outlines
// for batch import. Headings become parent blocks; paragraphs, lists, and
// code fences nest under the heading they follow.
package markdown

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/aidanlsb/rook/internal/roam"
)

// outlineNode builds the tree with stable pointers; converted to the wire
// shape only once the walk is done.
type outlineNode struct {
	content  string
	children []*outlineNode
}

type headingFrame struct {
	level int
	node  *outlineNode
}

// ParseOutline converts a markdown document into the nested block shape the
// batch action writes. Inline markup (links, emphasis, [[wikilinks]]) is
// kept verbatim; Roam renders its own markdown.
func ParseOutline(src []byte) []roam.BlockNode {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	root := &outlineNode{}
	// Each heading nests under the nearest shallower one; the document root
	// acts as a level-0 heading.
	frames := []headingFrame{{0, root}}
	top := func() *outlineNode { return frames[len(frames)-1].node }

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			content := rawLines(h, src)
			if content == "" {
				continue
			}
			for len(frames) > 1 && frames[len(frames)-1].level >= h.Level {
				frames = frames[:len(frames)-1]
			}
			node := &outlineNode{content: content}
			top().children = append(top().children, node)
			frames = append(frames, headingFrame{h.Level, node})
			continue
		}
		appendBlocks(top(), n, src)
	}

	return convert(root.children)
}

// appendBlocks translates one non-heading block node into children of parent.
func appendBlocks(parent *outlineNode, n ast.Node, src []byte) {
	switch node := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if content := rawLines(n, src); content != "" {
			parent.children = append(parent.children, &outlineNode{content: content})
		}
	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			if li, ok := item.(*ast.ListItem); ok {
				appendListItem(parent, li, src)
			}
		}
	case *ast.FencedCodeBlock:
		parent.children = append(parent.children, &outlineNode{content: fencedContent(node, src)})
	case *ast.CodeBlock:
		parent.children = append(parent.children, &outlineNode{content: "```\n" + verbatimLines(node, src) + "```"})
	case *ast.Blockquote:
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			if content := rawLines(child, src); content != "" {
				parent.children = append(parent.children, &outlineNode{content: "> " + content})
			}
		}
	case *ast.HTMLBlock:
		if content := strings.TrimRight(verbatimLines(node, src), "\n"); content != "" {
			parent.children = append(parent.children, &outlineNode{content: content})
		}
	case *ast.ThematicBreak:
		// Separators carry no content; the outline structure already splits.
	}
}

// appendListItem turns one list item into a block, with nested lists and
// extra paragraphs as its children. Items without their own text hoist
// their children to the parent.
func appendListItem(parent *outlineNode, li *ast.ListItem, src []byte) {
	node := &outlineNode{}
	for child := li.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.TextBlock, *ast.Paragraph:
			content := rawLines(child, src)
			if node.content == "" {
				node.content = content
			} else if content != "" {
				node.children = append(node.children, &outlineNode{content: content})
			}
		case *ast.List:
			for item := c.FirstChild(); item != nil; item = item.NextSibling() {
				if nested, ok := item.(*ast.ListItem); ok {
					appendListItem(node, nested, src)
				}
			}
		default:
			appendBlocks(node, child, src)
		}
	}
	if node.content == "" {
		parent.children = append(parent.children, node.children...)
		return
	}
	parent.children = append(parent.children, node)
}

// rawLines joins a block node's source lines, preserving inline markdown.
// Goldmark's line segments for headings and list items already exclude the
// leading markers.
func rawLines(n ast.Node, src []byte) string {
	lines := n.Lines()
	parts := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		if s := strings.TrimSpace(string(seg.Value(src))); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// verbatimLines joins code lines exactly as written, terminators included.
func verbatimLines(n ast.Node, src []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

func fencedContent(node *ast.FencedCodeBlock, src []byte) string {
	var b strings.Builder
	b.WriteString("```")
	if lang := node.Language(src); lang != nil {
		b.Write(lang)
	}
	b.WriteByte('\n')
	b.WriteString(verbatimLines(node, src))
	b.WriteString("```")
	return b.String()
}

func convert(nodes []*outlineNode) []roam.BlockNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]roam.BlockNode, len(nodes))
	for i, n := range nodes {
		out[i] = roam.BlockNode{Content: n.content, Children: convert(n.children)}
	}
	return out
}
