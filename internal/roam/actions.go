package roam

// BlockNode is one node of a nested block outline: the shape the batch
// action accepts for writing a whole tree in a single call. Markdown imports
// and apply scripts both compile to it.
type BlockNode struct {
	Content  string      `json:"content"`
	Children []BlockNode `json:"children,omitempty"`
}

// BatchArgs shapes a batch-write request targeting a page. The page is
// created if it does not exist.
func BatchArgs(page string, blocks []BlockNode) map[string]any {
	return map[string]any{
		"page":   page,
		"blocks": blocks,
	}
}
