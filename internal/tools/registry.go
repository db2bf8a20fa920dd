// Package tools holds the central registry of rook's invocable operations.
// The registry is the single source of truth for tool metadata, used by the
// CLI (command generation), the MCP server (tool schemas), and the router
// (argument validation and dispatch).
package tools

import "sort"

// Definition describes one invocable tool: its caller-facing name, its input
// shape, and the API action it translates to.
type Definition struct {
	Name        string  // canonical tool name (MCP exposes "roam_" + Name)
	Group       string  // CLI command group ("page", "block"); empty = top level
	CLIName     string  // CLI command name within the group; defaults to Name
	Description string  // short description
	LongDesc    string  // long description (for --help and MCP)
	Action      string  // local API action this tool targets
	Args        []Field // positional in the CLI, named properties over MCP
	Flags       []Field // CLI flags, named properties over MCP
	Examples    []string
	UseCases    []string // agent use cases (for MCP hints)
	Mutating    bool     // set by lifecycle.go for tools that write graph state
	Destructive bool     // set by lifecycle.go for tools that delete graph state
}

// Field declares one input field.
type Field struct {
	Name        string
	Description string
	Type        FieldType
	Required    bool
	Default     string // CLI flag default (flags only)
	Examples    []string
}

// FieldType drives validation/coercion and CLI flag registration.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldBool   FieldType = "bool"
)

// GraphField is accepted by every tool: which configured graph to use.
// It is extracted by the router before dispatch, never seen by handlers.
var GraphField = Field{
	Name:        "graph",
	Description: "Graph to use (nickname or name); optional when exactly one graph is configured",
	Type:        FieldString,
}

// Registry holds all registered tools.
var Registry = map[string]Definition{
	"search": {
		Name:        "search",
		Description: "Search pages and blocks in a graph",
		LongDesc: `Full-text search across the graph.

Returns matching pages and blocks with their uids. Use the uids with
page get, block get, or block update to read or change the matches.`,
		Action: "search",
		Args: []Field{
			{Name: "query", Description: "Search query", Type: FieldString, Required: true},
		},
		Flags: []Field{
			{Name: "limit", Description: "Maximum number of results (app default when omitted)", Type: FieldInt},
		},
		Examples: []string{
			`rook search "project kickoff" --json`,
			`rook search meeting --limit 5 --graph work --json`,
		},
		UseCases: []string{
			"Find pages or blocks before reading or editing them",
			"Locate the uid of a block to update",
		},
	},
	"page_create": {
		Name:        "page_create",
		Group:       "page",
		CLIName:     "create",
		Description: "Create a new page",
		LongDesc: `Creates an empty page with the given title.

Fails in-app if a page with this title already exists; use page get to
check first when unsure. Returns the new page's uid.`,
		Action: "page.create",
		Args: []Field{
			{Name: "title", Description: "Title for the new page", Type: FieldString, Required: true},
		},
		Examples: []string{
			`rook page create "Reading List" --json`,
			`rook page create "Q3 Planning" --graph work --json`,
		},
		UseCases: []string{
			"Create a page to collect related blocks",
		},
	},
	"page_get": {
		Name:        "page_get",
		Group:       "page",
		CLIName:     "get",
		Description: "Read a page and its block tree",
		LongDesc: `Fetches a page by title or uid, including its nested blocks.

The result contains every block's uid, content, and children, which is
what block update / block move / block delete operate on.`,
		Action: "page.get",
		Args: []Field{
			{Name: "ref", Description: "Page title or uid", Type: FieldString, Required: true},
		},
		Examples: []string{
			`rook page get "Reading List" --json`,
			"rook page get x7GdR0aZ1 --json",
		},
		UseCases: []string{
			"Read a page before editing its blocks",
			"Resolve a page title to its uid",
		},
	},
	"page_update": {
		Name:        "page_update",
		Group:       "page",
		CLIName:     "update",
		Description: "Rename a page",
		Action:      "page.update",
		Args: []Field{
			{Name: "ref", Description: "Page title or uid", Type: FieldString, Required: true},
			{Name: "title", Description: "New title", Type: FieldString, Required: true},
		},
		Examples: []string{
			`rook page update "Reading List" "Reading List 2026" --json`,
		},
		UseCases: []string{
			"Rename a page; links to it follow automatically in Roam",
		},
	},
	"page_delete": {
		Name:        "page_delete",
		Group:       "page",
		CLIName:     "delete",
		Description: "Delete a page and all its blocks",
		LongDesc: `Deletes a page, including every block under it.

IMPORTANT FOR AGENTS: this is destructive and not undoable through the
API. Read the page first and confirm with the user before deleting
anything you did not create in this session.`,
		Action: "page.delete",
		Args: []Field{
			{Name: "ref", Description: "Page title or uid", Type: FieldString, Required: true},
		},
		Examples: []string{
			`rook page delete "Old Scratchpad" --json`,
		},
		UseCases: []string{
			"Remove a page that is no longer needed (after user confirmation)",
		},
	},
	"block_add": {
		Name:        "block_add",
		Group:       "block",
		CLIName:     "add",
		Description: "Add a block under a page or another block",
		LongDesc: `Creates a block as a child of the given parent.

The parent may be a page title, a page uid, or a block uid. By default
the block is appended after the existing children; pass --order to
insert at a specific position (0 = first).`,
		Action: "block.create",
		Args: []Field{
			{Name: "parent", Description: "Parent page title/uid or block uid", Type: FieldString, Required: true},
			{Name: "content", Description: "Block text (Roam markdown)", Type: FieldString, Required: true},
		},
		Flags: []Field{
			{Name: "order", Description: "Position among siblings (0 = first; omit to append)", Type: FieldInt, Default: "-1"},
		},
		Examples: []string{
			`rook block add "Reading List" "The Prose Edda" --json`,
			`rook block add x7GdR0aZ1 "child note" --order 0 --json`,
		},
		UseCases: []string{
			"Append a note, task, or quote to a page",
			"Insert a sub-item under an existing block",
		},
	},
	"block_get": {
		Name:        "block_get",
		Group:       "block",
		CLIName:     "get",
		Description: "Read a block and its children",
		Action:      "block.get",
		Args: []Field{
			{Name: "uid", Description: "Block uid", Type: FieldString, Required: true},
		},
		Examples: []string{
			"rook block get x7GdR0aZ1 --json",
		},
		UseCases: []string{
			"Inspect a block before updating or moving it",
		},
	},
	"block_update": {
		Name:        "block_update",
		Group:       "block",
		CLIName:     "update",
		Description: "Rewrite a block's content",
		LongDesc: `Replaces the block's text. Children are untouched.

Pass --open=false to collapse the block in the outline (or --open=true
to expand it).`,
		Action: "block.update",
		Args: []Field{
			{Name: "uid", Description: "Block uid", Type: FieldString, Required: true},
			{Name: "content", Description: "Replacement text (Roam markdown)", Type: FieldString, Required: true},
		},
		Flags: []Field{
			{Name: "open", Description: "Expand (true) or collapse (false) the block", Type: FieldBool, Default: "true"},
		},
		Examples: []string{
			`rook block update x7GdR0aZ1 "revised wording" --json`,
		},
		UseCases: []string{
			"Fix or rewrite a block found via search",
			"Mark a task done by rewriting its TODO marker",
		},
	},
	"block_move": {
		Name:        "block_move",
		Group:       "block",
		CLIName:     "move",
		Description: "Move a block under a new parent",
		Action:      "block.move",
		Args: []Field{
			{Name: "uid", Description: "Block uid to move", Type: FieldString, Required: true},
			{Name: "parent", Description: "New parent page title/uid or block uid", Type: FieldString, Required: true},
			{Name: "order", Description: "Position among the new siblings (0 = first)", Type: FieldInt, Required: true},
		},
		Examples: []string{
			`rook block move x7GdR0aZ1 "Archive" 0 --json`,
		},
		UseCases: []string{
			"Reorganize an outline without retyping content",
		},
	},
	"block_delete": {
		Name:        "block_delete",
		Group:       "block",
		CLIName:     "delete",
		Description: "Delete a block and its children",
		LongDesc: `Deletes a block, including every nested child.

IMPORTANT FOR AGENTS: destructive; confirm with the user before
deleting blocks you did not create in this session.`,
		Action: "block.delete",
		Args: []Field{
			{Name: "uid", Description: "Block uid", Type: FieldString, Required: true},
		},
		Examples: []string{
			"rook block delete x7GdR0aZ1 --json",
		},
		UseCases: []string{
			"Remove an obsolete block (after user confirmation)",
		},
	},
	"daily": {
		Name:        "daily",
		Description: "Get or create a daily note",
		LongDesc: `Fetches the daily note page for a date, creating it if needed.

The date defaults to today. Daily notes are where Roam users capture
most content, so this is the usual target for quick appends: get the
page, then block add to its uid.`,
		Action: "page.daily",
		Args: []Field{
			{Name: "date", Description: "Date (YYYY-MM-DD), defaults to today", Type: FieldString},
		},
		Examples: []string{
			"rook daily --json",
			"rook daily 2026-08-25 --json",
		},
		UseCases: []string{
			"Append to today's daily note",
			"Read what was captured on a given day",
		},
	},
	"open": {
		Name:        "open",
		Description: "Focus a page in the Roam desktop app",
		LongDesc: `Resolves a page and brings it to the foreground in Roam via the
app's deep link. Useful at the end of a workflow to hand the result
back to the user visually.`,
		Action: "page.get",
		Args: []Field{
			{Name: "ref", Description: "Page title or uid", Type: FieldString, Required: true},
		},
		Examples: []string{
			`rook open "Q3 Planning"`,
		},
		UseCases: []string{
			"Show the user a page you just created or edited",
		},
	},
	"upload": {
		Name:        "upload",
		Description: "Upload a local file into a graph",
		LongDesc: `Uploads a local file to the graph's media storage and returns the
hosted URL, ready to embed in a block.`,
		Action: "file.upload",
		Args: []Field{
			{Name: "file", Description: "Path of the local file to upload", Type: FieldString, Required: true},
		},
		Examples: []string{
			"rook upload ./diagram.png --json",
		},
		UseCases: []string{
			"Attach an image or document, then embed the returned URL in a block",
		},
	},
	"download": {
		Name:        "download",
		Description: "Download a file stored in a graph",
		LongDesc: `Fetches a file from the graph's media storage.

With --out the file is written locally and its path returned;
without it the raw content is returned, tagged with its media type.`,
		Action: "file.download",
		Args: []Field{
			{Name: "url", Description: "File URL as stored in the graph", Type: FieldString, Required: true},
		},
		Flags: []Field{
			{Name: "out", Description: "Write the file to this local path", Type: FieldString},
		},
		Examples: []string{
			"rook download https://files.roamresearch.com/f/abc --out diagram.png",
		},
		UseCases: []string{
			"Retrieve an attachment referenced by a block",
		},
	},
	"import": {
		Name:        "import",
		Description: "Import a markdown file as a page outline",
		LongDesc: `Converts a markdown document into nested blocks and writes them to a
page in one batch.

Headings become parent blocks, list items and paragraphs nest under
the heading they follow. The target page is created if missing; it
defaults to the file name without extension.`,
		Action: "batch",
		Args: []Field{
			{Name: "file", Description: "Path of the markdown file to import", Type: FieldString, Required: true},
		},
		Flags: []Field{
			{Name: "page", Description: "Target page title (defaults to the file name)", Type: FieldString},
		},
		Examples: []string{
			"rook import ./meeting-notes.md --json",
			`rook import ./roadmap.md --page "Product Roadmap" --graph work --json`,
		},
		UseCases: []string{
			"Bring an external document into the graph with its structure intact",
		},
	},
}

// Lookup returns the definition for a tool name.
func Lookup(name string) (Definition, bool) {
	def, ok := Registry[name]
	return def, ok
}

// Names returns all registered tool names, sorted for stable listings.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
