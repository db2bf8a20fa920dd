package mcp

// getAgentGuide returns the embedded agent guide content.
// This guide helps AI agents understand how to effectively use rook.
func getAgentGuide() string {
	return `# Rook Agent Guide

This guide helps AI agents use rook to work with a user's Roam Research graphs.

## Core Concepts

**Roam** organizes everything as an outline:
- **Graph**: one database of pages, either hosted (cloud-synced) or offline (local-only)
- **Page**: a titled top-level node; daily notes are pages titled by date
- **Block**: one bullet in an outline; every block has a stable uid, a parent, and an order
- **Reference**: [[Page Title]] links and ((block-uid)) embeds connect everything

Rook talks to the Roam desktop app's local API. The app must be running on the
user's machine; rook relaunches it automatically when a call cannot connect.

## Graph Selection

Every tool accepts an optional graph argument (a nickname or full graph name):
- One configured graph: omit it, rook selects automatically
- Several configured graphs: pass the nickname, e.g. roam_search(query="...", graph="work")
- A GRAPH_NOT_SELECTED error includes available_graphs in its context; pick from
  that list and retry

Read the rook://graphs resource to see configured graphs with their nicknames
and access levels before deciding.

## Key Workflows

### 1. Finding Content

1. Use roam_search for full-text search:
   roam_search(query="project kickoff")
   roam_search(query="quarterly goals", limit=10)

2. Use roam_page_get to read a whole page (by title or uid):
   roam_page_get(ref="Project Kickoff")

3. Use roam_block_get for one block and its children:
   roam_block_get(uid="AbC123xYz")

### 2. Creating Content

1. Use roam_page_create for new pages:
   roam_page_create(title="Website Redesign")

2. Use roam_block_add to append under a parent (page title, page uid, or block uid):
   roam_block_add(parent="Website Redesign", content="Kickoff scheduled")
   roam_block_add(parent="AbC123xYz", content="First item", order=0)

   Omit order to append at the end; order=0 inserts at the top.

3. Use roam_daily for today's note (creates it when missing):
   roam_daily()
   roam_daily(date="2026-08-26")

   Quick capture: call roam_daily, then roam_block_add with the returned page as parent.

### 3. Editing Content

1. Find the block first (roam_search or roam_page_get) so you have its uid.

2. Use roam_block_update to rewrite a block:
   roam_block_update(uid="AbC123xYz", content="Kickoff moved to Friday")

3. Use roam_page_update to retitle a page:
   roam_page_update(uid="pAgE456", title="Website Redesign 2026")

### 4. Organizing

Use roam_block_move to reparent or reorder:
   roam_block_move(uid="AbC123xYz", parent="pAgE456", order=0)

The order is the zero-based position under the new parent.

### 5. Deleting Content

**ALWAYS confirm with the user before deleting anything.**

1. FIRST read what you are about to remove:
   roam_block_get(uid="AbC123xYz")

2. THEN ask the user to confirm, quoting the content:
   "Delete the block 'Kickoff scheduled' and its 3 children? This cannot be undone."

3. Only AFTER the user confirms:
   roam_block_delete(uid="AbC123xYz")
   roam_page_delete(uid="pAgE456")

Deletion is permanent. There is no trash to recover from. Never delete without
explicit user approval.

### 6. Files

1. Use roam_upload to push a local file to Roam's hosted storage:
   roam_upload(path="/home/user/diagram.png")
   The result contains the hosted URL to reference in block content.

2. Use roam_download to fetch a hosted file:
   roam_download(url="https://files.roamresearch.com/...", out="/tmp/diagram.png")
   Pass out to save to disk; without it the content is returned inline.

### 7. Importing Markdown

Use roam_import to turn a markdown file into a nested outline on one page:
   roam_import(path="/home/user/notes.md")
   roam_import(path="/home/user/notes.md", page="Meeting Notes")

Headings become parent blocks, lists nest beneath them. Without page, the
file name (minus extension) becomes the page title.

### 8. Opening the App

Use roam_open to focus a page in the Roam desktop app:
   roam_open(ref="Website Redesign")

Use this when the user wants to continue working by hand.

## Reading Results

Every tool returns a JSON envelope:
- Success: {"ok": true, "data": ...}
- Failure: {"ok": false, "error": {"code", "message", "suggestion", "context"}}

Branch on error.code and surface error.suggestion to the user:

| Code | Meaning | What to do |
|------|---------|------------|
| CONFIG_NOT_FOUND | no graphs configured | Tell the user to run rook setup |
| GRAPH_NOT_SELECTED | several graphs, none chosen | Retry with graph= from context.available_graphs |
| GRAPH_NOT_CONFIGURED | unknown nickname or name | Show context.available_graphs, ask which |
| AUTHENTICATION_ERROR | token invalid or revoked | Tell the user to run rook graph connect again |
| CONNECTION_FAILED | Roam app unreachable after retries | Ask the user to open the Roam desktop app |
| VALIDATION_ERROR | bad argument | Fix the named field and retry |
| VERSION_MISMATCH | app and rook disagree on API version | Follow the suggestion (update one side) |

Do not retry AUTHENTICATION_ERROR, VALIDATION_ERROR, or VERSION_MISMATCH
unchanged; the same call will fail the same way. Connection problems are
already retried internally.

## Best Practices

1. **Search before creating**: check whether a page already exists before
   roam_page_create; duplicated titles confuse Roam's linking.

2. **One thought per block**: prefer several small roam_block_add calls over
   one wall of text; that is how Roam outlines are meant to read.

3. **Quote before destroying**: show the user the exact content a delete or
   update will touch, then wait for confirmation.

4. **Be explicit in multi-graph setups**: pass graph= on every call once you
   know which graph the user means; do not rely on auto-selection.

5. **Keep uids, not titles, for follow-up edits**: titles change; uids are
   stable within a graph.

## Example Conversations

**User**: "What do I have on the website project?"
- roam_search(query="website project")
- Summarize matches; offer roam_page_get on the most relevant page

**User**: "Add 'call the designer' to today's note"
- roam_daily()
- roam_block_add(parent=<today's page uid>, content="call the designer")

**User**: "Rename the kickoff page to Q4 Kickoff"
- roam_search(query="kickoff") to find the page uid
- roam_page_update(uid="pAgE456", title="Q4 Kickoff")

**User**: "Get rid of the old meeting notes page"
- roam_page_get(ref="Old Meeting Notes") to see what it holds
- Ask: "It has 14 blocks. Delete permanently?"
- After confirmation: roam_page_delete(uid="pAgE456")

**User**: "Put my notes.md into Roam"
- roam_import(path="notes.md", page="Imported Notes")
- Report the created outline; offer roam_open(ref="Imported Notes")
`
}
