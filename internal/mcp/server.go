// Package mcp provides an MCP (Model Context Protocol) server for rook.
// MCP enables LLM agents to drive a Roam graph through rook's tool registry
// over line-delimited JSON-RPC 2.0 on stdio.
package mcp

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/tools"
)

// Server is an MCP server bound to a connection store. Every tools/call is
// dispatched through the shared registry in the same process, so the MCP
// surface and the CLI can never disagree about behavior.
type Server struct {
	store  *config.Store
	graph  string // pinned graph selector, "" when unpinned
	client roam.Options
	in     io.Reader
	out    io.Writer
}

// Request represents a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      interface{}      `json:"id,omitempty"`
	Method  string           `json:"method"`
	Params  *json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id,omitempty"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ServerInfo identifies the server to clients.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities defines what the server can do.
type ServerCapabilities struct {
	Tools     *ToolsCapability     `json:"tools,omitempty"`
	Resources *ResourcesCapability `json:"resources,omitempty"`
}

// ToolsCapability indicates tool support.
type ToolsCapability struct {
	ListChanged bool `json:"listChanged,omitempty"`
}

// ResourcesCapability indicates resource support.
type ResourcesCapability struct {
	Subscribe   bool `json:"subscribe,omitempty"`
	ListChanged bool `json:"listChanged,omitempty"`
}

// Tool represents an MCP tool definition.
type Tool struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	InputSchema InputSchema      `json:"inputSchema"`
	Annotations *ToolAnnotations `json:"annotations,omitempty"`
}

// ToolAnnotations carries the MCP behavior hints clients use to gate calls:
// read-only tools can run without approval, destructive ones warrant it.
type ToolAnnotations struct {
	ReadOnlyHint    bool `json:"readOnlyHint"`
	DestructiveHint bool `json:"destructiveHint"`
}

// InputSchema defines the JSON schema for tool input.
type InputSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// ToolResult represents the result of a tool call.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ToolContent is one content item in a tool result: text, or base64 binary
// for image payloads.
type ToolContent struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// NewServer creates an MCP server speaking on stdin/stdout. A non-empty
// graph pins every call to that graph unless the caller passes its own.
func NewServer(store *config.Store, graph string, opts roam.Options) *Server {
	return &Server{
		store:  store,
		graph:  graph,
		client: opts,
		in:     os.Stdin,
		out:    os.Stdout,
	}
}

// Run starts the MCP server's main loop.
func (s *Server) Run() error {
	scanner := bufio.NewScanner(s.in)
	// MCP uses line-delimited JSON
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	// Log startup to stderr (not stdout which is for protocol)
	fmt.Fprintln(os.Stderr, "[rook-mcp] Server starting, store:", s.store.Path())

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		fmt.Fprintln(os.Stderr, "[rook-mcp] Received:", line)

		var req Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			fmt.Fprintln(os.Stderr, "[rook-mcp] Parse error:", err)
			s.sendError(nil, -32700, "Parse error", err.Error())
			continue
		}

		s.handleRequest(&req)
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, "[rook-mcp] Scanner error:", err)
		return err
	}

	fmt.Fprintln(os.Stderr, "[rook-mcp] Server shutting down")
	return nil
}

func (s *Server) handleRequest(req *Request) {
	// A request without an ID is a notification; no response expected.
	isNotification := req.ID == nil

	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(req)
	case "resources/list":
		s.handleResourcesList(req)
	case "resources/read":
		s.handleResourcesRead(req)
	case "ping":
		s.sendResult(req.ID, map[string]interface{}{})
	case "notifications/cancelled":
		return
	default:
		if !isNotification {
			s.sendError(req.ID, -32601, "Method not found", req.Method)
		}
	}
}

func (s *Server) handleInitialize(req *Request) {
	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": ServerCapabilities{
			Tools:     &ToolsCapability{},
			Resources: &ResourcesCapability{},
		},
		"serverInfo": ServerInfo{
			Name:    "rook-mcp",
			Version: "0.1.0",
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsList(req *Request) {
	s.sendResult(req.ID, map[string]interface{}{"tools": GenerateToolSchemas()})
}

func (s *Server) handleToolsCall(req *Request) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}

	if req.Params != nil {
		if err := json.Unmarshal(*req.Params, &params); err != nil {
			s.sendError(req.ID, -32602, "Invalid params", err.Error())
			return
		}
	}

	s.sendResult(req.ID, s.callTool(params.Name, params.Arguments))
}

// callTool dispatches one tool invocation through the shared registry.
// Failures become envelope text with the isError flag set, never JSON-RPC
// errors, so agents always see the structured code and suggestion.
func (s *Server) callTool(name string, args map[string]interface{}) ToolResult {
	toolName, ok := registryName(name)
	if !ok {
		err := roam.Errorf(roam.ErrCodeToolNotFound, "unknown tool %q", name).
			WithSuggestion("Call tools/list to see the available tools.")
		return errorResult(err)
	}

	if args == nil {
		args = map[string]interface{}{}
	}
	if s.graph != "" {
		if _, ok := args["graph"]; !ok {
			args["graph"] = s.graph
		}
	}

	res, err := tools.RouteToolCall(toolName, args, tools.RouteOptions{
		Store:  s.store,
		Client: s.client,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[rook-mcp] Tool %s failed: %v\n", name, err)
		return errorResult(err)
	}
	return successResult(res)
}

func errorResult(err error) ToolResult {
	return ToolResult{
		Content: []ToolContent{{Type: "text", Text: marshalEnvelope(tools.Failure(err))}},
		IsError: true,
	}
}

// successResult carries the envelope as the text item; image content rides
// alongside so clients that render pictures can.
func successResult(res *tools.Result) ToolResult {
	out := ToolResult{
		Content: []ToolContent{{Type: "text", Text: marshalEnvelope(tools.Success(res.Data))}},
	}
	for _, item := range res.Content {
		if item.Type != tools.ContentBlob || !strings.HasPrefix(item.MediaType, "image/") {
			continue
		}
		out.Content = append(out.Content, ToolContent{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(item.Blob),
			MimeType: item.MediaType,
		})
	}
	return out
}

func marshalEnvelope(env tools.Envelope) string {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"ok":false,"error":{"code":"INTERNAL_ERROR","message":%q}}`, err.Error())
	}
	return string(data)
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	s.send(resp)
}

func (s *Server) sendError(id interface{}, code int, message, data string) {
	resp := Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	s.send(resp)
}

func (s *Server) send(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintln(s.out, string(data))
}
