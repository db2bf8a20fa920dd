package mcp

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/paths"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/testutil"
)

func newTestServer(t *testing.T, api *testutil.ScriptedAPI) *Server {
	t.Helper()
	store := testutil.NewTestStore(t).
		WithGraph("work-graph", roam.GraphHosted, "work").
		Build()
	return &Server{store: store, client: api.Options()}
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) ToolResult {
	t.Helper()

	buf := &bytes.Buffer{}
	s.out = buf

	params, err := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("marshal tools/call params: %v", err)
	}
	raw := json.RawMessage(params)
	s.handleToolsCall(&Request{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: &raw})

	var resp struct {
		Result ToolResult `json:"result"`
		Error  *RPCError  `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parse tools/call response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("tools/call RPC error: %s", resp.Error.Message)
	}
	if len(resp.Result.Content) == 0 {
		t.Fatal("tools/call returned no content")
	}
	return resp.Result
}

func callResourcesList(t *testing.T, s *Server) []Resource {
	t.Helper()

	buf := &bytes.Buffer{}
	s.out = buf
	s.handleResourcesList(&Request{JSONRPC: "2.0", ID: 1, Method: "resources/list"})

	var resp struct {
		Result struct {
			Resources []Resource `json:"resources"`
		} `json:"result"`
		Error *RPCError `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parse resources/list response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("resources/list error: %s", resp.Error.Message)
	}
	if len(resp.Result.Resources) == 0 {
		t.Fatal("resources/list returned no resources")
	}
	return resp.Result.Resources
}

func callResourcesRead(t *testing.T, s *Server, uri string) ResourceContent {
	t.Helper()

	resp := callResourcesReadResponse(t, s, uri)
	if resp.Error != nil {
		t.Fatalf("resources/read error for %s: %s", uri, resp.Error.Message)
	}
	if len(resp.Result.Contents) != 1 {
		t.Fatalf("expected 1 content for %s, got %d", uri, len(resp.Result.Contents))
	}
	return resp.Result.Contents[0]
}

func callResourcesReadResponse(t *testing.T, s *Server, uri string) struct {
	Result struct {
		Contents []ResourceContent `json:"contents"`
	} `json:"result"`
	Error *RPCError `json:"error,omitempty"`
} {
	t.Helper()

	buf := &bytes.Buffer{}
	s.out = buf
	paramsBytes, err := json.Marshal(map[string]string{"uri": uri})
	if err != nil {
		t.Fatalf("marshal resources/read params: %v", err)
	}
	raw := json.RawMessage(paramsBytes)
	s.handleResourcesRead(&Request{JSONRPC: "2.0", ID: 1, Method: "resources/read", Params: &raw})

	var resp struct {
		Result struct {
			Contents []ResourceContent `json:"contents"`
		} `json:"result"`
		Error *RPCError `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parse resources/read response: %v", err)
	}
	return resp
}

func TestInitializeReportsCapabilities(t *testing.T) {
	s := &Server{}
	buf := &bytes.Buffer{}
	s.out = buf
	s.handleInitialize(&Request{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	var resp struct {
		Result struct {
			ProtocolVersion string             `json:"protocolVersion"`
			Capabilities    ServerCapabilities `json:"capabilities"`
			ServerInfo      ServerInfo         `json:"serverInfo"`
		} `json:"result"`
		Error *RPCError `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parse initialize response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("initialize error: %s", resp.Error.Message)
	}

	if resp.Result.ProtocolVersion != "2024-11-05" {
		t.Errorf("protocolVersion = %q, want 2024-11-05", resp.Result.ProtocolVersion)
	}
	if resp.Result.ServerInfo.Name != "rook-mcp" {
		t.Errorf("serverInfo.name = %q, want rook-mcp", resp.Result.ServerInfo.Name)
	}
	if resp.Result.Capabilities.Tools == nil {
		t.Error("capabilities missing tools")
	}
	if resp.Result.Capabilities.Resources == nil {
		t.Error("capabilities missing resources")
	}
}

func TestToolsListThroughProtocol(t *testing.T) {
	s := &Server{}
	buf := &bytes.Buffer{}
	s.out = buf
	s.handleToolsList(&Request{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	var resp struct {
		Result struct {
			Tools []Tool `json:"tools"`
		} `json:"result"`
		Error *RPCError `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parse tools/list response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("tools/list error: %s", resp.Error.Message)
	}

	names := make(map[string]bool, len(resp.Result.Tools))
	for _, tool := range resp.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"roam_search", "roam_page_create", "roam_daily", "roam_import"} {
		if !names[want] {
			t.Errorf("tools/list missing %s", want)
		}
	}
}

func TestToolsCallRoutesThroughRegistry(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[{"uid":"x1","string":"project kickoff"}]`))
	s := newTestServer(t, api)

	result := callTool(t, s, "roam_search", map[string]interface{}{"query": "project kickoff"})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content[0].Text)
	}
	env := testutil.ParseEnvelope(t, []byte(result.Content[0].Text))
	env.MustSucceed(t)
	if !strings.Contains(result.Content[0].Text, "x1") {
		t.Errorf("result text missing API payload: %s", result.Content[0].Text)
	}

	if api.Calls() != 1 {
		t.Fatalf("API calls = %d, want 1", api.Calls())
	}
	if !strings.Contains(api.Bodies[0], `"action":"search"`) {
		t.Errorf("request body missing search action: %s", api.Bodies[0])
	}
}

func TestToolsCallAcceptsBareToolName(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := newTestServer(t, api)

	result := callTool(t, s, "search", map[string]interface{}{"query": "x"})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", result.Content[0].Text)
	}
	if api.Calls() != 1 {
		t.Fatalf("API calls = %d, want 1", api.Calls())
	}
}

func TestToolsCallUnknownTool(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := newTestServer(t, api)

	result := callTool(t, s, "roam_bogus", nil)

	if !result.IsError {
		t.Fatal("expected isError=true for unknown tool")
	}
	testutil.ParseEnvelope(t, []byte(result.Content[0].Text)).MustFail(t, roam.ErrCodeToolNotFound)
	if api.Calls() != 0 {
		t.Fatalf("unknown tool reached the API: %d calls", api.Calls())
	}
}

func TestToolsCallValidationFailureStaysLocal(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := newTestServer(t, api)

	result := callTool(t, s, "roam_search", map[string]interface{}{})

	if !result.IsError {
		t.Fatal("expected isError=true for missing required argument")
	}
	env := testutil.ParseEnvelope(t, []byte(result.Content[0].Text))
	env.MustFail(t, roam.ErrCodeValidation)
	if api.Calls() != 0 {
		t.Fatalf("invalid call reached the API: %d calls", api.Calls())
	}
}

func TestToolsCallKeepsClassifiedErrors(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.Refused(401, "invalid-token", "Token does not grant access"))
	s := newTestServer(t, api)

	result := callTool(t, s, "roam_search", map[string]interface{}{"query": "x"})

	if !result.IsError {
		t.Fatal("expected isError=true for an authentication failure")
	}
	env := testutil.ParseEnvelope(t, []byte(result.Content[0].Text))
	env.MustFail(t, roam.ErrCodeAuthentication)
	if env.Error.Suggestion == "" {
		t.Error("authentication error lost its suggestion")
	}
	if env.Error.Context["api_code"] != "invalid-token" {
		t.Errorf("api_code context = %v, want invalid-token", env.Error.Context["api_code"])
	}
}

func TestToolsCallPinnedGraph(t *testing.T) {
	store := testutil.NewTestStore(t).
		WithGraph("work-graph", roam.GraphHosted, "work").
		WithGraph("personal-notes", roam.GraphOffline, "home").
		Build()

	t.Run("fills in the graph argument", func(t *testing.T) {
		api := testutil.NewScriptedAPI(testutil.OK(`[]`))
		s := &Server{store: store, graph: "home", client: api.Options()}

		result := callTool(t, s, "roam_search", map[string]interface{}{"query": "x"})
		if result.IsError {
			t.Fatalf("expected success, got error: %s", result.Content[0].Text)
		}
		if got := api.Auths[0]; !strings.Contains(got, "fixture-home") {
			t.Errorf("pinned call used wrong credentials: %s", got)
		}
	})

	t.Run("explicit graph wins", func(t *testing.T) {
		api := testutil.NewScriptedAPI(testutil.OK(`[]`))
		s := &Server{store: store, graph: "home", client: api.Options()}

		result := callTool(t, s, "roam_search", map[string]interface{}{"query": "x", "graph": "work"})
		if result.IsError {
			t.Fatalf("expected success, got error: %s", result.Content[0].Text)
		}
		if got := api.Auths[0]; !strings.Contains(got, "fixture-work") {
			t.Errorf("explicit graph lost to the pin: %s", got)
		}
	})
}

func TestToolsCallInvalidParams(t *testing.T) {
	s := &Server{}
	buf := &bytes.Buffer{}
	s.out = buf

	raw := json.RawMessage(`{"name": 123}`)
	s.handleToolsCall(&Request{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: &raw})

	var resp struct {
		Error *RPCError `json:"error,omitempty"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if resp.Error == nil {
		t.Fatal("expected RPC error for malformed params")
	}
	if resp.Error.Code != -32602 {
		t.Fatalf("error code = %d, want -32602", resp.Error.Code)
	}
}

func TestUnknownMethod(t *testing.T) {
	s := &Server{}

	t.Run("request gets method-not-found", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s.out = buf
		s.handleRequest(&Request{JSONRPC: "2.0", ID: 7, Method: "bogus/method"})

		var resp struct {
			Error *RPCError `json:"error,omitempty"`
		}
		if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &resp); err != nil {
			t.Fatalf("parse response: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != -32601 {
			t.Fatalf("expected -32601, got %+v", resp.Error)
		}
	})

	t.Run("notification stays silent", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s.out = buf
		s.handleRequest(&Request{JSONRPC: "2.0", Method: "bogus/notification"})

		if buf.Len() != 0 {
			t.Fatalf("notification produced output: %s", buf.String())
		}
	})
}

func TestRunSpeaksLineDelimitedJSON(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	store := testutil.NewTestStore(t).
		WithGraph("work-graph", roam.GraphHosted, "work").
		Build()

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		``,
		`this is not json`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`,
		`{"jsonrpc":"2.0","id":3,"method":"ping"}`,
	}, "\n") + "\n"

	out := &bytes.Buffer{}
	s := &Server{store: store, client: api.Options(), in: strings.NewReader(input), out: out}
	if err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	// initialize, parse error, tools/list, ping. Blank lines and
	// notifications produce nothing.
	if len(lines) != 4 {
		t.Fatalf("got %d responses, want 4:\n%s", len(lines), out.String())
	}

	type resp struct {
		ID     interface{}     `json:"id"`
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error,omitempty"`
	}
	parse := func(line string) resp {
		t.Helper()
		var r resp
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("parse response line %q: %v", line, err)
		}
		return r
	}

	first := parse(lines[0])
	if first.ID != float64(1) || first.Error != nil {
		t.Errorf("initialize response: id=%v err=%+v", first.ID, first.Error)
	}

	second := parse(lines[1])
	if second.Error == nil || second.Error.Code != -32700 {
		t.Errorf("garbage line should yield -32700, got %+v", second.Error)
	}

	third := parse(lines[2])
	if third.ID != float64(2) || len(third.Result) == 0 {
		t.Errorf("tools/list response: id=%v result=%s", third.ID, third.Result)
	}

	fourth := parse(lines[3])
	if fourth.ID != float64(3) || fourth.Error != nil {
		t.Errorf("ping response: id=%v err=%+v", fourth.ID, fourth.Error)
	}
}

func TestResourcesListIncludesGuideAndGraphs(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := newTestServer(t, api)
	resources := callResourcesList(t, s)

	uris := make(map[string]bool, len(resources))
	for _, resource := range resources {
		uris[resource.URI] = true
	}

	for _, want := range []string{"rook://guide/agent", "rook://graphs"} {
		if !uris[want] {
			t.Fatalf("missing resource in list: %s", want)
		}
	}
}

func TestResourcesReadAgentGuide(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := newTestServer(t, api)

	content := callResourcesRead(t, s, "rook://guide/agent")
	if strings.TrimSpace(content.Text) == "" {
		t.Fatal("agent guide content is empty")
	}
	if content.MimeType != "text/markdown" {
		t.Fatalf("expected guide mimeType text/markdown, got %q", content.MimeType)
	}
	for _, tool := range []string{"roam_search", "roam_daily", "roam_block_add"} {
		if !strings.Contains(content.Text, tool) {
			t.Errorf("agent guide never mentions %s", tool)
		}
	}
}

func TestResourcesReadGraphs(t *testing.T) {
	store := testutil.NewTestStore(t).
		WithGraph("work-graph", roam.GraphHosted, "work").
		WithGraph("personal-notes", roam.GraphOffline, "home").
		Build()
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := &Server{store: store, client: api.Options()}

	content := callResourcesRead(t, s, "rook://graphs")
	if content.MimeType != "application/json" {
		t.Fatalf("expected graphs mimeType application/json, got %q", content.MimeType)
	}
	for _, want := range []string{`"work"`, `"home"`, `"work-graph"`, `"personal-notes"`} {
		if !strings.Contains(content.Text, want) {
			t.Errorf("graph list missing %s:\n%s", want, content.Text)
		}
	}
	if strings.Contains(content.Text, roam.TokenPrefix) {
		t.Fatal("graph list leaked a token")
	}
}

func TestResourcesReadGraphsWithoutStoreFile(t *testing.T) {
	store := config.NewStore(paths.Connections(t.TempDir()))
	s := &Server{store: store}

	content := callResourcesRead(t, s, "rook://graphs")
	if !strings.Contains(content.Text, `"graphs": []`) {
		t.Fatalf("expected empty graph list, got:\n%s", content.Text)
	}
}

func TestResourcesReadUnknown(t *testing.T) {
	api := testutil.NewScriptedAPI(testutil.OK(`[]`))
	s := newTestServer(t, api)

	resp := callResourcesReadResponse(t, s, "rook://does-not-exist")
	if resp.Error == nil {
		t.Fatal("expected error for unknown resource")
	}
	if resp.Error.Code != -32602 {
		t.Fatalf("expected error code -32602, got %d", resp.Error.Code)
	}
}
