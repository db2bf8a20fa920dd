package tools

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/paths"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/testutil"
)

func TestRouteToolCallUnknownTool(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("bogus", nil, RouteOptions{Store: store, Client: api.Options()})
	re := mustCode(t, err, roam.ErrCodeToolNotFound)
	if re.Context["available_tools"] == nil {
		t.Error("expected available_tools context")
	}
	if api.Calls() != 0 {
		t.Errorf("unknown tool reached the API: %d calls", api.Calls())
	}
}

func TestRouteToolCallValidatesBeforeResolving(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("search", map[string]any{}, RouteOptions{Store: store, Client: api.Options()})
	mustCode(t, err, roam.ErrCodeValidation)
	if api.Calls() != 0 {
		t.Errorf("invalid call reached the API: %d calls", api.Calls())
	}
}

func TestRouteSearchSingleGraphAutoSelects(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"results":[{"uid":"x1","string":"project kickoff"}]}`))

	res, err := RouteToolCall("search", map[string]any{"query": "project kickoff"}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Content) != 1 || res.Content[0].Type != ContentText {
		t.Fatalf("unexpected content: %+v", res.Content)
	}
	if !strings.Contains(res.Content[0].Text, `"x1"`) {
		t.Errorf("text content missing result: %s", res.Content[0].Text)
	}

	if api.Calls() != 1 {
		t.Fatalf("got %d API calls, want 1", api.Calls())
	}
	if api.URLs[0] != "http://127.0.0.1:7777/api/work-graph" {
		t.Errorf("url = %s", api.URLs[0])
	}
	if want := "Bearer " + roam.TokenPrefix + "fixture-work"; api.Auths[0] != want {
		t.Errorf("auth = %q, want %q", api.Auths[0], want)
	}
	if !strings.Contains(api.Bodies[0], `"action":"search"`) || !strings.Contains(api.Bodies[0], `"query":"project kickoff"`) {
		t.Errorf("body = %s", api.Bodies[0])
	}
}

func TestRouteNoStoreExplainsSetup(t *testing.T) {
	store := config.NewStore(paths.Connections(t.TempDir()))
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("search", map[string]any{"query": "x"}, RouteOptions{Store: store, Client: api.Options()})
	re := mustCode(t, err, roam.ErrCodeConfigNotFound)
	if !strings.Contains(re.Suggestion, "rook setup") {
		t.Errorf("suggestion %q does not mention setup", re.Suggestion)
	}
	if api.Calls() != 0 {
		t.Errorf("unresolved call reached the API: %d calls", api.Calls())
	}
}

func TestRouteTwoGraphsRequiresSelection(t *testing.T) {
	store := testutil.NewTestStore(t).
		WithGraph("work-graph", "hosted", "work").
		WithGraph("personal-notes", "offline", "home").
		Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"results":[]}`))

	_, err := RouteToolCall("search", map[string]any{"query": "x"}, RouteOptions{Store: store, Client: api.Options()})
	re := mustCode(t, err, roam.ErrCodeGraphNotSelected)
	if re.Context["available_graphs"] == nil {
		t.Error("expected available_graphs context")
	}

	res, err := RouteToolCall("search", map[string]any{"query": "x", "graph": "home"}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error with explicit graph: %v", err)
	}
	if res == nil {
		t.Fatal("nil result")
	}
	if want := "Bearer " + roam.TokenPrefix + "fixture-home"; api.Auths[0] != want {
		t.Errorf("auth = %q, want %q", api.Auths[0], want)
	}
	// The offline graph's calls carry the type qualifier.
	if !strings.HasSuffix(api.URLs[0], "/api/personal-notes?type=offline") {
		t.Errorf("url = %s, want offline qualifier", api.URLs[0])
	}
	// The graph selector is routing metadata, not an API argument.
	if strings.Contains(api.Bodies[0], `"graph"`) {
		t.Errorf("graph selector leaked into the API body: %s", api.Bodies[0])
	}
}

func TestRouteGraphSelectorMustBeString(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("search", map[string]any{"query": "x", "graph": 42}, RouteOptions{Store: store, Client: api.Options()})
	mustCode(t, err, roam.ErrCodeValidation)
}

func TestRouteDropsUndeclaredArgs(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("search", map[string]any{"query": "x", "mystery": "y"}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(api.Bodies[0], "mystery") {
		t.Errorf("undeclared arg forwarded: %s", api.Bodies[0])
	}
}

func TestRouteCoercesTypedArgs(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))
	opts := RouteOptions{Store: store, Client: api.Options()}

	// CLI positionals arrive as strings; the wire gets numbers.
	_, err := RouteToolCall("block_move", map[string]any{"uid": "u1", "parent": "p1", "order": "3"}, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(api.Bodies[0], `"order":3`) {
		t.Errorf("order not coerced: %s", api.Bodies[0])
	}
	if !strings.Contains(api.Bodies[0], `"action":"block.move"`) {
		t.Errorf("body = %s", api.Bodies[0])
	}
}

func TestRouteBlockAddOmitsAppendOrder(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	opts := RouteOptions{Store: store}

	t.Run("default appends", func(t *testing.T) {
		api := testutil.NewScriptedAPI(testutil.OK(`{"uid":"b1"}`))
		opts.Client = api.Options()
		_, err := RouteToolCall("block_add", map[string]any{"parent": "Reading List", "content": "note"}, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(api.Bodies[0], `"order"`) {
			t.Errorf("append call should omit order: %s", api.Bodies[0])
		}
	})

	t.Run("explicit position forwarded", func(t *testing.T) {
		api := testutil.NewScriptedAPI(testutil.OK(`{"uid":"b1"}`))
		opts.Client = api.Options()
		_, err := RouteToolCall("block_add", map[string]any{"parent": "Reading List", "content": "note", "order": 0}, opts)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(api.Bodies[0], `"order":0`) {
			t.Errorf("explicit order dropped: %s", api.Bodies[0])
		}
	})
}

func TestRouteDailyDefaultsToToday(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"uid":"d1","title":"August 26th, 2026"}`))

	restore := now
	now = func() time.Time { return time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC) }
	defer func() { now = restore }()

	_, err := RouteToolCall("daily", map[string]any{}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(api.Bodies[0], `"date":"2026-08-26"`) {
		t.Errorf("body = %s", api.Bodies[0])
	}
	if !strings.Contains(api.Bodies[0], `"action":"page.daily"`) {
		t.Errorf("body = %s", api.Bodies[0])
	}
}

func TestRouteDailyRejectsMalformedDate(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("daily", map[string]any{"date": "yesterday"}, RouteOptions{Store: store, Client: api.Options()})
	mustCode(t, err, roam.ErrCodeValidation)
	if api.Calls() != 0 {
		t.Errorf("malformed date reached the API: %d calls", api.Calls())
	}
}

func TestRouteOpenFocusesPage(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"uid":"pg42","title":"Q3 Planning"}`))

	var opened string
	opts := api.Options()
	opts.Launch = func(link string) error {
		opened = link
		return nil
	}

	res, err := RouteToolCall("open", map[string]any{"ref": "Q3 Planning"}, RouteOptions{Store: store, Client: opts})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(opened, "work-graph") || !strings.Contains(opened, "pg42") {
		t.Errorf("deep link = %q", opened)
	}
	if !strings.Contains(res.Content[0].Text, "Q3 Planning") {
		t.Errorf("text = %q", res.Content[0].Text)
	}
}

func TestRouteUploadSendsEncodedFile(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"url":"https://files.roamresearch.com/f/abc"}`))

	payload := []byte{0x89, 'P', 'N', 'G'}
	path := filepath.Join(t.TempDir(), "diagram.png")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := RouteToolCall("upload", map[string]any{"file": path}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(res.Content[0].Text, "files.roamresearch.com") {
		t.Errorf("text = %q", res.Content[0].Text)
	}

	body := api.Bodies[0]
	for _, want := range []string{
		`"action":"file.upload"`,
		`"filename":"diagram.png"`,
		`"mediaType":"image/png"`,
		fmt.Sprintf("%q", base64.StdEncoding.EncodeToString(payload)),
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestRouteUploadMissingFile(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{}`))

	_, err := RouteToolCall("upload", map[string]any{"file": filepath.Join(t.TempDir(), "absent.png")}, RouteOptions{Store: store, Client: api.Options()})
	mustCode(t, err, roam.ErrCodeValidation)
	if api.Calls() != 0 {
		t.Errorf("missing file reached the API: %d calls", api.Calls())
	}
}

func TestRouteDownload(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	payload := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("returns binary content", func(t *testing.T) {
		api := testutil.NewScriptedAPI(testutil.OK(fmt.Sprintf(`{"data":%q,"mediaType":"image/png"}`, encoded)))
		res, err := RouteToolCall("download", map[string]any{"url": "https://files.roamresearch.com/f/abc"}, RouteOptions{Store: store, Client: api.Options()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Content) != 1 || res.Content[0].Type != ContentBlob {
			t.Fatalf("unexpected content: %+v", res.Content)
		}
		if res.Content[0].MediaType != "image/png" {
			t.Errorf("media type = %q", res.Content[0].MediaType)
		}
		if string(res.Content[0].Blob) != string(payload) {
			t.Errorf("blob bytes differ")
		}
	})

	t.Run("writes to a local path when asked", func(t *testing.T) {
		api := testutil.NewScriptedAPI(testutil.OK(fmt.Sprintf(`{"data":%q,"mediaType":"image/png"}`, encoded)))
		out := filepath.Join(t.TempDir(), "saved.png")
		res, err := RouteToolCall("download", map[string]any{"url": "https://files.roamresearch.com/f/abc", "out": out}, RouteOptions{Store: store, Client: api.Options()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Content[0].Type != ContentText || !strings.Contains(res.Content[0].Text, out) {
			t.Errorf("text = %+v", res.Content[0])
		}
		written, err := os.ReadFile(out)
		if err != nil {
			t.Fatalf("read saved file: %v", err)
		}
		if string(written) != string(payload) {
			t.Errorf("saved bytes differ")
		}
	})
}

func TestRouteImportBuildsBatch(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"created":3}`))

	path := filepath.Join(t.TempDir(), "meeting-notes.md")
	content := "# Agenda\n\n- review roadmap\n- assign owners\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := RouteToolCall("import", map[string]any{"file": path}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := api.Bodies[0]
	for _, want := range []string{
		`"action":"batch"`,
		`"page":"meeting-notes"`,
		`"content":"Agenda"`,
		`"content":"review roadmap"`,
		`"children"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestRouteImportPageOverride(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.OK(`{"created":1}`))

	path := filepath.Join(t.TempDir(), "x.md")
	if err := os.WriteFile(path, []byte("just a line\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := RouteToolCall("import", map[string]any{"file": path, "page": "Product Spec"}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(api.Bodies[0], `"page":"Product Spec"`) {
		t.Errorf("body = %s", api.Bodies[0])
	}
}

func TestRouteErrorsPassThroughUnmodified(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(testutil.Refused(401, "invalid-token", "token check failed"))

	_, err := RouteToolCall("search", map[string]any{"query": "x"}, RouteOptions{Store: store, Client: api.Options()})
	re := mustCode(t, err, roam.ErrCodeAuthentication)
	if re.Suggestion == "" {
		t.Error("client suggestion stripped in routing")
	}
	if re.Context["api_code"] != "invalid-token" {
		t.Errorf("api_code context = %v", re.Context["api_code"])
	}
}

func TestRouteRetriesThroughRouter(t *testing.T) {
	store := testutil.NewTestStore(t).WithGraph("work-graph", "hosted", "work").Build()
	api := testutil.NewScriptedAPI(
		testutil.Step{Err: syscall.ECONNREFUSED},
		testutil.OK(`{"results":[]}`),
	)

	_, err := RouteToolCall("search", map[string]any{"query": "x"}, RouteOptions{Store: store, Client: api.Options()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.Calls() != 2 {
		t.Errorf("got %d API calls, want 2", api.Calls())
	}
}

func mustCode(t *testing.T, err error, code string) *roam.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil error", code)
	}
	re, ok := roam.AsError(err)
	if !ok {
		t.Fatalf("error is not classified: %v", err)
	}
	if re.Code != code {
		t.Fatalf("code = %s, want %s (%s)", re.Code, code, re.Message)
	}
	return re
}
