package cli

import (
	"encoding/json"
	"strings"
	"syscall"
	"testing"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/paths"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/testutil"
)

func TestGraphListJSON(t *testing.T) {
	dir := seedStore(t,
		hostedConn("work-graph", "work"),
		offlineConn("personal-notes", "home"),
	)

	res := runCLI(t, "graph", "list", "--json", "--config-dir", dir)
	env := res.envelope(t).MustSucceed(t)

	var data struct {
		Graphs []graphRow `json:"graphs"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Graphs) != 2 {
		t.Fatalf("got %d graphs, want 2", len(data.Graphs))
	}
	for _, g := range data.Graphs {
		if strings.Contains(res.Stdout, roam.TokenPrefix) {
			t.Fatalf("token leaked into listing for %q:\n%s", g.Nickname, res.Stdout)
		}
	}
}

func TestGraphListEmptyIsNotAnError(t *testing.T) {
	res := runCLI(t, "graph", "list", "--json", "--config-dir", t.TempDir())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	env := res.envelope(t).MustSucceed(t)
	var data struct {
		Graphs []graphRow `json:"graphs"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Graphs) != 0 {
		t.Errorf("got %d graphs, want 0", len(data.Graphs))
	}
}

func TestGraphRemove(t *testing.T) {
	dir := seedStore(t, hostedConn("work-graph", "work"))

	res := runCLI(t, "graph", "remove", "Work", "--json", "--config-dir", dir)
	res.envelope(t).MustSucceed(t)

	store := config.NewStore(paths.Connections(dir))
	conns, err := store.Load()
	if err != nil {
		t.Fatalf("load after remove: %v", err)
	}
	if len(conns) != 0 {
		t.Errorf("connection still present after remove: %+v", conns)
	}

	// A second remove is a miss.
	res = runCLI(t, "graph", "remove", "work", "--json", "--config-dir", dir)
	res.envelope(t).MustFail(t, roam.ErrCodeGraphNotConfigured)
}

func TestGraphConnectSavesConnection(t *testing.T) {
	dir := t.TempDir()
	api := testutil.NewScriptedAPI(
		testutil.OK(`{"token":"` + roam.TokenPrefix + `issued-abc","accessLevel":"read-append"}`),
	)
	withScriptedAPI(t, api)

	res := runCLI(t, "graph", "connect", "work-graph", "--type", "hosted",
		"--nickname", "work", "--access", "read-append", "--json", "--config-dir", dir)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v\nstdout: %s", res.Err, res.Stdout)
	}
	res.envelope(t).MustSucceed(t)

	if !strings.Contains(api.URLs[0], "/api/graphs/tokens/request") {
		t.Errorf("url = %s", api.URLs[0])
	}
	if !strings.Contains(api.Bodies[0], `"accessLevel":"read-append"`) {
		t.Errorf("body = %s", api.Bodies[0])
	}

	store := config.NewStore(paths.Connections(dir))
	conns, err := store.Load()
	if err != nil {
		t.Fatalf("load after connect: %v", err)
	}
	if len(conns) != 1 || conns[0].Token != roam.TokenPrefix+"issued-abc" {
		t.Errorf("connections = %+v", conns)
	}
	if conns[0].AccessLevel != roam.AccessReadAppend {
		t.Errorf("access level = %q, want read-append", conns[0].AccessLevel)
	}
}

func TestGraphConnectDefaultNicknameIsSlug(t *testing.T) {
	dir := t.TempDir()
	api := testutil.NewScriptedAPI(
		testutil.OK(`{"token":"` + roam.TokenPrefix + `issued-abc","accessLevel":"full"}`),
	)
	withScriptedAPI(t, api)

	res := runCLI(t, "graph", "connect", "Work_Graph_2026", "--json", "--config-dir", dir)
	res.envelope(t).MustSucceed(t)

	store := config.NewStore(paths.Connections(dir))
	conns, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(conns) != 1 || conns[0].Nickname != "work-graph-2026" {
		t.Errorf("connections = %+v, want nickname work-graph-2026", conns)
	}
	if conns[0].LastKnownTokenStatus != roam.TokenActive {
		t.Errorf("token status = %q, want active", conns[0].LastKnownTokenStatus)
	}
}

func TestGraphConnectDeniedRequest(t *testing.T) {
	api := testutil.NewScriptedAPI(
		testutil.Refused(200, "request-denied", "the user denied the request"),
	)
	withScriptedAPI(t, api)

	res := runCLI(t, "graph", "connect", "work-graph", "--json", "--config-dir", t.TempDir())
	res.envelope(t).
		MustFail(t, roam.ErrCodePermissionDenied).
		MustSuggest(t, "Approve")
}

func TestGraphStatusRecordsProbeResult(t *testing.T) {
	dir := seedStore(t, hostedConn("work-graph", "work"))
	api := testutil.NewScriptedAPI(testutil.OK(`{"accessLevel":"read-only"}`))
	withScriptedAPI(t, api)

	res := runCLI(t, "graph", "status", "--json", "--config-dir", dir)
	res.envelope(t).MustSucceed(t)

	store := config.NewStore(paths.Connections(dir))
	conns, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conns[0].LastKnownTokenStatus != roam.TokenActive {
		t.Errorf("token status = %q, want active", conns[0].LastKnownTokenStatus)
	}
	if conns[0].AccessLevel != roam.AccessReadOnly {
		t.Errorf("access level = %q, want read-only", conns[0].AccessLevel)
	}
}

func TestGraphStatusUnknownIsNeverPersisted(t *testing.T) {
	dir := seedStore(t, hostedConn("work-graph", "work"))
	api := testutil.NewScriptedAPI(testutil.Step{Err: syscall.ECONNREFUSED})
	withScriptedAPI(t, api)

	res := runCLI(t, "graph", "status", "--json", "--config-dir", dir)
	res.envelope(t).MustSucceed(t)
	if !strings.Contains(res.Stdout, `"probed": "unknown"`) {
		t.Errorf("expected an unknown probe in output:\n%s", res.Stdout)
	}

	store := config.NewStore(paths.Connections(dir))
	conns, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if conns[0].LastKnownTokenStatus != "" {
		t.Errorf("unknown probe was persisted: %q", conns[0].LastKnownTokenStatus)
	}
}

func TestGraphListJSONCarriesDedupWarning(t *testing.T) {
	dir := seedStore(t,
		hostedConn("everywhere-graph", "ew-hosted"),
		offlineConn("everywhere-graph", "ew-offline"),
	)

	res := runCLI(t, "graph", "list", "--json", "--config-dir", dir)
	env := res.envelope(t).MustSucceed(t)

	found := false
	for _, w := range env.Warnings {
		if w.Code == "dedup" && strings.Contains(w.Message, `"everywhere-graph"`) {
			found = true
		}
	}
	if !found {
		t.Fatalf("no dedup warning in envelope: %s", res.Stdout)
	}

	// Only the hosted record is listed.
	var data struct {
		Graphs []graphRow `json:"graphs"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(data.Graphs) != 1 || data.Graphs[0].Type != roam.GraphHosted {
		t.Errorf("graphs = %+v, want only the hosted connection", data.Graphs)
	}
}
