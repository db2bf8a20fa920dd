package cli

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/paths"
	"github.com/aidanlsb/rook/internal/roam"
	"github.com/aidanlsb/rook/internal/testutil"
)

// runResult captures one CLI execution: stdout, stderr, and whether the
// process would have exited non-zero.
type runResult struct {
	Stdout string
	Stderr string
	Err    error
}

// runCLI executes one command in-process with isolated HOME/XDG state and
// captured output, mirroring what Execute does at the boundary.
func runCLI(t *testing.T, args ...string) runResult {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(paths.EnvConfigDir, "")

	var out, errBuf bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errBuf
	defer func() { stdout, stderr = oldOut, oldErr }()

	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		printHumanError(err)
	}
	return runResult{Stdout: out.String(), Stderr: errBuf.String(), Err: err}
}

// envelope parses the run's stdout as a --json envelope.
func (r runResult) envelope(t *testing.T) *testutil.Envelope {
	t.Helper()
	return testutil.ParseEnvelope(t, []byte(r.Stdout))
}

// withScriptedAPI routes every client the CLI builds through the given
// transport for the duration of the test.
func withScriptedAPI(t *testing.T, api *testutil.ScriptedAPI) {
	t.Helper()
	old := apiOptions
	apiOptions = api.Options
	t.Cleanup(func() { apiOptions = old })
}

// seedStore writes connections into a fresh config dir and returns the dir
// for --config-dir.
func seedStore(t *testing.T, conns ...config.Connection) string {
	t.Helper()
	dir := t.TempDir()
	store := config.NewStore(paths.Connections(dir))
	for _, conn := range conns {
		if err := store.Save(conn); err != nil {
			t.Fatalf("seed connection %q: %v", conn.Nickname, err)
		}
	}
	return dir
}

func hostedConn(name, nickname string) config.Connection {
	return config.Connection{
		Name:     name,
		Type:     roam.GraphHosted,
		Token:    roam.TokenPrefix + "fixture-" + nickname,
		Nickname: nickname,
	}
}

func offlineConn(name, nickname string) config.Connection {
	return config.Connection{
		Name:     name,
		Type:     roam.GraphOffline,
		Token:    roam.TokenPrefix + "fixture-" + nickname,
		Nickname: nickname,
	}
}
