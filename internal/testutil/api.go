package testutil

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aidanlsb/rook/internal/roam"
)

// Step is one scripted HTTP exchange: a transport error, or a response.
type Step struct {
	Err    error
	Status int
	Body   string
}

// OK scripts a successful API response carrying the given result JSON.
func OK(result string) Step {
	return Step{Status: http.StatusOK, Body: `{"success":true,"result":` + result + `}`}
}

// Refused scripts a failed API response with a server error code.
func Refused(status int, code, message string) Step {
	return Step{Status: status, Body: `{"success":false,"error":{"code":"` + code + `","message":"` + message + `"}}`}
}

// ScriptedAPI plays back a fixed sequence of exchanges, repeating the last
// step once the script runs out, and records what the client sent.
type ScriptedAPI struct {
	mu    sync.Mutex
	steps []Step
	calls int

	URLs   []string
	Auths  []string
	Bodies []string
}

// NewScriptedAPI builds a transport that plays the given steps in order.
func NewScriptedAPI(steps ...Step) *ScriptedAPI {
	return &ScriptedAPI{steps: steps}
}

func (a *ScriptedAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.URLs = append(a.URLs, req.URL.String())
	a.Auths = append(a.Auths, req.Header.Get("Authorization"))
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	a.Bodies = append(a.Bodies, string(body))

	i := a.calls
	if i >= len(a.steps) {
		i = len(a.steps) - 1
	}
	a.calls++

	step := a.steps[i]
	if step.Err != nil {
		return nil, step.Err
	}
	status := step.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(step.Body)),
	}, nil
}

// Calls reports how many requests the transport served.
func (a *ScriptedAPI) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Options returns client options wired to this transport: instant retries,
// no app relaunch, and a pinned port so tests never touch the real
// discovery file.
func (a *ScriptedAPI) Options() roam.Options {
	return roam.Options{
		HTTPClient: &http.Client{Transport: a},
		Sleep:      func(d time.Duration) {},
		Launch:     func(string) error { return nil },
		Port:       7777,
	}
}
