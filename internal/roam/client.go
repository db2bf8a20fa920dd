package roam

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"
)

// Error codes the local API reports in response bodies.
const (
	apiCodeMissingToken       = "missing-token"
	apiCodeInvalidToken       = "invalid-token"
	apiCodeWrongTokenType     = "wrong-token-type"
	apiCodeTokenNotFound      = "token-not-found"
	apiCodeInsufficientScope  = "insufficient-scope"
	apiCodeExcessScope        = "excess-scope"
	apiCodeUnsupportedVersion = "unsupported-api-version"
)

// Downloads can be sizeable but the API is local; cap reads defensively.
const maxResponseBytes = 64 << 20

// Options configures a Client. The zero value selects production behavior;
// tests inject the transport, clock, and launcher.
type Options struct {
	// HTTPClient issues every request. Defaults to a 30s-timeout client.
	HTTPClient *http.Client
	// Sleep waits between reconnect attempts. Defaults to time.Sleep.
	Sleep func(time.Duration)
	// Launch opens the app deep link when the API is unreachable.
	// Defaults to OpenDeepLink.
	Launch func(string) error
	// Port pins the API port and skips discovery (preferences override).
	Port int
	// PortFile overrides the port discovery file location.
	PortFile string
}

// Client issues actions against one resolved graph. Clients are constructed
// per call and carry no connection state beyond the shared port cache.
type Client struct {
	graph    Graph
	http     *http.Client
	sleep    func(time.Duration)
	launch   func(string) error
	port     int
	portFile string
	retry    retryPolicy
	ports    *portCache
}

// NewClient binds a client to a resolved graph.
func NewClient(graph Graph, opts Options) *Client {
	c := &Client{
		graph:    graph,
		http:     opts.HTTPClient,
		sleep:    opts.Sleep,
		launch:   opts.Launch,
		port:     opts.Port,
		portFile: opts.PortFile,
		retry:    defaultRetryPolicy,
		ports:    &sharedPorts,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	if c.launch == nil {
		c.launch = OpenDeepLink
	}
	return c
}

// Graph returns the graph this client is bound to.
func (c *Client) Graph() Graph {
	return c.graph
}

type callRequest struct {
	Action             string         `json:"action"`
	Args               map[string]any `json:"args,omitempty"`
	ExpectedAPIVersion string         `json:"expectedApiVersion"`
}

type apiResponse struct {
	Success    bool            `json:"success"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      *apiError       `json:"error,omitempty"`
	APIVersion string          `json:"apiVersion,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Call performs one action against the graph and returns the raw result
// payload. Connection-class failures (the app closed, still starting, or
// listening on a stale port) are retried with a relaunch and exponential
// backoff; every other failure surfaces immediately as a classified *Error.
func (c *Client) Call(action string, args map[string]any) (json.RawMessage, error) {
	body, err := json.Marshal(callRequest{
		Action:             action,
		Args:               args,
		ExpectedAPIVersion: ExpectedAPIVersion,
	})
	if err != nil {
		return nil, Errorf(ErrCodeValidation, "encode %s arguments: %v", action, err)
	}

	launched := false
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		result, err := c.send(body)
		if err == nil {
			return result, nil
		}
		if !isConnectionError(err) {
			return nil, err
		}
		lastErr = err

		// The cached port may belong to a previous app instance, and the
		// app may not be running at all. Launch failures are advisory.
		c.ports.invalidate()
		if !launched {
			launched = true
			_ = c.launch(AppDeepLink)
		}
		if attempt < c.retry.MaxAttempts-1 {
			c.sleep(c.retry.delay(attempt))
		}
	}
	return nil, connectionFailedError(c.graph, lastErr)
}

func (c *Client) send(body []byte) (json.RawMessage, error) {
	req, err := http.NewRequest(http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, Errorf(ErrCodeInternal, "build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.graph.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		// Losing the connection mid-body is transport-class too.
		return nil, err
	}
	return c.classify(resp.StatusCode, data)
}

func (c *Client) endpoint() string {
	u := c.baseURL() + "/api/" + url.PathEscape(c.graph.Name)
	if c.graph.IsOffline() {
		u += "?type=offline"
	}
	return u
}

// classify maps one HTTP response to a result or a taxonomy error.
func (c *Client) classify(status int, body []byte) (json.RawMessage, error) {
	var payload apiResponse
	decodeErr := json.Unmarshal(body, &payload)

	switch {
	case status >= 200 && status < 300:
		if decodeErr != nil {
			return nil, Errorf(ErrCodeInternal, "Roam returned an unreadable response: %v", decodeErr)
		}
		if payload.Success {
			return payload.Result, nil
		}
		if payload.Error != nil && payload.Error.Code == apiCodeUnsupportedVersion {
			return nil, versionMismatchError(payload.APIVersion)
		}
		return nil, apiFailureError(payload.Error)

	case status == http.StatusUnauthorized:
		return nil, c.authError(payload.Error)

	case status == http.StatusForbidden:
		return nil, c.permissionError(payload.Error)

	case status == http.StatusNotFound:
		return nil, Errorf(ErrCodeUnknownAction,
			"Roam's local API does not recognize this action").
			WithSuggestion("This rook build may be newer than the installed Roam app. Update Roam, or run `rook version` and check the release notes.")

	case status >= 500:
		return nil, internalError(payload.Error, body)

	default:
		return nil, Errorf(ErrCodeInternal, "unexpected response from Roam (HTTP %d)", status)
	}
}

func (c *Client) authError(apiErr *apiError) *Error {
	name := c.graph.DisplayName()
	code := ""
	if apiErr != nil {
		code = apiErr.Code
	}

	err := Errorf(ErrCodeAuthentication, "Roam rejected the stored token for graph %q", name)
	switch code {
	case apiCodeMissingToken:
		err.Message = fmt.Sprintf("no token was sent for graph %q", name)
		err.Suggestion = "The stored connection is incomplete. Run `rook setup` to reconnect this graph."
	case apiCodeInvalidToken:
		err.Suggestion = fmt.Sprintf("The token in ~/.rook/connections.json is not valid for this graph. Run `rook graph connect %s` to issue a fresh one.", c.graph.Name)
	case apiCodeWrongTokenType:
		err.Suggestion = fmt.Sprintf("The stored token was issued for the other graph type (%q is %s). Remove the connection and reconnect it with the matching type.", name, c.graph.Type)
	case apiCodeTokenNotFound:
		err.Message = fmt.Sprintf("the token for graph %q has been revoked", name)
		err.Suggestion = fmt.Sprintf("Run `rook graph connect %s` to request a new token, then retry.", c.graph.Name)
	default:
		err.Suggestion = "Run `rook setup` to reconnect this graph."
	}
	if code != "" {
		err = err.WithContext("api_code", code)
	}
	return err
}

func (c *Client) permissionError(apiErr *apiError) *Error {
	name := c.graph.DisplayName()
	code := ""
	if apiErr != nil {
		code = apiErr.Code
	}

	err := Errorf(ErrCodePermissionDenied, "the token for graph %q does not permit this action", name)
	switch code {
	case apiCodeInsufficientScope:
		level := c.graph.AccessLevel
		if level == "" {
			level = "its current access level"
		}
		err.Suggestion = fmt.Sprintf("The token was issued with %s, which is too low for this action. Run `rook graph connect %s` and grant a higher access level.", level, c.graph.Name)
	case apiCodeExcessScope:
		err.Suggestion = fmt.Sprintf("The token grants more access than graph %q currently allows. Reissue it with `rook graph connect %s`.", name, c.graph.Name)
	default:
		err.Suggestion = fmt.Sprintf("Reissue the token with `rook graph connect %s`.", c.graph.Name)
	}
	if code != "" {
		err = err.WithContext("api_code", code)
	}
	return err
}

// apiFailureError covers a 2xx response whose payload reports failure for a
// reason other than a version mismatch: the app executed the action and
// declined it in-band. Nothing to retry; surface the app's own message.
func apiFailureError(apiErr *apiError) *Error {
	if apiErr == nil || apiErr.Message == "" {
		return NewError(ErrCodeInternal, "Roam reported a failure without details")
	}
	err := NewError(ErrCodeInternal, apiErr.Message)
	if apiErr.Code != "" {
		err = err.WithContext("api_code", apiErr.Code)
	}
	return err
}

func internalError(apiErr *apiError, body []byte) *Error {
	detail := ""
	if apiErr != nil && apiErr.Message != "" {
		detail = apiErr.Message
	} else if len(body) > 0 && len(body) < 300 && utf8.Valid(body) {
		detail = strings.TrimSpace(string(body))
	}

	msg := "Roam's local API reported an internal error"
	if detail != "" {
		msg = msg + ": " + detail
	}
	err := NewError(ErrCodeInternal, msg)
	if strings.Contains(strings.ToLower(detail), "stale") {
		err.Suggestion = "Roam may have been closed while this request was in flight (encrypted graphs lock when the app closes). Reopen and unlock the graph, then retry."
	}
	return err
}

func connectionFailedError(g Graph, cause error) *Error {
	err := Errorf(ErrCodeConnectionFailed,
		"could not reach Roam's local API for graph %q: %v", g.DisplayName(), cause)
	err.Suggestion = "Make sure the Roam desktop app is running and the graph is open (encrypted graphs must be unlocked first). Restart Roam and retry; contact support if this persists."
	return err
}

// isConnectionError reports whether err is transport-level: nothing
// listening, the connection dying mid-request, or a timeout. Only these are
// retried; anything the server actually said is final.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var classified *Error
	if errors.As(err, &classified) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EPIPE):
		return true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
