package roam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GraphInfo describes one graph the desktop app currently has available,
// as reported by the discovery endpoint.
type GraphInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Discovery talks to the graph-agnostic endpoints of the local API: listing
// available graphs and requesting tokens. Used by the setup flows only.
type Discovery struct {
	http     *http.Client
	port     int
	portFile string
	ports    *portCache
}

// NewDiscovery builds a discovery client. Token requests long-poll while the
// user approves the grant inside Roam, so the default client allows several
// minutes before giving up.
func NewDiscovery(opts Options) *Discovery {
	d := &Discovery{
		http:     opts.HTTPClient,
		port:     opts.Port,
		portFile: opts.PortFile,
		ports:    &sharedPorts,
	}
	if d.http == nil {
		d.http = &http.Client{Timeout: 5 * time.Minute}
	}
	return d
}

func (d *Discovery) baseURL() string {
	port := d.port
	if port == 0 {
		port = d.ports.get(func() int { return discoverPort(d.portFile) })
	}
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}

// ListGraphs returns the graphs the running app can issue tokens for.
// A single attempt: setup flows prompt the user to open Roam rather than
// silently retrying for minutes.
func (d *Discovery) ListGraphs() ([]GraphInfo, error) {
	resp, err := d.http.Get(d.baseURL() + "/api/graphs")
	if err != nil {
		d.ports.invalidate()
		return nil, discoveryUnreachable(err)
	}
	defer resp.Body.Close()

	var payload struct {
		Success bool `json:"success"`
		Result  struct {
			Graphs []GraphInfo `json:"graphs"`
		} `json:"result"`
		Error *apiError `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return nil, Errorf(ErrCodeInternal, "Roam returned an unreadable graph list: %v", err)
	}
	if !payload.Success {
		return nil, apiFailureError(payload.Error)
	}
	return payload.Result.Graphs, nil
}

// RequestToken asks the app to issue a token for one graph at the given
// access level. The call blocks until the user approves or denies the grant
// inside Roam (or the request times out).
func (d *Discovery) RequestToken(graphName, graphType, accessLevel string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"graph":       graphName,
		"type":        graphType,
		"accessLevel": accessLevel,
	})
	if err != nil {
		return "", Errorf(ErrCodeInternal, "encode token request: %v", err)
	}

	resp, err := d.http.Post(d.baseURL()+"/api/graphs/tokens/request", "application/json", bytes.NewReader(body))
	if err != nil {
		d.ports.invalidate()
		return "", discoveryUnreachable(err)
	}
	defer resp.Body.Close()

	var payload struct {
		Success bool `json:"success"`
		Result  struct {
			Token       string `json:"token"`
			AccessLevel string `json:"accessLevel"`
		} `json:"result"`
		Error *apiError `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", Errorf(ErrCodeInternal, "Roam returned an unreadable token response: %v", err)
	}
	if !payload.Success {
		if payload.Error != nil && payload.Error.Code == "request-denied" {
			return "", NewError(ErrCodePermissionDenied, "the token request was denied in Roam").
				WithSuggestion("Approve the access prompt inside Roam when it appears, then retry.")
		}
		return "", apiFailureError(payload.Error)
	}
	if !ValidToken(payload.Result.Token) {
		return "", Errorf(ErrCodeInternal, "Roam issued a token in an unexpected format")
	}
	return payload.Result.Token, nil
}

func discoveryUnreachable(cause error) *Error {
	return Errorf(ErrCodeConnectionFailed, "could not reach Roam's local API: %v", cause).
		WithSuggestion("Open the Roam desktop app (and unlock the graph if it is encrypted), then retry.")
}

// TokenProbe is the result of the best-effort token-status check.
type TokenProbe struct {
	Status      string
	AccessLevel string
}

// TokenInfo checks whether the stored token is still recognized. It never
// breaks a caller's workflow: any failure other than an explicit
// token-not-recognized signal reports TokenUnknown instead of an error.
func (c *Client) TokenInfo() TokenProbe {
	req, err := http.NewRequest(http.MethodGet, c.baseURL()+"/api/graphs/tokens/info", nil)
	if err != nil {
		return TokenProbe{Status: TokenUnknown}
	}
	req.Header.Set("Authorization", "Bearer "+c.graph.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionError(err) {
			c.ports.invalidate()
		}
		return TokenProbe{Status: TokenUnknown}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return TokenProbe{Status: TokenUnknown}
	}

	var payload struct {
		Success bool `json:"success"`
		Result  struct {
			AccessLevel string `json:"accessLevel"`
		} `json:"result"`
		Error *apiError `json:"error"`
	}
	if jsonErr := json.Unmarshal(data, &payload); jsonErr != nil {
		return TokenProbe{Status: TokenUnknown}
	}

	// Only an explicit token-not-recognized signal counts as revoked;
	// everything else (including other 401s) stays unknown.
	revoked := payload.Error != nil &&
		(payload.Error.Code == apiCodeTokenNotFound || payload.Error.Code == apiCodeInvalidToken)
	switch {
	case payload.Success:
		return TokenProbe{Status: TokenActive, AccessLevel: payload.Result.AccessLevel}
	case revoked:
		return TokenProbe{Status: TokenRevoked}
	default:
		return TokenProbe{Status: TokenUnknown}
	}
}

func (c *Client) baseURL() string {
	port := c.port
	if port == 0 {
		port = c.ports.get(func() int { return discoverPort(c.portFile) })
	}
	return fmt.Sprintf("http://127.0.0.1:%d", port)
}
