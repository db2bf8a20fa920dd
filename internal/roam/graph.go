// Package roam speaks the Roam desktop app's local HTTP API: one client per
// resolved graph, structured error classification, and a bounded
// reconnect-with-relaunch loop for the case where the app is closed or still
// starting up.
package roam

import "strings"

// Graph types. Hosted graphs are cloud-synced; offline graphs live only on
// this machine (and may be encrypted).
const (
	GraphHosted  = "hosted"
	GraphOffline = "offline"
)

// Access levels a token can be scoped to.
const (
	AccessReadOnly   = "read-only"
	AccessReadAppend = "read-append"
	AccessFull       = "full"
)

// Token statuses tracked per connection. Unknown is reserved for the
// best-effort probe; it is never persisted.
const (
	TokenActive  = "active"
	TokenRevoked = "revoked"
	TokenUnknown = "unknown"
)

// TokenPrefix is the fixed prefix of every local API token Roam issues.
const TokenPrefix = "roam-graph-token-"

// Graph is a fully resolved, authenticated graph reference, produced by the
// resolver and consumed by one Client for one call. Never persisted.
type Graph struct {
	Name        string
	Type        string
	Token       string
	Nickname    string
	AccessLevel string
	TokenStatus string
}

// DisplayName prefers the nickname when one is set.
func (g Graph) DisplayName() string {
	if g.Nickname != "" {
		return g.Nickname
	}
	return g.Name
}

// IsOffline reports whether calls must carry the offline type qualifier.
func (g Graph) IsOffline() bool {
	return g.Type == GraphOffline
}

// ValidToken reports whether tok looks like a Roam-issued local API token.
func ValidToken(tok string) bool {
	return strings.HasPrefix(tok, TokenPrefix) && len(tok) > len(TokenPrefix)
}
