// Package testutil provides reusable fixtures for rook integration tests:
// temporary connection stores and a scripted local API.
package testutil

import (
	"testing"

	"github.com/aidanlsb/rook/internal/config"
	"github.com/aidanlsb/rook/internal/paths"
	"github.com/aidanlsb/rook/internal/roam"
)

// TestStore builds a temporary connection store. Call Build to write it.
type TestStore struct {
	t     *testing.T
	conns []config.Connection
}

// NewTestStore creates a new store builder.
func NewTestStore(t *testing.T) *TestStore {
	t.Helper()
	return &TestStore{t: t}
}

// WithGraph adds a connection with a generated token.
func (s *TestStore) WithGraph(name, graphType, nickname string) *TestStore {
	s.conns = append(s.conns, config.Connection{
		Name:     name,
		Type:     graphType,
		Token:    roam.TokenPrefix + "fixture-" + nickname,
		Nickname: nickname,
	})
	return s
}

// WithConnection adds a fully specified connection.
func (s *TestStore) WithConnection(conn config.Connection) *TestStore {
	s.conns = append(s.conns, conn)
	return s
}

// Build writes the configured connections into a store under a temp dir.
// Saving goes through the real validation path, so fixtures stay legal.
func (s *TestStore) Build() *config.Store {
	s.t.Helper()
	store := config.NewStore(paths.Connections(s.t.TempDir()))
	for _, conn := range s.conns {
		if err := store.Save(conn); err != nil {
			s.t.Fatalf("save fixture connection %q: %v", conn.Nickname, err)
		}
	}
	return store
}
