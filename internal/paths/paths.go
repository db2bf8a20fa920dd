// Package paths centralizes the on-disk locations rook reads and writes:
// - the rook config directory (connection store)
// - the user preferences file (XDG-style)
// - the port discovery file written by the Roam desktop app
//
// Keeping these in one place means the CLI, the MCP server, and tests all
// agree on where state lives and how overrides apply.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EnvConfigDir overrides the rook config directory (useful for tests
	// and scripted environments).
	EnvConfigDir = "ROOK_CONFIG_DIR"

	connectionsFile = "connections.json"
	preferencesFile = "config.toml"
	portFile        = "local-api-port.json"
)

// ConfigDir resolves the rook configuration directory with precedence:
//  1. explicit override (--config-dir flag)
//  2. $ROOK_CONFIG_DIR
//  3. ~/.rook
func ConfigDir(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return filepath.Clean(explicit), nil
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigDir)); env != "" {
		return filepath.Clean(env), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".rook"), nil
}

// Connections returns the connection store path inside dir.
func Connections(dir string) string {
	return filepath.Join(dir, connectionsFile)
}

// Preferences returns the user preferences path: $XDG_CONFIG_HOME/rook/config.toml,
// falling back to ~/.config/rook/config.toml.
func Preferences() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "rook", preferencesFile), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rook", preferencesFile), nil
}

// RoamPortFile returns the path of the port discovery file the Roam desktop
// app maintains while its local API is listening (~/.roam/local-api-port.json).
func RoamPortFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".roam", portFile), nil
}
