package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/rook/internal/paths"
)

// Preferences are cosmetic and environmental knobs. Anything behavioral
// (which graphs exist, their tokens) lives in the connection store; the
// preferences file is safe to delete at any time.
type Preferences struct {
	API APIPreferences `toml:"api"`
	UI  UIPreferences  `toml:"ui"`
}

// APIPreferences tune how rook reaches the local API.
type APIPreferences struct {
	// Port pins the API port and skips discovery. 0 means discover.
	Port int `toml:"port,omitempty"`
}

// UIPreferences tune human-facing output.
type UIPreferences struct {
	Accent    string `toml:"accent,omitempty"`
	CodeTheme string `toml:"code_theme,omitempty"`
}

// LoadPreferences reads the default preferences file. A missing file (or an
// unresolvable home directory) yields defaults: preferences are optional.
func LoadPreferences() *Preferences {
	path, err := paths.Preferences()
	if err != nil {
		return &Preferences{}
	}
	prefs, err := LoadPreferencesFrom(path)
	if err != nil {
		// Malformed preferences must not block API operations.
		fmt.Fprintf(os.Stderr, "warning: ignoring preferences: %v\n", err)
		return &Preferences{}
	}
	return prefs
}

// LoadPreferencesFrom reads one preferences file. A missing file yields
// defaults; malformed TOML is an error.
func LoadPreferencesFrom(path string) (*Preferences, error) {
	prefs := &Preferences{}
	if strings.TrimSpace(path) == "" {
		return prefs, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := toml.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if prefs.API.Port < 0 || prefs.API.Port > 65535 {
		return nil, fmt.Errorf("parse %s: api.port %d is out of range", path, prefs.API.Port)
	}
	return prefs, nil
}
