// Package ui renders rook's human-facing output: lipgloss styles, glamour
// markdown, plain tables, and a TTY-gated spinner. Machine output (--json,
// MCP) never goes through this package.
package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): primary text
// - Accent (soft purple, overridable via preferences): nicknames, highlights
// - Muted (gray): hints, secondary info
// - No colored success/error - unicode symbols only

const defaultAccent = "#A78BFA"

var (
	// Accent highlights graph nicknames, paths, and other references.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent))

	// Muted renders hints and secondary info.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold is plain emphasis.
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines the accent color with bold.
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccent)).Bold(true)
)

// accentColor is the active accent, "" when disabled. ConfigureTheme is the
// single writer; it runs once during root-command setup.
var accentColor = defaultAccent

// ConfigureTheme applies the accent color from preferences. "none", "off",
// "default", or an unparseable value fall back to no accent; the empty
// string keeps the built-in default.
func ConfigureTheme(accent string) {
	if strings.TrimSpace(accent) == "" {
		return
	}
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		Accent = lipgloss.NewStyle()
		AccentBold = lipgloss.NewStyle().Bold(true)
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// AccentColor returns the active accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// normalizeAccentColor accepts an ANSI 256 code ("39") or a hex color
// ("#7aa2f7", "#abc"); anything else disables the accent.
func normalizeAccentColor(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = strings.Repeat(string(hex[0]), 2) +
				strings.Repeat(string(hex[1]), 2) +
				strings.Repeat(string(hex[2]), 2)
		}
		if len(hex) != 6 {
			return "", false
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", false
		}
		return "#" + hex, true
	}

	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	return "", false
}
