package ui

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): Primary text
// - Accent (soft purple #A78BFA): Highlights, ids, interactive elements
// - Muted (gray): Secondary info, timestamps
// - No colored success/error/warning - use unicode symbols only

var (
	// Accent style for artifact ids, project names, highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted style for secondary info, hints, timestamps
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA")).Bold(true)
)

// accentColor holds the configured accent override; empty means the
// built-in default is in effect and AccentColor reports false.
var accentColor string

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ConfigureTheme applies an accent color from config. "none", "off",
// "default", or an unparseable value disables the override.
func ConfigureTheme(accent string) {
	color, ok := normalizeAccentColor(accent)
	if !ok {
		accentColor = ""
		return
	}
	accentColor = color
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// AccentColor returns the configured accent color, if any.
func AccentColor() (string, bool) {
	if accentColor == "" {
		return "", false
	}
	return accentColor, true
}

// normalizeAccentColor validates an accent value: ANSI codes "0"-"255"
// or hex colors "#RGB" / "#RRGGBB". Short hex expands to long form.
func normalizeAccentColor(value string) (string, bool) {
	v := strings.TrimSpace(value)
	switch strings.ToLower(v) {
	case "", "none", "off", "default":
		return "", false
	}

	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 255 {
			return "", false
		}
		return strconv.Itoa(n), true
	}

	if strings.HasPrefix(v, "#") {
		if len(v) == 4 {
			expanded := "#" + strings.Repeat(string(v[1]), 2) +
				strings.Repeat(string(v[2]), 2) + strings.Repeat(string(v[3]), 2)
			v = strings.ToLower(expanded)
		}
		if hexColorRe.MatchString(v) {
			return strings.ToLower(v), true
		}
		return "", false
	}

	return "", false
}
