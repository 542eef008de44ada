package theme

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// NoColor returns true if color output should be disabled.
func NoColor(explicit bool) bool {
	if explicit {
		return true
	}
	return os.Getenv("NO_COLOR") != ""
}

// Theme is an immutable palette shared by the map surface and its widgets.
// Consumers read it; nothing mutates a Theme after construction.
type Theme struct {
	Name string

	Primary           lipgloss.TerminalColor
	PrimaryContrast   lipgloss.TerminalColor // text drawn on Primary
	Secondary         lipgloss.TerminalColor
	SecondaryContrast lipgloss.TerminalColor // text drawn on Secondary

	Success lipgloss.TerminalColor
	Danger  lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Muted   lipgloss.TerminalColor
}

// Dark is the default palette.
func Dark() Theme {
	return Theme{
		Name:              "dark",
		Primary:           lipgloss.Color("#3D6DFF"),
		PrimaryContrast:   lipgloss.Color("#FFFFFF"),
		Secondary:         lipgloss.Color("#7C3AED"),
		SecondaryContrast: lipgloss.Color("#FFFFFF"),
		Success:           lipgloss.Color("#2AA876"),
		Danger:            lipgloss.Color("#D9534F"),
		Warning:           lipgloss.Color("#F0AD4E"),
		Muted:             lipgloss.Color("#6C757D"),
	}
}

func Light() Theme {
	return Theme{
		Name:              "light",
		Primary:           lipgloss.Color("#1D4ED8"),
		PrimaryContrast:   lipgloss.Color("#FFFFFF"),
		Secondary:         lipgloss.Color("#6D28D9"),
		SecondaryContrast: lipgloss.Color("#FFFFFF"),
		Success:           lipgloss.Color("#15803D"),
		Danger:            lipgloss.Color("#B91C1C"),
		Warning:           lipgloss.Color("#B45309"),
		Muted:             lipgloss.Color("#5A5A5A"),
	}
}

// Fallback is used by widgets when no theme is available. It carries no
// colors so output degrades to the terminal defaults.
func Fallback() Theme {
	none := lipgloss.NoColor{}
	return Theme{
		Name:              "none",
		Primary:           none,
		PrimaryContrast:   none,
		Secondary:         none,
		SecondaryContrast: none,
		Success:           none,
		Danger:            none,
		Warning:           none,
		Muted:             none,
	}
}

// ByName resolves "dark", "light" or "none". Unknown names report false.
func ByName(name string) (Theme, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dark":
		return Dark(), true
	case "light":
		return Light(), true
	case "none":
		return Fallback(), true
	}
	return Theme{}, false
}

// Button styles a toolbar button.
func (t Theme) Button() lipgloss.Style {
	return lipgloss.NewStyle().Padding(0, 1).Bold(true).
		Background(t.Primary).Foreground(t.PrimaryContrast)
}

// Highlight styles selected features on the map surface.
func (t Theme) Highlight() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Secondary)
}

// Faint styles unselected map content and secondary text.
func (t Theme) Faint() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted)
}

// Notice styles a snackbar message for the given severity.
func (t Theme) Notice(warn bool) lipgloss.Style {
	if warn {
		return lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(t.Success)
}
