// Package theme defines the color palettes used for table output.
package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Theme maps the color roles of a rendered report.
type Theme struct {
	Name    string
	Border  lipgloss.Color // table rules
	Dim     lipgloss.Color // hints, empty rows
	Muted   lipgloss.Color // labels, progress text
	Text    lipgloss.Color // cell values
	Accent  lipgloss.Color // titles and headers
	Tokens  lipgloss.Color // token totals
	Cost    lipgloss.Color // USD amounts
	Warning lipgloss.Color
	Error   lipgloss.Color
}

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:    "flexoki-dark",
	Border:  lipgloss.Color("#575653"),
	Dim:     lipgloss.Color("#575653"),
	Muted:   lipgloss.Color("#878580"),
	Text:    lipgloss.Color("#FFFCF0"),
	Accent:  lipgloss.Color("#3AA99F"),
	Tokens:  lipgloss.Color("#4385BE"),
	Cost:    lipgloss.Color("#879A39"),
	Warning: lipgloss.Color("#DA702C"),
	Error:   lipgloss.Color("#D14D41"),
}

// CatppuccinMocha is a soft pastel theme.
var CatppuccinMocha = Theme{
	Name:    "catppuccin-mocha",
	Border:  lipgloss.Color("#7F849C"),
	Dim:     lipgloss.Color("#6C7086"),
	Muted:   lipgloss.Color("#A6ADC8"),
	Text:    lipgloss.Color("#CDD6F4"),
	Accent:  lipgloss.Color("#89B4FA"),
	Tokens:  lipgloss.Color("#94E2D5"),
	Cost:    lipgloss.Color("#A6E3A1"),
	Warning: lipgloss.Color("#FAB387"),
	Error:   lipgloss.Color("#F38BA8"),
}

// TokyoNight is a cool blue/purple theme.
var TokyoNight = Theme{
	Name:    "tokyo-night",
	Border:  lipgloss.Color("#565F89"),
	Dim:     lipgloss.Color("#565F89"),
	Muted:   lipgloss.Color("#A9B1D6"),
	Text:    lipgloss.Color("#C0CAF5"),
	Accent:  lipgloss.Color("#7AA2F7"),
	Tokens:  lipgloss.Color("#7DCFFF"),
	Cost:    lipgloss.Color("#9ECE6A"),
	Warning: lipgloss.Color("#FF9E64"),
	Error:   lipgloss.Color("#F7768E"),
}

// Terminal sticks to the ANSI 16 colors.
var Terminal = Theme{
	Name:    "terminal",
	Border:  lipgloss.Color("8"),
	Dim:     lipgloss.Color("8"),
	Muted:   lipgloss.Color("7"),
	Text:    lipgloss.Color("15"),
	Accent:  lipgloss.Color("6"),
	Tokens:  lipgloss.Color("4"),
	Cost:    lipgloss.Color("2"),
	Warning: lipgloss.Color("3"),
	Error:   lipgloss.Color("1"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Active is the theme used by the renderer.
var Active = FlexokiDark

// Names lists the theme names in display order.
func Names() []string {
	return lo.Map(All, func(t Theme, _ int) string { return t.Name })
}

// Lookup returns the theme called name.
func Lookup(name string) (Theme, bool) {
	return lo.Find(All, func(t Theme) bool { return t.Name == name })
}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return FlexokiDark
}

// SetActive sets the active theme by name. It reports whether name was known.
func SetActive(name string) bool {
	t, ok := Lookup(name)
	if !ok {
		t = FlexokiDark
	}
	Active = t
	return ok
}
