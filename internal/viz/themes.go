package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the side panel. When Mono is set bubbles are drawn in
// Primary instead of their own fill colour.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Mono      bool
}

var (
	ThemeRamp = Theme{
		Name:      "ramp",
		Primary:   lipgloss.Color("#74a9cf"),
		Secondary: lipgloss.Color("#3690c0"),
		Accent:    lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#ece7f2"),
		Muted:     lipgloss.Color("#6b7a8f"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#e0e0e0"),
		Secondary: lipgloss.Color("#bbbbbb"),
		Accent:    lipgloss.Color("#ffaa00"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#777777"),
		Mono:      true,
	}

	ThemeRetro = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Mono:      true,
	}

	Themes = []Theme{ThemeRamp, ThemeMono, ThemeRetro}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeRamp
}

// NextTheme returns the theme after t, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
