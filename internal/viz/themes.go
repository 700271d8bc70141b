package viz

import "github.com/charmbracelet/lipgloss"

// Theme colors the side panel. The organism itself is always tinted by its
// live health color.
type Theme struct {
	Name   string
	Header lipgloss.Color
	Graph  lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeSentinel = Theme{
		Name:   "sentinel",
		Header: lipgloss.Color("86"),
		Graph:  lipgloss.Color("49"),
		Muted:  lipgloss.Color("240"),
	}

	ThemeMinimal = Theme{
		Name:   "minimal",
		Header: lipgloss.Color("#ffffff"),
		Graph:  lipgloss.Color("#cccccc"),
		Muted:  lipgloss.Color("#888888"),
	}

	ThemeCyberpunk = Theme{
		Name:   "cyberpunk",
		Header: lipgloss.Color("#ff00ff"),
		Graph:  lipgloss.Color("#00ffff"),
		Muted:  lipgloss.Color("#666666"),
	}

	// All available themes
	Themes = []Theme{
		ThemeSentinel,
		ThemeMinimal,
		ThemeCyberpunk,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeSentinel
}

// NextTheme returns the theme after t in the cycle.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeSentinel
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
