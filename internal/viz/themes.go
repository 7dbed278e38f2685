package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme for the panel and menus. Particle colours
// come from the field palette and are not themed.
type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeDusk = Theme{
		Name:      "dusk",
		Primary:   lipgloss.Color("#6c5ce7"),
		Secondary: lipgloss.Color("#a29bfe"),
		Accent:    lipgloss.Color("#fd79a8"),
		Text:      lipgloss.Color("#f5f3ff"),
		Muted:     lipgloss.Color("#6b6880"),
		Success:   lipgloss.Color("#55efc4"),
		Warning:   lipgloss.Color("#fdcb6e"),
		Error:     lipgloss.Color("#ff6b6b"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Primary:   lipgloss.Color("#00ff00"),
		Secondary: lipgloss.Color("#00cc00"),
		Accent:    lipgloss.Color("#88ff88"),
		Text:      lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Success:   lipgloss.Color("#88ff88"),
		Warning:   lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeMono = Theme{
		Name:      "mono",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#cccccc"),
		Accent:    lipgloss.Color("#999999"),
		Text:      lipgloss.Color("#eeeeee"),
		Muted:     lipgloss.Color("#666666"),
		Success:   lipgloss.Color("#ffffff"),
		Warning:   lipgloss.Color("#bbbbbb"),
		Error:     lipgloss.Color("#888888"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Primary:   lipgloss.Color("#0077be"),
		Secondary: lipgloss.Color("#00a8cc"),
		Accent:    lipgloss.Color("#ffd700"),
		Text:      lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#4488aa"),
		Success:   lipgloss.Color("#00ff88"),
		Warning:   lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	CurrentTheme = ThemeDusk

	Themes = []Theme{
		ThemeDusk,
		ThemeRetroGreen,
		ThemeMono,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to dusk.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDusk
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			SetTheme(names[(i+1)%len(names)])
			return
		}
	}
	SetTheme(names[0])
}
