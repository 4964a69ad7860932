package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines color scheme for the TUI
type Theme struct {
	Name    string
	Title   lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Dim     lipgloss.Color
	Scene   lipgloss.Color
	Chart   lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
}

var (
	ThemeDusk = Theme{
		Name:    "dusk",
		Title:   lipgloss.Color("#00cccc"),
		Accent:  lipgloss.Color("#ff88ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Dim:     lipgloss.Color("#444455"),
		Scene:   lipgloss.Color("#00ffff"),
		Chart:   lipgloss.Color("49"),
		Success: lipgloss.Color("#00ff88"),
		Error:   lipgloss.Color("#ff4444"),
	}

	ThemeRetro = Theme{
		Name:    "retro",
		Title:   lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#008800"),
		Dim:     lipgloss.Color("#005500"),
		Scene:   lipgloss.Color("#00ff00"),
		Chart:   lipgloss.Color("#00cc00"),
		Success: lipgloss.Color("#88ff88"),
		Error:   lipgloss.Color("#ff0000"),
	}

	ThemePaper = Theme{
		Name:    "paper",
		Title:   lipgloss.Color("#0077be"),
		Accent:  lipgloss.Color("#d2691e"),
		Text:    lipgloss.Color("#e0e0e0"),
		Muted:   lipgloss.Color("#888888"),
		Dim:     lipgloss.Color("#555555"),
		Scene:   lipgloss.Color("#ffffff"),
		Chart:   lipgloss.Color("#00a8cc"),
		Success: lipgloss.Color("#5fd068"),
		Error:   lipgloss.Color("#ff4757"),
	}

	CurrentTheme = ThemeDusk

	Themes = []Theme{ThemeDusk, ThemeRetro, ThemePaper}
)

// GetTheme returns a theme by name
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

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = ThemeDusk
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
