package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a colormap plus the accent colors of the panels.
type Theme struct {
	Name   string
	Stops  []lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeInferno = Theme{
		Name:   "inferno",
		Stops:  []lipgloss.Color{"#000004", "#57106e", "#bc3754", "#f98e09", "#fcffa4"},
		Accent: lipgloss.Color("#f98e09"),
		Muted:  lipgloss.Color("#666666"),
	}

	ThemeViridis = Theme{
		Name:   "viridis",
		Stops:  []lipgloss.Color{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
		Accent: lipgloss.Color("#21918c"),
		Muted:  lipgloss.Color("#4488aa"),
	}

	ThemeDiverging = Theme{
		Name:   "diverging",
		Stops:  []lipgloss.Color{"#2166ac", "#92c5de", "#f7f7f7", "#f4a582", "#b2182b"},
		Accent: lipgloss.Color("#f4a582"),
		Muted:  lipgloss.Color("#888888"),
	}

	ThemeMono = Theme{
		Name:   "mono",
		Stops:  []lipgloss.Color{"#000000", "#ffffff"},
		Accent: lipgloss.Color("#ffffff"),
		Muted:  lipgloss.Color("#888888"),
	}

	CurrentTheme = ThemeInferno

	Themes = []Theme{ThemeInferno, ThemeViridis, ThemeDiverging, ThemeMono}
)

func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeInferno
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

// nextTheme returns the theme after the current one.
func nextTheme() string {
	names := ThemeNames()
	for i, name := range names {
		if name == CurrentTheme.Name {
			return names[(i+1)%len(names)]
		}
	}
	return names[0]
}

// ColorAt maps f in [0,1] onto the colormap of t.
func (t Theme) ColorAt(f float64) lipgloss.Color {
	if len(t.Stops) == 1 {
		return t.Stops[0]
	}
	if !(f > 0) {
		return t.Stops[0]
	}
	if f >= 1 {
		return t.Stops[len(t.Stops)-1]
	}
	pos := f * float64(len(t.Stops)-1)
	k := int(pos)
	return lerpColor(t.Stops[k], t.Stops[k+1], pos-float64(k))
}
