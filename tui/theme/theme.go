package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Kanagawa Dragon (dark) palette ---
const (
	darkGreen    = "#98BB6C"
	darkYellow   = "#FF9E3B"
	darkOrange   = "#FFA066"
	darkRed      = "#FF5D62"
	darkCyan     = "#7E9CD8"
	darkBlue     = "#7FB4CA"
	darkViolet   = "#957FB8"
	darkText     = "#DCD7BA"
	darkMuted    = "#727169"
	darkBorder   = "#363646"
	darkSelected = "#223249"
)

// Colors groups the raw palette for direct use by components.
type Colors struct {
	Green  lipgloss.Color
	Yellow lipgloss.Color
	Orange lipgloss.Color
	Red    lipgloss.Color
	Cyan   lipgloss.Color
	Blue   lipgloss.Color
	Violet lipgloss.Color
	Text   lipgloss.Color
	MutedC lipgloss.Color
	Border lipgloss.Color
}

// Theme holds the styles shared by the CLI and the dashboard.
type Theme struct {
	Colors Colors

	Title    lipgloss.Style
	Accent   lipgloss.Style
	Italic   lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Selected lipgloss.Style
	Border   lipgloss.Style
}

// DefaultTheme is the theme used everywhere unless a component is
// configured otherwise.
var DefaultTheme = NewTheme()

// NewTheme builds the default (Kanagawa Dragon) theme.
func NewTheme() *Theme {
	colors := Colors{
		Green:  lipgloss.Color(darkGreen),
		Yellow: lipgloss.Color(darkYellow),
		Orange: lipgloss.Color(darkOrange),
		Red:    lipgloss.Color(darkRed),
		Cyan:   lipgloss.Color(darkCyan),
		Blue:   lipgloss.Color(darkBlue),
		Violet: lipgloss.Color(darkViolet),
		Text:   lipgloss.Color(darkText),
		MutedC: lipgloss.Color(darkMuted),
		Border: lipgloss.Color(darkBorder),
	}

	return &Theme{
		Colors:   colors,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colors.Text),
		Accent:   lipgloss.NewStyle().Foreground(colors.Cyan),
		Italic:   lipgloss.NewStyle().Italic(true).Foreground(colors.MutedC),
		Muted:    lipgloss.NewStyle().Foreground(colors.MutedC),
		Success:  lipgloss.NewStyle().Foreground(colors.Green),
		Warning:  lipgloss.NewStyle().Foreground(colors.Yellow),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(colors.Red),
		Selected: lipgloss.NewStyle().Background(lipgloss.Color(darkSelected)),
		Border:   lipgloss.NewStyle().Foreground(colors.Border),
	}
}
