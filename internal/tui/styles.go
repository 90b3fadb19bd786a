package tui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorOrange = lipgloss.Color("#FF8C42")
	ColorRed    = lipgloss.Color("#E5484D")
	ColorGreen  = lipgloss.Color("#46A758")
	ColorGray   = lipgloss.Color("#777777")
	ColorWhite  = lipgloss.Color("#FFFFFF")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorOrange)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FocusedLabelStyle = lipgloss.NewStyle().
				Foreground(ColorOrange).
				Bold(true)

	UserStyle = lipgloss.NewStyle().
			Foreground(ColorGreen).
			Bold(true)

	AssistantStyle = lipgloss.NewStyle().
			Foreground(ColorOrange).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorWhite).
			Background(ColorRed).
			Padding(0, 1)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorOrange).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)
)

// footer renders "key desc" pairs.
func footer(pairs ...string) string {
	out := ""
	for i := 0; i+1 < len(pairs); i += 2 {
		if out != "" {
			out += "  "
		}
		out += FooterKeyStyle.Render(pairs[i]) + " " + FooterDescStyle.Render(pairs[i+1])
	}
	return out
}
