package theme

import "github.com/charmbracelet/lipgloss"

// Sepia palette, readable on dark terminals.
var (
	Paper  = lipgloss.Color("#1f1b16")
	Margin = lipgloss.Color("#29241d")
	Rule   = lipgloss.Color("#4a4136")
	Ink    = lipgloss.Color("#e8dcc4")
	Faded  = lipgloss.Color("#a89a82")
	Accent = lipgloss.Color("#d4a373")
	Leaf   = lipgloss.Color("#a3b18a")
	Amber  = lipgloss.Color("#e9c46a")
	Rust   = lipgloss.Color("#e07a5f")

	Pane = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Rule).
		Background(Margin).
		Foreground(Ink).
		Padding(1)

	Title = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	Muted = lipgloss.NewStyle().Foreground(Faded)
	Alert = lipgloss.NewStyle().Foreground(Rust).Bold(true)
)

// State colours a session state label: running, paused or finished.
func State(state string) lipgloss.Style {
	switch state {
	case "running":
		return lipgloss.NewStyle().Foreground(Leaf).Bold(true)
	case "paused":
		return lipgloss.NewStyle().Foreground(Amber)
	default:
		return Muted
	}
}
