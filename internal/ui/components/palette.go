package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lectern/internal/ui/theme"
)

// Command describes one palette verb.
type Command struct {
	Name string
	Args string
	Help string
}

func (c Command) Usage() string {
	if c.Args == "" {
		return c.Name
	}
	return c.Name + " " + c.Args
}

// Commands lists the verbs the dashboard executes, in display order.
var Commands = []Command{
	{Name: "start", Args: "[book]", Help: "start reading the selected or named book"},
	{Name: "pause", Help: "pause the active session"},
	{Name: "resume", Help: "resume a paused session"},
	{Name: "progress", Args: "<chars>", Help: "record the current character offset"},
	{Name: "finish", Help: "finish the active session"},
	{Name: "sync", Help: "reconcile with the hub now"},
	{Name: "presence", Args: "<type> [name]", Help: "announce an activity"},
}

// Usage returns "usage: <verb> <args>" for a known verb.
func Usage(name string) string {
	for _, c := range Commands {
		if c.Name == name {
			return "usage: " + c.Usage()
		}
	}
	return "unknown command: " + name
}

// PaletteSubmitMsg carries the confirmed input line.
type PaletteSubmitMsg struct{ Input string }

type PaletteCancelMsg struct{}

const maxSuggestions = 4

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Background(theme.Margin).
			Foreground(theme.Ink).
			Padding(0, 1)

	usageStyle = lipgloss.NewStyle().Foreground(theme.Ink)
	helpStyle  = lipgloss.NewStyle().Foreground(theme.Faded)
)

// Palette is the ":" command line. Tab completes the verb when exactly one
// command matches what has been typed.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "command…"
	ti.CharLimit = 128
	ti.Prompt = ": "
	return Palette{input: ti}
}

func (p Palette) Visible() bool   { return p.visible }
func (p *Palette) SetWidth(w int) { p.width = w }

func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.Reset()
	return p.input.Focus()
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			line := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: line} }
		case "tab":
			if m := matching(p.input.Value()); len(m) == 1 {
				p.input.SetValue(m[0].Name + " ")
				p.input.CursorEnd()
			}
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

// matching returns the commands whose name starts with the typed verb. Once
// arguments follow the verb only an exact name matches.
func matching(line string) []Command {
	line = strings.ToLower(strings.TrimLeft(line, " "))
	verb, _, hasArgs := strings.Cut(line, " ")
	var out []Command
	for _, c := range Commands {
		if (hasArgs && c.Name == verb) || (!hasArgs && strings.HasPrefix(c.Name, verb)) {
			out = append(out, c)
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Command") + "\n")
	sb.WriteString(p.input.View() + "\n")
	if m := matching(p.input.Value()); len(m) > 0 {
		sb.WriteString("\n")
		for i, c := range m {
			if i == maxSuggestions {
				sb.WriteString(helpStyle.Render("  …") + "\n")
				break
			}
			sb.WriteString("  " + usageStyle.Render(c.Usage()) + "  " + helpStyle.Render(c.Help) + "\n")
		}
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
