package books

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	statsdto "lectern/internal/modules/stats/dto"
	"lectern/internal/ui/theme"
)

type bookItem struct {
	book statsdto.BookOutput
}

func (i bookItem) Title() string       { return i.book.Title }
func (i bookItem) Description() string { return describe(i.book) }
func (i bookItem) FilterValue() string { return i.book.Title }

func describe(book statsdto.BookOutput) string {
	progress := fmt.Sprintf("%d chars", book.CurrChars)
	if book.TotalChars > 0 {
		progress = fmt.Sprintf("%.0f%%", book.Percent)
	}
	return fmt.Sprintf("%s  %s  %d sessions", progress, Duration(book.ReadingTime), book.Sessions)
}

// Model lists every book from the latest snapshot next to a summary of the
// active session and sync state.
type Model struct {
	list    list.Model
	snap    statsdto.SnapshotOutput
	summary viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New() Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Accent).BorderForeground(theme.Accent)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Ink).BorderForeground(theme.Accent)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Books"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Margin).
		Foreground(theme.Ink).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Accent)

	return Model{
		list:    l,
		summary: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// SetSnapshot replaces the listed books, keeping the selection on the same
// book when it is still present.
func (m *Model) SetSnapshot(snap statsdto.SnapshotOutput) tea.Cmd {
	selected, _ := m.SelectedSourceID()
	m.loading = false
	m.snap = snap
	items := make([]list.Item, len(snap.Books))
	index := 0
	for i, b := range snap.Books {
		items[i] = bookItem{book: b}
		if b.SourceID == selected {
			index = i
		}
	}
	cmd := m.list.SetItems(items)
	if len(items) > 0 {
		m.list.Select(index)
	}
	m.summary.SetContent(m.renderSummary())
	return cmd
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.loading {
		var lCmd tea.Cmd
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)

		var vCmd tea.Cmd
		m.summary, vCmd = m.summary.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading sessions…")
	}

	listW := m.width * 4 / 10
	summaryW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	summaryPane := theme.Pane.
		Padding(0, 1).
		Width(summaryW - 2).
		Height(m.height - 2).
		Render(m.summary.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, summaryPane)
}

func (m Model) SelectedSourceID() (string, bool) {
	if item, ok := m.list.SelectedItem().(bookItem); ok {
		return item.book.SourceID, true
	}
	return "", false
}

// Filtering reports whether the list's search filter is open; global keys
// must yield while it is.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) resize() {
	listW := m.width * 4 / 10
	summaryW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.summary.Width = summaryW - 4
	m.summary.Height = m.height - 4
}

func (m Model) renderSummary() string {
	s := m.snap
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Reading") + "\n\n")
	if s.Active != nil {
		sb.WriteString(theme.Title.Render("● "+s.Active.Title) + "  " + theme.State(s.Active.State).Render(s.Active.State) + "\n")
		sb.WriteString(theme.Muted.Render("time:   ") + Duration(s.Active.TotalReadingTime) + "\n")
		sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("chars:  "), s.Active.CharsRead))
	} else {
		sb.WriteString(theme.Muted.Render("no active session") + "\n")
	}

	sb.WriteString("\n" + theme.Title.Render("Totals") + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("sessions: "), s.Sessions))
	sb.WriteString(theme.Muted.Render("time:     ") + Duration(s.TotalReadingTime) + "\n")
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("chars:    "), s.CharsRead))

	sb.WriteString("\n" + theme.Title.Render("Sync") + "\n\n")
	sb.WriteString(theme.Muted.Render("remote:  ") + s.Connectivity + "\n")
	switch {
	case s.Sync.IsSyncing:
		sb.WriteString(theme.Muted.Render("state:   ") + "syncing…\n")
	case s.Sync.Error != "":
		sb.WriteString(theme.Muted.Render("state:   ") + theme.Alert.Render(s.Sync.Error) + "\n")
	case !s.Sync.LastSyncAt.IsZero():
		sb.WriteString(theme.Muted.Render("last:    ") + s.Sync.LastSyncAt.Local().Format(time.DateTime) + "\n")
	default:
		sb.WriteString(theme.Muted.Render("state:   ") + "never synced\n")
	}
	sb.WriteString(fmt.Sprintf("%s%d\n", theme.Muted.Render("pending: "), s.Sync.Pending))
	return sb.String()
}

// Duration renders whole seconds as 1h02m, 3m05s or 42s.
func Duration(seconds int64) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
