package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "lectern/internal/modules/session/dto"
	statsdto "lectern/internal/modules/stats/dto"
	syncdto "lectern/internal/modules/sync/dto"
	"lectern/internal/ui/components"
	"lectern/internal/ui/theme"
	booksview "lectern/internal/ui/views/books"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type statsPort interface {
	Watch(ctx context.Context, fn func(statsdto.SnapshotOutput, error)) (cancel func())
}

type sessionPort interface {
	Start(ctx context.Context, sourceID string) (sessiondto.TransitionOutput, error)
	Pause(ctx context.Context) (sessiondto.TransitionOutput, error)
	Resume(ctx context.Context) (sessiondto.TransitionOutput, error)
	Progress(ctx context.Context, currChars int64) (sessiondto.TransitionOutput, error)
	Finish(ctx context.Context) (sessiondto.FinishOutput, error)
}

type syncPort interface {
	SyncNow(ctx context.Context) (syncdto.ResultOutput, error)
}

type presencePort interface {
	Set(activityType, activityName string)
}

// ─── async messages ───────────────────────────────────────────────────────────

type snapshotMsg struct {
	snap statsdto.SnapshotOutput
	err  error
}

type actionMsg struct {
	status string
	err    error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Start   key.Binding
	Pause   key.Binding
	Finish  key.Binding
	Sync    key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "start session")),
		Pause:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause/resume")),
		Finish:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Sync:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "sync now")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Pause, k.Finish, k.Sync, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Start, k.Pause, k.Finish},
		{k.Sync, k.Palette},
		{k.Help, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. Snapshots arrive from the stats
// projection on a one-slot channel holding only the latest value; lifecycle
// and sync actions run as commands and report back through actionMsg.
type Model struct {
	stats    statsPort
	session  sessionPort
	sync     syncPort
	presence presencePort

	ctx     context.Context
	cancel  context.CancelFunc
	updates chan snapshotMsg

	books    booksview.Model
	snap     statsdto.SnapshotOutput
	keys     keyMap
	help     help.Model
	showHelp bool
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(stats statsPort, session sessionPort, sync syncPort, presence presencePort) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		stats:    stats,
		session:  session,
		sync:     sync,
		presence: presence,
		ctx:      ctx,
		cancel:   cancel,
		updates:  make(chan snapshotMsg, 1),
		books:    booksview.New(),
		keys:     defaultKeys(),
		help:     help.New(),
		palette:  components.NewPalette(),
		status:   "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.books.Init(), m.watchCmd(), m.waitCmd())
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.books, _ = m.books.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height - 3})
		return m, nil

	case snapshotMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
		} else {
			m.snap = msg.snap
			cmds = append(cmds, m.books.SetSnapshot(msg.snap))
		}
		cmds = append(cmds, m.waitCmd())
		return m, tea.Batch(cmds...)

	case actionMsg:
		if msg.err != nil {
			m.status = msg.status + ": " + msg.err.Error()
		} else {
			m.status = msg.status
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		if m.books.Filtering() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.cancel()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, m.keys.Palette):
			return m, m.palette.Open()
		case key.Matches(msg, m.keys.Start):
			id, ok := m.books.SelectedSourceID()
			if !ok {
				m.status = "no book selected"
				return m, nil
			}
			return m, m.startCmd(id)
		case key.Matches(msg, m.keys.Pause):
			if m.snap.Active != nil && m.snap.Active.State == "paused" {
				return m, m.resumeCmd()
			}
			return m, m.pauseCmd()
		case key.Matches(msg, m.keys.Finish):
			return m, m.finishCmd()
		case key.Matches(msg, m.keys.Sync):
			m.status = "syncing…"
			return m, m.syncCmd()
		}
	}

	var cmd tea.Cmd
	m.books, cmd = m.books.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := m.renderHeader()
	statusBar := m.renderStatusBar()
	contentH := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.books.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (m Model) renderHeader() string {
	bar := "lectern  " + theme.Muted.Render(fmt.Sprintf("%d sessions · %s read",
		m.snap.Sessions, booksview.Duration(m.snap.TotalReadingTime)))
	return lipgloss.NewStyle().Background(theme.Margin).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if a := m.snap.Active; a != nil {
		left = theme.Title.Render("● "+a.Title) + " " + theme.State(a.State).Render(a.State) + "  " + left
	}
	right := theme.Muted.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Margin).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "start":
		id, ok := m.books.SelectedSourceID()
		if len(parts) > 1 {
			id, ok = parts[1], true
		}
		if !ok {
			m.status = components.Usage("start")
			return m, nil
		}
		return m, m.startCmd(id)
	case "pause":
		return m, m.pauseCmd()
	case "resume":
		return m, m.resumeCmd()
	case "progress":
		if len(parts) < 2 {
			m.status = components.Usage("progress")
			return m, nil
		}
		chars, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || chars < 0 {
			m.status = "invalid chars: " + parts[1]
			return m, nil
		}
		return m, m.progressCmd(chars)
	case "finish":
		return m, m.finishCmd()
	case "sync":
		m.status = "syncing…"
		return m, m.syncCmd()
	case "presence":
		if len(parts) < 2 {
			m.status = components.Usage("presence")
			return m, nil
		}
		name := strings.TrimSpace(strings.TrimPrefix(input, parts[0]+" "+parts[1]))
		m.announce(parts[1], name)
		m.status = "presence: " + parts[1]
		return m, nil
	default:
		m.status = components.Usage(parts[0])
	}
	return m, nil
}

// ─── async commands ───────────────────────────────────────────────────────────

// watchCmd subscribes to the projection. Each delivery replaces whatever
// snapshot is still waiting in the channel.
func (m Model) watchCmd() tea.Cmd {
	return func() tea.Msg {
		m.stats.Watch(m.ctx, func(snap statsdto.SnapshotOutput, err error) {
			publish(m.updates, snapshotMsg{snap: snap, err: err})
		})
		return nil
	}
}

func (m Model) waitCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-m.updates:
			return msg
		case <-m.ctx.Done():
			return nil
		}
	}
}

func publish(ch chan snapshotMsg, msg snapshotMsg) {
	for {
		select {
		case ch <- msg:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (m Model) startCmd(sourceID string) tea.Cmd {
	title := sourceID
	for _, b := range m.snap.Books {
		if b.SourceID == sourceID {
			title = b.Title
		}
	}
	return func() tea.Msg {
		out, err := m.session.Start(m.ctx, sourceID)
		if err != nil {
			return actionMsg{status: "start failed", err: err}
		}
		if !out.Applied {
			return actionMsg{status: "a session is already active"}
		}
		m.announce("reading", title)
		return actionMsg{status: "reading " + title}
	}
}

func (m Model) pauseCmd() tea.Cmd {
	return m.transitionCmd("paused", m.session.Pause)
}

func (m Model) resumeCmd() tea.Cmd {
	return m.transitionCmd("resumed", m.session.Resume)
}

func (m Model) progressCmd(chars int64) tea.Cmd {
	return m.transitionCmd(fmt.Sprintf("at %d chars", chars), func(ctx context.Context) (sessiondto.TransitionOutput, error) {
		return m.session.Progress(ctx, chars)
	})
}

func (m Model) transitionCmd(done string, fn func(context.Context) (sessiondto.TransitionOutput, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := fn(m.ctx)
		switch {
		case err != nil:
			return actionMsg{status: done, err: err}
		case out.Session == nil:
			return actionMsg{status: "no active session"}
		case !out.Applied:
			return actionMsg{status: "nothing to do"}
		}
		return actionMsg{status: done}
	}
}

func (m Model) finishCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.session.Finish(m.ctx)
		switch {
		case err != nil:
			return actionMsg{status: "finish failed", err: err}
		case !out.Applied:
			return actionMsg{status: "no active session"}
		}
		m.announce("idle", "")
		if out.Discarded {
			return actionMsg{status: "session discarded (no progress)"}
		}
		return actionMsg{status: "session finished in " + booksview.Duration(out.Session.TotalReadingTime)}
	}
}

func (m Model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.sync.SyncNow(m.ctx)
		if err != nil {
			return actionMsg{status: "sync failed", err: err}
		}
		return actionMsg{status: fmt.Sprintf("synced: %d pushed, %d pulled",
			out.PushedSessions+out.PushedProgress, out.PulledSessions+out.PulledProgress)}
	}
}

func (m Model) announce(activityType, activityName string) {
	if m.presence != nil {
		m.presence.Set(activityType, activityName)
	}
}
