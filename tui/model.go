package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-wander/debug"
	"go-wander/midi"
	"go-wander/sequencer"
	"go-wander/theme"
	"go-wander/widgets"
)

// Options carries the settings the UI needs from config.
type Options struct {
	Backend    string
	WindowSize int
	ExportDir  string
	Watcher    *midi.PortWatcher // nil for the audio backend
	Queued     func() int        // events or tones waiting on the synth, optional
}

type Model struct {
	Session *sequencer.Session
	Theme   *theme.Theme
	opts    Options

	width    int
	status   string
	showHelp bool
	starting bool
	quitting bool
}

type UpdateMsg struct{}

type PortEventMsg midi.PortEvent

type startedMsg struct{ err error }

type exportedMsg struct {
	path string
	err  error
}

func NewModel(session *sequencer.Session, th *theme.Theme, opts Options) Model {
	if opts.WindowSize <= 0 {
		opts.WindowSize = sequencer.DefaultWindowSize
	}
	return Model{
		Session: session,
		Theme:   th,
		opts:    opts,
	}
}

func ListenForUpdates(session *sequencer.Session) tea.Cmd {
	return func() tea.Msg {
		<-session.Updates()
		return UpdateMsg{}
	}
}

func ListenForPorts(watcher *midi.PortWatcher) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-watcher.Events()
		if !ok {
			return nil
		}
		return PortEventMsg(event)
	}
}

// startCmd runs Start off the UI goroutine; it may wait on the audio device.
func startCmd(session *sequencer.Session) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: session.Start(context.Background())}
	}
}

func exportCmd(session *sequencer.Session, dir string) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(dir, sequencer.TimestampedName(time.Now(), ""))
		return exportedMsg{path: path, err: sequencer.ExportFile(path, session.Log().All())}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Session)}
	if m.opts.Watcher != nil {
		cmds = append(cmds, ListenForPorts(m.opts.Watcher))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			m.Session.Teardown()
			return m, tea.Quit

		case "s":
			return m.start()

		case "x":
			m.Session.Stop()
			m.status = "stopped"

		case " ":
			if m.Session.State() == sequencer.Playing {
				m.Session.Stop()
				m.status = "stopped"
			} else {
				return m.start()
			}

		case "e":
			if m.Session.Log().Len() == 0 {
				m.status = "nothing to export"
				return m, nil
			}
			m.status = "exporting..."
			return m, exportCmd(m.Session, m.opts.ExportDir)

		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case startedMsg:
		m.starting = false
		if msg.err != nil {
			m.status = "start failed: " + msg.err.Error()
			debug.Log("tui", "start: %v", msg.err)
		} else {
			m.status = "playing"
		}

	case exportedMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "exported " + msg.path
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Session)

	case PortEventMsg:
		ports := "none"
		if names := m.opts.Watcher.Ports(); len(names) > 0 {
			ports = strings.Join(names, ", ")
		}
		m.status = fmt.Sprintf("port %s %s (outputs: %s)", msg.Name, msg.Type, ports)
		return m, ListenForPorts(m.opts.Watcher)
	}

	return m, nil
}

func (m Model) start() (tea.Model, tea.Cmd) {
	if m.starting || m.Session.State() == sequencer.Playing {
		return m, nil
	}
	m.starting = true
	m.status = "waiting for " + m.opts.Backend + "..."
	return m, startCmd(m.Session)
}

func (m Model) keyHelp() []widgets.KeySection {
	return []widgets.KeySection{
		{Title: "Transport", Keys: []widgets.KeyBinding{
			{Key: "s", Desc: "start"},
			{Key: "x", Desc: "stop"},
			{Key: "space", Desc: "start/stop"},
		}},
		{Title: "Session", Keys: []widgets.KeyBinding{
			{Key: "e", Desc: "export log to " + m.opts.ExportDir},
			{Key: "?", Desc: "toggle help"},
			{Key: "q", Desc: "quit"},
		}},
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Surface()).
		Padding(0, 1)

	log := m.Session.Log()
	k := m.opts.WindowSize

	playState := dimStyle.Render(fmt.Sprintf("%c STOP", m.Theme.Symbols.Stopped))
	if m.Session.State() == sequencer.Playing {
		playState = lipgloss.NewStyle().Foreground(m.Theme.Active()).Bold(true).
			Render(fmt.Sprintf("%c PLAY", m.Theme.Symbols.Playing))
	}
	cursor := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).
		Render(fmt.Sprintf("t=%.1fs", m.Session.Cursor().Seconds()))
	header := headerStyle.Render("go-wander") + "  " + playState + "  " +
		headerStyle.Render(fmt.Sprintf("%3dbpm  measures:%d", sequencer.Tempo, log.Len())) + "  " +
		cursor + "  " + headerStyle.Render(m.opts.Backend)
	if m.opts.Queued != nil {
		header += dimStyle.Render(fmt.Sprintf("  queued:%d", m.opts.Queued()))
	}
	if debug.Enabled() {
		header += dimStyle.Render("  [debug]")
	}

	// Staff, scrolled so the newest measures stay in view
	w := log.RenderWindow(k)
	width := log.MeasureWidth()
	cols := k*width + 1
	if m.width > 0 {
		cols = min(cols, m.width)
	}
	staff := widgets.Canvas(widgets.Staff(w.Measures, w.First, width), w.Offset, cols, widgets.StaffRows, m.Theme)

	listing := widgets.Listing(log.DisplayWindow(k), m.Theme)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(staff)
	out.WriteString("\n")
	out.WriteString(widgets.RenderVoiceLegend(m.Theme))
	out.WriteString("\n\n")
	out.WriteString(listing)
	out.WriteString("\n\n")
	if m.showHelp {
		out.WriteString(widgets.RenderKeyHelp(m.keyHelp()))
	} else {
		out.WriteString(dimStyle.Render("s:start  x:stop  space:toggle  e:export  ?:help  q:quit"))
	}

	if m.status != "" {
		switch {
		case strings.Contains(m.status, "failed"):
			statusStyle = statusStyle.Foreground(m.Theme.Warning())
		case strings.HasPrefix(m.status, "exported "):
			statusStyle = statusStyle.Foreground(m.Theme.Success())
		}
		out.WriteString("\n")
		out.WriteString(statusStyle.Render(m.status))
	}

	return out.String()
}
