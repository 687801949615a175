package tui

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-wander/midi"
	"go-wander/music"
	"go-wander/sequencer"
	"go-wander/theme"
)

type quietSynth struct {
	mu       sync.Mutex
	releases int
}

func (s *quietSynth) Now() time.Duration              { return 0 }
func (s *quietSynth) Start(ctx context.Context) error { return ctx.Err() }
func (s *quietSynth) TriggerNote(sequencer.Trigger)   {}
func (s *quietSynth) ReleaseAll() {
	s.mu.Lock()
	s.releases++
	s.mu.Unlock()
}

type neverPeriodic struct{}

func (neverPeriodic) Every(time.Duration, func()) func() { return func() {} }

func newTestModel(t *testing.T) (Model, *sequencer.Session, *quietSynth) {
	t.Helper()
	synth := &quietSynth{}
	session := sequencer.NewSession(synth, sequencer.NewLog(12),
		music.NewComposer(music.NewSource(5)), neverPeriodic{})
	m := NewModel(session, theme.New(theme.Default()), Options{
		Backend:   "audio",
		ExportDir: t.TempDir(),
	})
	return m, session, synth
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends a key and runs any resulting command back through Update.
func press(m Model, s string) Model {
	next, cmd := m.Update(key(s))
	m = next.(Model)
	if cmd != nil {
		if msg := cmd(); msg != nil {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestStartStopKeys(t *testing.T) {
	m, session, synth := newTestModel(t)

	m = press(m, "s")
	if session.State() != sequencer.Playing {
		t.Fatalf("state after s = %v", session.State())
	}
	view := m.View()
	if !strings.Contains(view, "PLAY") || !strings.Contains(view, "measures:2") {
		t.Errorf("view after start:\n%s", view)
	}

	m = press(m, "x")
	if session.State() != sequencer.Idle || synth.releases != 1 {
		t.Errorf("state=%v releases=%d after x", session.State(), synth.releases)
	}
	if !strings.Contains(m.View(), "STOP") {
		t.Error("header does not show STOP")
	}

	m = press(m, " ")
	if session.State() != sequencer.Playing {
		t.Error("space did not restart")
	}
	m = press(m, " ")
	if session.State() != sequencer.Idle {
		t.Error("space did not stop")
	}
}

func TestExportKey(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(m, "e")
	if !strings.Contains(m.status, "nothing") {
		t.Errorf("export of empty log: status %q", m.status)
	}

	m = press(m, "s")
	m = press(m, "e")
	if !strings.HasPrefix(m.status, "exported ") {
		t.Fatalf("status = %q", m.status)
	}
	path := strings.TrimPrefix(m.status, "exported ")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file: %v", err)
	}
}

func TestQuitTearsDown(t *testing.T) {
	m, session, _ := newTestModel(t)
	m = press(m, "s")

	next, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if next.(Model).View() != "" {
		t.Error("view not cleared on quit")
	}
	if err := session.Start(context.Background()); err == nil {
		t.Error("session usable after quit")
	}
}

func TestViewShowsWindowListing(t *testing.T) {
	m, session, _ := newTestModel(t)
	m = press(m, "s")
	last, _ := session.Log().Last()
	view := m.View()
	name := music.Name(last.Melody[0])
	if !strings.Contains(view, name) {
		t.Errorf("listing missing %s:\n%s", name, view)
	}
}

func TestPortEventStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.opts.Watcher = midi.NewPortWatcher()

	next, cmd := m.Update(PortEventMsg{Type: midi.PortDisconnected, Name: "IAC Bus 1"})
	m = next.(Model)
	if cmd == nil {
		t.Error("port event did not re-arm the listener")
	}
	if want := "port IAC Bus 1 disconnected (outputs: none)"; m.status != want {
		t.Errorf("status = %q, want %q", m.status, want)
	}
}

func TestHeaderShowsQueued(t *testing.T) {
	m, _, _ := newTestModel(t)
	if strings.Contains(m.View(), "queued:") {
		t.Error("queued shown without a source")
	}
	m.opts.Queued = func() int { return 7 }
	if !strings.Contains(m.View(), "queued:7") {
		t.Errorf("header missing queued count:\n%s", m.View())
	}
}
