package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"go-wander/debug"
	"go-wander/music"
)

// ErrTornDown is returned by Start after Teardown.
var ErrTornDown = errors.New("session torn down")

// primeMeasures is the look-ahead queued by Start.
const primeMeasures = 2

// State is the playback state of a Session.
type State int

const (
	Idle State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "idle"
}

// Session is the playback scheduler. While playing it keeps one measure of
// look-ahead queued on the synth: each period it composes the next measure,
// schedules it at the cursor and appends it to the log.
type Session struct {
	ctrl sync.Mutex // serialises Start, Stop and Teardown

	mu       sync.Mutex // guards everything below
	state    State
	cursor   time.Duration
	cancel   func()
	tornDown bool

	synth    Synth
	log      *Log
	composer *music.Composer
	periodic Periodic

	// Notify TUI of updates
	updates chan struct{}
}

// NewSession builds an idle session. A nil periodic uses TickerPeriodic.
func NewSession(synth Synth, log *Log, composer *music.Composer, periodic Periodic) *Session {
	if periodic == nil {
		periodic = TickerPeriodic{}
	}
	return &Session{
		synth:    synth,
		log:      log,
		composer: composer,
		periodic: periodic,
		updates:  make(chan struct{}, 1),
	}
}

// Start begins playback. It waits for the synth to permit output first; if
// that fails the session stays idle. Calling Start while playing does nothing.
// Every Start queues two measures from the synth's current time.
func (s *Session) Start(ctx context.Context) error {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()

	s.mu.Lock()
	if s.tornDown {
		s.mu.Unlock()
		return ErrTornDown
	}
	if s.state == Playing {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.synth.Start(ctx); err != nil {
		debug.Log("session", "synth not ready: %v", err)
		return errors.Wrap(err, "waiting for synth")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if now := s.synth.Now(); s.cursor < now {
		s.cursor = now
	}

	// Prime two measures so one is always queued ahead of the clock. After a
	// Stop the log is kept and priming continues from its tail.
	var prev *music.Measure
	if last, ok := s.log.Last(); ok {
		prev = &last
	}
	for i := 0; i < primeMeasures; i++ {
		m := s.composer.Compose(prev)
		s.queueLocked(m)
		prev = &m
	}

	s.cancel = s.periodic.Every(MeasureDuration, s.tick)
	s.state = Playing
	debug.Log("session", "start cursor=%v measures=%d", s.cursor, s.log.Len())
	s.notify()
	return nil
}

// tick runs once per measure period while playing.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Playing {
		return
	}

	var prev *music.Measure
	if last, ok := s.log.Last(); ok {
		prev = &last
	}
	if now := s.synth.Now(); s.cursor < now {
		debug.Log("session", "tick late: cursor=%v now=%v", s.cursor, now)
		s.cursor = now
	}
	s.queueLocked(s.composer.Compose(prev))
	debug.LogEvery(8, "tick", "tick cursor=%v measures=%d", s.cursor, s.log.Len())
	s.notify()
}

// queueLocked schedules m at the cursor, advances the cursor one measure and
// records m. Log observers must not call back into the session.
func (s *Session) queueLocked(m music.Measure) {
	ScheduleMeasure(s.synth, m, s.cursor)
	s.cursor += MeasureDuration
	s.log.Append(m)
}

// Stop halts playback and silences the synth. The log is kept so a later
// Start continues the same piece. Calling Stop while idle does nothing.
func (s *Session) Stop() {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	s.stop()
}

func (s *Session) stop() {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return
	}
	s.state = Idle
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	// cancel waits for an in-flight tick, which needs mu
	if cancel != nil {
		cancel()
	}

	s.mu.Lock()
	s.cursor = s.synth.Now()
	s.mu.Unlock()

	s.synth.ReleaseAll()
	debug.Log("session", "stop cursor=%v measures=%d", s.Cursor(), s.log.Len())
	s.notify()
}

// Teardown stops playback and prevents any further Start.
func (s *Session) Teardown() {
	s.ctrl.Lock()
	defer s.ctrl.Unlock()
	s.stop()
	s.mu.Lock()
	s.tornDown = true
	s.mu.Unlock()
}

// State reports whether the session is playing.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor is the synth time at which the next measure will be scheduled.
func (s *Session) Cursor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Log is the measure log the session appends to.
func (s *Session) Log() *Log {
	return s.log
}

// Updates receives a value whenever state or the log changes.
func (s *Session) Updates() <-chan struct{} {
	return s.updates
}

func (s *Session) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}
