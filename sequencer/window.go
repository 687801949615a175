package sequencer

import (
	"sync"

	"go-wander/music"
)

const (
	DefaultWindowSize   = 4
	DefaultMeasureWidth = 24
)

// Window is the slice of the log currently on screen.
type Window struct {
	Measures []music.Measure // shares storage with the log, do not modify
	Offset   int             // horizontal scroll in render units
	First    int             // log index of Measures[0]
}

// Entry is one row of the textual listing.
type Entry struct {
	Index   int
	Measure music.Measure
}

// Log is the append-only record of every measure composed in a session.
// It is never truncated; the window functions select what to show.
type Log struct {
	mu        sync.RWMutex
	measures  []music.Measure
	width     int
	observers []func(index int, m music.Measure)
}

// NewLog returns an empty log. A width <= 0 uses DefaultMeasureWidth.
func NewLog(measureWidth int) *Log {
	if measureWidth <= 0 {
		measureWidth = DefaultMeasureWidth
	}
	return &Log{width: measureWidth}
}

// Subscribe registers fn to be called after every append. Observers run on
// the appending goroutine, outside the log lock.
func (l *Log) Subscribe(fn func(index int, m music.Measure)) {
	l.mu.Lock()
	l.observers = append(l.observers, fn)
	l.mu.Unlock()
}

// Append adds m to the end of the log.
func (l *Log) Append(m music.Measure) {
	l.mu.Lock()
	l.measures = append(l.measures, m)
	idx := len(l.measures) - 1
	observers := l.observers
	l.mu.Unlock()

	for _, fn := range observers {
		fn(idx, m)
	}
}

// Len is the number of measures appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.measures)
}

// Last returns the most recently appended measure.
func (l *Log) Last() (music.Measure, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.measures) == 0 {
		return music.Measure{}, false
	}
	return l.measures[len(l.measures)-1], true
}

// At returns measure i.
func (l *Log) At(i int) (music.Measure, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i < 0 || i >= len(l.measures) {
		return music.Measure{}, false
	}
	return l.measures[i], true
}

// MeasureWidth is the render width of one measure.
func (l *Log) MeasureWidth() int {
	return l.width
}

// All returns a copy of every measure in order.
func (l *Log) All() []music.Measure {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]music.Measure, len(l.measures))
	copy(out, l.measures)
	return out
}

func (l *Log) windowStart(k int) int {
	if k < 0 {
		k = 0
	}
	return max(0, len(l.measures)-k)
}

// RenderWindow returns the last min(k, Len) measures and the scroll offset
// that keeps them in view.
func (l *Log) RenderWindow(k int) Window {
	l.mu.RLock()
	defer l.mu.RUnlock()
	first := l.windowStart(k)
	n := len(l.measures)
	return Window{
		Measures: l.measures[first:n:n],
		Offset:   first * l.width,
		First:    first,
	}
}

// DisplayWindow returns the same selection as RenderWindow, indexed.
func (l *Log) DisplayWindow(k int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	first := l.windowStart(k)
	entries := make([]Entry, 0, len(l.measures)-first)
	for i := first; i < len(l.measures); i++ {
		entries = append(entries, Entry{Index: i, Measure: l.measures[i]})
	}
	return entries
}
