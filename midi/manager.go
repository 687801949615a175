package midi

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-wander/debug"
)

// PortEvent is emitted when an output port appears or disappears
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortConnected PortEventType = iota
	PortDisconnected
)

func (t PortEventType) String() string {
	if t == PortDisconnected {
		return "disconnected"
	}
	return "connected"
}

// PortWatcher handles hot-plug detection of MIDI output ports
type PortWatcher struct {
	ports    map[string]bool
	mu       sync.RWMutex
	events   chan PortEvent
	pollRate time.Duration
	scan     func() ([]string, error)
}

// NewPortWatcher creates a watcher over the system's output ports
func NewPortWatcher() *PortWatcher {
	return newPortWatcher(func() ([]string, error) {
		return OutPortNames(ScanTimeout)
	}, time.Second)
}

func newPortWatcher(scan func() ([]string, error), pollRate time.Duration) *PortWatcher {
	return &PortWatcher{
		ports:    make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: pollRate,
		scan:     scan,
	}
}

// Events returns a channel of port connect/disconnect events
func (pw *PortWatcher) Events() <-chan PortEvent {
	return pw.events
}

// Ports returns a sorted snapshot of known ports
func (pw *PortWatcher) Ports() []string {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	names := make([]string, 0, len(pw.ports))
	for n := range pw.ports {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (pw *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pw.pollRate)
	defer ticker.Stop()

	// Initial scan
	pw.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			close(pw.events)
			return
		case <-ticker.C:
			pw.poll(ctx)
		}
	}
}

func (pw *PortWatcher) poll(ctx context.Context) {
	names, err := pw.scan()
	if err != nil {
		// Driver hung - skip this scan
		debug.Log("ports", "scan: %v", err)
		return
	}

	seen := make(map[string]bool, len(names))
	var events []PortEvent

	pw.mu.Lock()
	for _, n := range names {
		seen[n] = true
		if !pw.ports[n] {
			pw.ports[n] = true
			events = append(events, PortEvent{Type: PortConnected, Name: n})
		}
	}
	for n := range pw.ports {
		if !seen[n] {
			delete(pw.ports, n)
			events = append(events, PortEvent{Type: PortDisconnected, Name: n})
		}
	}
	pw.mu.Unlock()

	for _, e := range events {
		debug.Log("ports", "%s %s", e.Name, e.Type)
		select {
		case pw.events <- e:
		case <-ctx.Done():
			return
		}
	}
}
