package midi

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPortWatcherEvents(t *testing.T) {
	var mu sync.Mutex
	current := []string{"synth A"}
	scan := func() ([]string, error) {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), current...), nil
	}

	pw := newPortWatcher(scan, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pw.Run(ctx)

	expect := func(typ PortEventType, name string) {
		t.Helper()
		select {
		case e := <-pw.Events():
			if e.Type != typ || e.Name != name {
				t.Fatalf("event = %v %q, want %v %q", e.Type, e.Name, typ, name)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %v %q", typ, name)
		}
	}

	expect(PortConnected, "synth A")

	mu.Lock()
	current = []string{"synth B"}
	mu.Unlock()

	// Connect and disconnect come from the same scan, connects first.
	expect(PortConnected, "synth B")
	expect(PortDisconnected, "synth A")

	if got := pw.Ports(); len(got) != 1 || got[0] != "synth B" {
		t.Errorf("Ports() = %v, want [synth B]", got)
	}

	cancel()
	select {
	case _, ok := <-pw.Events():
		if ok {
			t.Error("unexpected event after cancel")
		}
	case <-time.After(time.Second):
		t.Error("events channel not closed after cancel")
	}
}
