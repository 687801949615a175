package midi

import (
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a MIDI message waiting for its dispatch time
type Event struct {
	At       time.Duration // output clock time
	Type     uint8         // NoteOn or NoteOff
	Channel  uint8         // 0-based
	Note     uint8
	Velocity uint8

	seq uint64 // insertion order, breaks ties
}

// Message converts the event to a wire message.
func (e Event) Message() gomidi.Message {
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(e.Channel, e.Note, e.Velocity)
	case NoteOff:
		return gomidi.NoteOff(e.Channel, e.Note)
	}
	return nil
}

// eventQueue is a min-heap ordered by time. At equal times note-offs go
// first so a repeated pitch is released before it is struck again.
type eventQueue []Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	if q[i].At != q[j].At {
		return q[i].At < q[j].At
	}
	if offI, offJ := q[i].Type == NoteOff, q[j].Type == NoteOff; offI != offJ {
		return offI
	}
	return q[i].seq < q[j].seq
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(Event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
