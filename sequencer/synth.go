package sequencer

import (
	"context"
	"time"

	"go-wander/music"
)

// Synth is the sound-producing collaborator. Times are readings of the
// synth's own clock; the scheduler never relies on its own call timing.
type Synth interface {
	// Now returns the current synth clock reading.
	Now() time.Duration
	// Start blocks until audio output is permitted.
	Start(ctx context.Context) error
	// TriggerNote queues one note. Fire-and-forget.
	TriggerNote(n Trigger)
	// ReleaseAll silences every sounding and pending note.
	ReleaseAll()
}

// Trigger is a single timestamped note request.
type Trigger struct {
	Role      music.Role
	Pitch     music.Pitch
	Frequency float64
	Duration  time.Duration
	At        time.Duration
}

// ScheduleMeasure hands one trigger per note of m to s, with the measure
// starting at start. It never waits on the synth.
func ScheduleMeasure(s Synth, m music.Measure, start time.Duration) {
	for _, r := range music.Roles {
		dur := NoteDuration(r)
		for i, p := range m.Voice(r) {
			s.TriggerNote(Trigger{
				Role:      r,
				Pitch:     p,
				Frequency: music.Frequency(p),
				Duration:  dur,
				At:        Onset(start, r, i),
			})
		}
	}
}
