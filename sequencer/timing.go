package sequencer

import (
	"time"

	"go-wander/music"
)

// Fixed tempo. Every other timing constant derives from it.
const (
	Tempo           = 120
	BeatsPerMeasure = 4
	SecondsPerBeat  = 60.0 / Tempo
)

// MeasureDuration is the length of one measure: 4 beats at 120 bpm = 2s.
const MeasureDuration = time.Duration(BeatsPerMeasure * SecondsPerBeat * float64(time.Second))

// BeatDuration is one quarter note.
const BeatDuration = time.Duration(SecondsPerBeat * float64(time.Second))

// NoteDuration returns how long each note of role r lasts.
func NoteDuration(r music.Role) time.Duration {
	return time.Duration(music.Spec(r).BeatsPerNote * float64(BeatDuration))
}

// Onset returns the absolute start time of note i of role r in a measure
// that begins at start.
func Onset(start time.Duration, r music.Role, i int) time.Duration {
	return start + time.Duration(i)*NoteDuration(r)
}
