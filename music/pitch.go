package music

import (
	"fmt"
	"math"
)

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Frequency converts a pitch to Hz in 12-TET with A4 (69) = 440 Hz.
func Frequency(p Pitch) float64 {
	return 440 * math.Pow(2, float64(p-69)/12)
}

// Name returns a sharp-spelled note name with octave, e.g. 60 -> "C4".
func Name(p Pitch) string {
	n := int(p)
	octave := floorDiv(n, 12) - 1
	return fmt.Sprintf("%s%d", noteNames[n-floorDiv(n, 12)*12], octave)
}

// Names formats every pitch of a voice with Name.
func Names(v Voice) []string {
	out := make([]string, len(v))
	for i, p := range v {
		out[i] = Name(p)
	}
	return out
}
