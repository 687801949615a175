package music

// Pitch is a semitone number in MIDI numbering (60 = middle C).
type Pitch int

// Scale is a fixed set of degrees above a root, in ascending order.
type Scale struct {
	Root    Pitch
	Degrees []int
}

// CMajor is the only scale the generator uses.
var CMajor = Scale{
	Root:    60,
	Degrees: []int{0, 2, 4, 5, 7, 9, 11},
}

// Quantize snaps p onto CMajor.
func Quantize(p Pitch) Pitch {
	return CMajor.Quantize(p)
}

// Quantize snaps p to the nearest degree of the scale in the same octave.
// Ties go to the lower degree.
func (s Scale) Quantize(p Pitch) Pitch {
	diff := int(p - s.Root)
	octave := floorDiv(diff, 12)
	semitone := diff - octave*12

	best := s.Degrees[0]
	bestDist := abs(best - semitone)
	for _, d := range s.Degrees[1:] {
		if dist := abs(d - semitone); dist < bestDist {
			best = d
			bestDist = dist
		}
	}
	return s.Root + Pitch(octave*12+best)
}

// Contains reports whether p is a member of the scale in any octave.
func (s Scale) Contains(p Pitch) bool {
	diff := int(p - s.Root)
	semitone := diff - floorDiv(diff, 12)*12
	for _, d := range s.Degrees {
		if d == semitone {
			return true
		}
	}
	return false
}

// Step returns the diatonic step of p counted from the root, so adjacent
// scale members differ by one. Off-scale pitches share the step of the
// degree below them.
func (s Scale) Step(p Pitch) int {
	diff := int(p - s.Root)
	octave := floorDiv(diff, 12)
	semitone := diff - octave*12
	idx := 0
	for i, d := range s.Degrees {
		if d <= semitone {
			idx = i
		}
	}
	return octave*len(s.Degrees) + idx
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
