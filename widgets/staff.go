package widgets

import (
	"fmt"

	"go-wander/music"
)

// Staff geometry. Row 0 holds measure labels; pitches from StaffTop down to
// StaffBottom map one diatonic step per row below it.
const (
	StaffTop    music.Pitch = 84
	StaffBottom music.Pitch = 36

	LabelRow = 0
)

// StaffLinePitches are the lines of a grand staff: bass G2-A3, treble E4-F5.
var StaffLinePitches = []music.Pitch{43, 47, 50, 53, 57, 64, 67, 71, 74, 77}

// StaffRows is the height of a full staff including the label row.
var StaffRows = 1 + music.CMajor.Step(StaffTop) - music.CMajor.Step(StaffBottom) + 1

// DrawCmd is one primitive for a drawing backend.
type DrawCmd interface {
	drawCmd()
}

// Barline is a vertical line at column X spanning every pitch row.
type Barline struct {
	X int
}

// NoteHead marks one note.
type NoteHead struct {
	X, Row int
	Role   music.Role
	Pitch  music.Pitch
}

// StaffLine is a horizontal line across the whole of Row.
type StaffLine struct {
	Row int
}

// Label is text starting at X on Row.
type Label struct {
	X, Row int
	Text   string
}

func (Barline) drawCmd()   {}
func (NoteHead) drawCmd()  {}
func (StaffLine) drawCmd() {}
func (Label) drawCmd()     {}

// PitchRow returns the staff row for p. Pitches outside the staff are pinned
// to its edge.
func PitchRow(p music.Pitch) int {
	row := 1 + music.CMajor.Step(StaffTop) - music.CMajor.Step(p)
	return max(1, min(StaffRows-1, row))
}

// Staff lays out measures left to right in absolute columns: measure first+i
// starts at (first+i)*width. A backend scrolls by the window offset. Staff is
// pure; it only describes what to draw.
func Staff(measures []music.Measure, first, width int) []DrawCmd {
	if width < 2 {
		width = 2
	}
	inner := width - 1
	var cmds []DrawCmd
	if len(measures) > 0 {
		for _, p := range StaffLinePitches {
			cmds = append(cmds, StaffLine{Row: PitchRow(p)})
		}
	}
	for i, m := range measures {
		idx := first + i
		x0 := idx * width
		cmds = append(cmds,
			Barline{X: x0},
			Label{X: x0 + 1, Row: LabelRow, Text: fmt.Sprintf("%d", idx+1)},
		)
		for _, r := range music.Roles {
			beats := music.Spec(r).BeatsPerNote
			for n, p := range m.Voice(r) {
				col := int(float64(n) * beats / 4 * float64(inner))
				cmds = append(cmds, NoteHead{X: x0 + 1 + col, Row: PitchRow(p), Role: r, Pitch: p})
			}
		}
	}
	if len(measures) > 0 {
		cmds = append(cmds, Barline{X: (first + len(measures)) * width})
	}
	return cmds
}
