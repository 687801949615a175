package widgets

import (
	"strings"
	"testing"

	"go-wander/music"
	"go-wander/sequencer"
	"go-wander/theme"
)

var testMeasure = music.Measure{
	Low:    music.Voice{36, 38, 40, 41},
	Mid:    music.Voice{60, 60, 60, 60},
	Melody: music.Voice{72, 74, 76, 77, 79, 81, 83, 84},
}

func collect(cmds []DrawCmd) (bars []Barline, notes []NoteHead, labels []Label) {
	for _, c := range cmds {
		switch c := c.(type) {
		case Barline:
			bars = append(bars, c)
		case NoteHead:
			notes = append(notes, c)
		case Label:
			labels = append(labels, c)
		}
	}
	return
}

func TestStaffLayout(t *testing.T) {
	cmds := Staff([]music.Measure{testMeasure, testMeasure}, 5, 17)
	bars, notes, labels := collect(cmds)

	if len(bars) != 3 || bars[0].X != 85 || bars[1].X != 102 || bars[2].X != 119 {
		t.Errorf("barlines = %v, want at 85, 102, 119", bars)
	}
	if len(labels) != 2 || labels[0].Text != "6" || labels[1].Text != "7" {
		t.Errorf("labels = %v, want 6 and 7", labels)
	}
	if len(notes) != 32 {
		t.Fatalf("%d note heads, want 32", len(notes))
	}

	var lowX, melX []int
	for _, n := range notes[:16] {
		switch n.Role {
		case music.Low:
			lowX = append(lowX, n.X)
		case music.Melody:
			melX = append(melX, n.X)
		}
	}
	wantLow := []int{86, 90, 94, 98}
	for i := range wantLow {
		if lowX[i] != wantLow[i] {
			t.Errorf("low x = %v, want %v", lowX, wantLow)
			break
		}
	}
	for i := range melX {
		if melX[i] != 86+2*i {
			t.Errorf("melody x = %v, want every second column from 86", melX)
			break
		}
	}
}

func TestPitchRow(t *testing.T) {
	tests := []struct {
		p    music.Pitch
		want int
	}{
		{84, 1},
		{83, 2},
		{72, 8},
		{36, StaffRows - 1},
		{90, 1},
		{30, StaffRows - 1},
	}
	for _, tt := range tests {
		if got := PitchRow(tt.p); got != tt.want {
			t.Errorf("PitchRow(%d) = %d, want %d", tt.p, got, tt.want)
		}
	}
	if StaffRows != 30 {
		t.Errorf("StaffRows = %d, want 30", StaffRows)
	}
}

func TestStaffEmpty(t *testing.T) {
	if cmds := Staff(nil, 0, 10); len(cmds) != 0 {
		t.Errorf("empty staff produced %d commands", len(cmds))
	}
}

func TestCanvasOffset(t *testing.T) {
	th := theme.New(theme.Default())
	cmds := []DrawCmd{
		Barline{X: 10},
		NoteHead{X: 12, Row: 3, Role: music.Mid, Pitch: 60},
		NoteHead{X: 30, Row: 3, Role: music.Mid, Pitch: 60},
		Label{X: 11, Row: 0, Text: "2"},
	}
	out := Canvas(cmds, 10, 20, 5, th)
	lines := strings.Split(out, "\n")
	if len(lines) != 5 {
		t.Fatalf("%d lines, want 5", len(lines))
	}
	if strings.Count(out, string(th.Symbols.NoteHead)) != 1 {
		t.Errorf("want one visible note head (the other is clipped):\n%s", out)
	}
	if strings.Count(out, string(th.Symbols.Barline)) != 4 {
		t.Errorf("barline should span rows 1-4:\n%s", out)
	}
	if !strings.Contains(lines[0], "2") {
		t.Errorf("label missing from row 0: %q", lines[0])
	}
}

func TestCanvasNoteOverBarline(t *testing.T) {
	th := theme.New(theme.Default())
	cmds := []DrawCmd{
		NoteHead{X: 0, Row: 1, Role: music.Low},
		Barline{X: 0},
	}
	out := Canvas(cmds, 0, 2, 2, th)
	if !strings.Contains(out, string(th.Symbols.NoteHead)) {
		t.Errorf("barline overwrote note:\n%s", out)
	}
}

func TestStaffLines(t *testing.T) {
	th := theme.New(theme.Default())
	cmds := Staff([]music.Measure{testMeasure}, 0, 17)

	var rows []int
	for _, c := range cmds {
		if l, ok := c.(StaffLine); ok {
			rows = append(rows, l.Row)
		}
	}
	if len(rows) != len(StaffLinePitches) {
		t.Fatalf("%d staff lines, want %d", len(rows), len(StaffLinePitches))
	}

	out := Canvas(cmds, 0, 18, StaffRows, th)
	lines := strings.Split(out, "\n")
	// G4 is a line the test measure never touches.
	g4 := lines[PitchRow(67)]
	if strings.Count(g4, string(th.Symbols.Staff)) != 16 {
		t.Errorf("G4 row should be staff line between the barlines:\n%s", g4)
	}
	// C5 is a space.
	if strings.Contains(lines[PitchRow(72)], string(th.Symbols.Staff)) {
		t.Errorf("C5 row drew a staff line")
	}
	// D5 carries a note head over the line.
	d5 := lines[PitchRow(74)]
	if !strings.Contains(d5, string(th.Symbols.NoteHead)) || !strings.Contains(d5, string(th.Symbols.Staff)) {
		t.Errorf("D5 row should hold a note on a staff line:\n%s", d5)
	}
}

func TestListing(t *testing.T) {
	th := theme.New(theme.Default())
	out := Listing([]sequencer.Entry{{Index: 4, Measure: testMeasure}}, th)
	for _, want := range []string{"5", "low", "C2 D2 E2 F2", "C4 C4 C4 C4", "C5 D5 E5 F5 G5 A5 B5 C6"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	if empty := Listing(nil, th); !strings.Contains(empty, "no measures") {
		t.Errorf("empty listing = %q", empty)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Transport",
		Keys:  []KeyBinding{{Key: "s", Desc: "start"}, {Key: "x", Desc: "stop"}},
	}})
	want := "Transport\n  s            start\n  x            stop"
	if out != want {
		t.Errorf("RenderKeyHelp =\n%q\nwant\n%q", out, want)
	}
}

func TestVoiceLegend(t *testing.T) {
	out := RenderVoiceLegend(theme.New(theme.Default()))
	for _, want := range []string{"low C2-C4", "mid C3-C5", "melody C4-C6"} {
		if !strings.Contains(out, want) {
			t.Errorf("legend missing %q: %s", want, out)
		}
	}
}
