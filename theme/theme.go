package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"go-wander/music"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	NoteHead rune // ● sounding pitch
	Barline  rune // │ measure boundary
	Staff    rune // ─ staff line row
	Blank    rune // empty cell

	Playing rune // ▶ header state
	Stopped rune // ■ header state
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			NoteHead: '●',
			Barline:  '│',
			Staff:    '─',
			Blank:    ' ',

			Playing: '▶',
			Stopped: '■',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleSurface = 0.1 // dark purple
	RoleMuted   = 0.2 // purple-magenta
	RoleFG      = 0.4 // pink-purple (readable)
	RoleAccent  = 0.5 // vivid magenta
	RoleCursor  = 0.6 // rose pink
	RoleActive  = 0.7 // soft red
	RoleWarning = 0.8 // orange
	RoleSuccess = 1.0 // bright yellow
)

// Voice colours, spread so the three parts stay distinct
var voicePositions = map[music.Role]float64{
	music.Low:    0.3,
	music.Mid:    0.55,
	music.Melody: 0.9,
}

// Voice returns the colour for a musical role
func (t *Theme) Voice(r music.Role) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(voicePositions[r]))
}

// Style helpers

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Active() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleActive))
}

func (t *Theme) Cursor() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleCursor))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Success() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSuccess))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
