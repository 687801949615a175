package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-wander/music"
	"go-wander/theme"
)

type cellKind int

const (
	cellBlank cellKind = iota
	cellLine
	cellBar
	cellLabel
	cellNote
)

type cell struct {
	r    rune
	kind cellKind
	role music.Role
}

// Canvas draws cmds into a cols x rows terminal grid, shifted left by offset
// columns. Commands outside the grid are clipped.
func Canvas(cmds []DrawCmd, offset, cols, rows int, th *theme.Theme) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	grid := make([][]cell, rows)
	for y := range grid {
		grid[y] = make([]cell, cols)
		for x := range grid[y] {
			grid[y][x] = cell{r: th.Symbols.Blank}
		}
	}
	put := func(x, y int, c cell) {
		x -= offset
		if x < 0 || x >= cols || y < 0 || y >= rows {
			return
		}
		// Notes win over barlines drawn at the same spot.
		if grid[y][x].kind == cellNote && c.kind != cellNote {
			return
		}
		grid[y][x] = c
	}

	for _, cmd := range cmds {
		switch c := cmd.(type) {
		case Barline:
			for y := 1; y < rows; y++ {
				put(c.X, y, cell{r: th.Symbols.Barline, kind: cellBar})
			}
		case StaffLine:
			if c.Row < 0 || c.Row >= rows {
				continue
			}
			for x, g := range grid[c.Row] {
				if g.kind == cellBlank {
					grid[c.Row][x] = cell{r: th.Symbols.Staff, kind: cellLine}
				}
			}
		case Label:
			for i, r := range []rune(c.Text) {
				put(c.X+i, c.Row, cell{r: r, kind: cellLabel})
			}
		case NoteHead:
			put(c.X, c.Row, cell{r: th.Symbols.NoteHead, kind: cellNote, role: c.Role})
		}
	}

	styles := map[cellKind]lipgloss.Style{
		cellLine:  lipgloss.NewStyle().Foreground(th.Muted()),
		cellBar:   lipgloss.NewStyle().Foreground(th.Muted()),
		cellLabel: lipgloss.NewStyle().Foreground(th.FG()),
	}
	voices := make(map[music.Role]lipgloss.Style, len(music.Roles))
	for _, r := range music.Roles {
		voices[r] = lipgloss.NewStyle().Foreground(th.Voice(r))
	}

	lines := make([]string, rows)
	for y, row := range grid {
		var b strings.Builder
		for _, c := range row {
			switch c.kind {
			case cellBlank:
				b.WriteRune(c.r)
			case cellNote:
				b.WriteString(voices[c.role].Render(string(c.r)))
			default:
				b.WriteString(styles[c.kind].Render(string(c.r)))
			}
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
