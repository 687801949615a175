package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-wander/music"
	"go-wander/sequencer"
	"go-wander/theme"
)

// Listing renders window entries as note names, one line per voice.
func Listing(entries []sequencer.Entry, th *theme.Theme) string {
	if len(entries) == 0 {
		return lipgloss.NewStyle().Foreground(th.Muted()).Render("  (no measures yet)")
	}
	idxStyle := lipgloss.NewStyle().Foreground(th.Accent())

	var lines []string
	for _, e := range entries {
		for i, r := range music.Roles {
			idx := "    "
			if i == 0 {
				idx = idxStyle.Render(fmt.Sprintf("%4d", e.Index+1))
			}
			name := lipgloss.NewStyle().Foreground(th.Voice(r)).Render(fmt.Sprintf("%-7s", r))
			lines = append(lines, fmt.Sprintf("%s  %s %s", idx, name,
				strings.Join(music.Names(e.Measure.Voice(r)), " ")))
		}
	}
	return strings.Join(lines, "\n")
}
