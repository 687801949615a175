package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-wander/music"
	"go-wander/theme"
)

// RenderSwatch renders a single coloured symbol
func RenderSwatch(color lipgloss.Color, sym rune) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(sym))
}

// RenderLegendItem renders a single legend item: "● name desc"
func RenderLegendItem(color lipgloss.Color, sym rune, name, desc string) string {
	return fmt.Sprintf("%s %s %s", RenderSwatch(color, sym), name, desc)
}

// RenderVoiceLegend lists the three voices with their colours on one line
func RenderVoiceLegend(th *theme.Theme) string {
	var parts []string
	for _, r := range music.Roles {
		spec := music.Spec(r)
		parts = append(parts, RenderLegendItem(th.Voice(r), th.Symbols.NoteHead, r.String(),
			music.Name(spec.Register.Min)+"-"+music.Name(spec.Register.Max)))
	}
	return strings.Join(parts, "   ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
