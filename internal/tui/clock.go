package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/NoahYB/drum-machine/internal/tempo"
	"github.com/NoahYB/drum-machine/internal/transport"
)

const clockCells = 16

// Colors for the clock bar - gradient from cyan to magenta
var clockColors = []string{
	"#00FFFF", "#00E5FF", "#00CCFF", "#00B2FF",
	"#0099FF", "#0080FF", "#0066FF", "#1A4DFF",
	"#3333FF", "#4D1AFF", "#6600FF", "#8000FF",
	"#9900FF", "#B300FF", "#CC00FF", "#FF00FF",
}

// clockCell maps a timeline fraction onto one of the clock cells.
func clockCell(fraction float64) int {
	cell := int(fraction * clockCells)
	return min(max(cell, 0), clockCells-1)
}

func renderClockBar(mode transport.Mode, pos tempo.Position) string {
	running := mode == transport.Recording || mode == transport.Playing
	current := clockCell(pos.Fraction)

	bar := strings.Builder{}
	bar.WriteString("Clock  ")

	for i := 0; i < clockCells; i++ {
		var cell string
		var cellStyle lipgloss.Style

		color := clockColors[i]
		if mode == transport.Recording {
			color = "#FF3B3B"
		}

		if running && i == current {
			cell = " ▶ "
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(lipgloss.Color(color)).
				Bold(true)
		} else if running && i < current {
			cell = " █ "
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(color))
		} else {
			cell = " · "
			cellStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#444444"))
		}

		bar.WriteString(cellStyle.Render(cell))
	}

	return bar.String()
}
