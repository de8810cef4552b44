package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fsrmon/internal/state"
)

// renderSensor draws one monitor panel: name, reading, threshold and a bar
// with the threshold marked. A reading at or above its threshold counts as
// pressed.
func (s *surface) renderSensor(channel, value, threshold int) string {
	styles := s.styles
	active := value >= threshold

	panel := styles.Panel
	if channel == s.selected {
		panel = styles.PanelFocus
	}
	outer := max(s.width, MinBarWidth+4)
	inner := outer - 4

	name := styles.Text.Bold(true).Render(padRight(s.channelName(channel), 8))
	label := styles.FaintText.Render("released")
	if active {
		label = styles.SuccessText.Render("pressed")
	}
	info := fmt.Sprintf("%s %s  %s %s  %s",
		styles.MutedText.Render("value"),
		styles.Text.Render(fmt.Sprintf("%4d", value)),
		styles.MutedText.Render("threshold"),
		styles.WarningText.Render(fmt.Sprintf("%4d", threshold)),
		label,
	)
	bar := renderBar(value, threshold, inner, styles.BarStyle(active), styles.BarTrack, styles.Marker)

	return panel.Width(outer - 2).Render(lipgloss.JoinVertical(lipgloss.Left, name+" "+info, bar))
}

const (
	barFill   = '█'
	barTrack  = '░'
	barMarker = '┃'
)

// renderBar draws value as a filled track of width cells with the
// threshold cell replaced by a marker.
func renderBar(value, threshold, width int, fill, track, marker lipgloss.Style) string {
	if width <= 0 {
		return ""
	}
	filled := barCells(value, width)
	mark := min(barCells(threshold, width), width-1)

	var b strings.Builder
	run := func(r rune, n int) {
		if n <= 0 {
			return
		}
		seg := strings.Repeat(string(r), n)
		switch r {
		case barFill:
			b.WriteString(fill.Render(seg))
		case barTrack:
			b.WriteString(track.Render(seg))
		default:
			b.WriteString(marker.Render(seg))
		}
	}
	// Before the marker, the marker, then the rest.
	run(barFill, min(filled, mark))
	run(barTrack, mark-min(filled, mark))
	run(barMarker, 1)
	rest := width - mark - 1
	afterFilled := max(filled-mark-1, 0)
	run(barFill, min(afterFilled, rest))
	run(barTrack, rest-min(afterFilled, rest))
	return b.String()
}

// barCells maps a reading onto width cells so that the maximum reading
// fills the bar.
func barCells(v, width int) int {
	v = state.Clamp(v)
	return v * width / state.MaxValue
}
