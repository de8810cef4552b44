package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fsrmon/internal/logtail"
)

// renderMonitor composes the per-sensor panels cached by their loops.
func (m Model) renderMonitor() string {
	panels := make([]string, 0, len(m.surface.panels))
	for i, p := range m.surface.panels {
		if p == "" {
			// Not drawn yet since start or resize.
			v, _ := m.backend.History().ValueAt(i, 0)
			t, _ := m.backend.Thresholds().Get(i)
			p = m.surface.renderSensor(i, v, t)
		}
		panels = append(panels, p)
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}

// renderPlot frames the cached aggregate plot with its legend.
func (m Model) renderPlot() string {
	styles := m.theme.Styles()

	legend := make([]string, 0, m.channels)
	for ch := range m.channels {
		label := m.surface.channelName(ch)
		digit := ""
		if ch < 9 {
			digit = string(rune('1'+ch)) + " "
		}
		switch {
		case m.surface.prefs.Hidden(ch):
			legend = append(legend, styles.FaintText.Strikethrough(true).Render(digit+label))
		case ch == m.surface.selected:
			legend = append(legend, styles.DangerText.Render(digit+label))
		default:
			legend = append(legend, styles.Text.Render(digit+label))
		}
	}

	body := m.surface.plot
	if body == "" {
		body = styles.FaintText.Render("Drawing...")
	}
	return styles.PanelFocus.Width(max(m.width-2, MinBarWidth)).Render(
		lipgloss.JoinVertical(lipgloss.Left, strings.Join(legend, "  "), body),
	)
}

// renderProfiles shows the profile list viewport.
func (m Model) renderProfiles() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Profiles")
	return styles.Panel.Width(max(m.width-2, MinBarWidth)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, m.profilesViewport.View()),
	)
}

// updateProfilesViewport rebuilds the profile list and keeps the cursor in view.
func (m *Model) updateProfilesViewport() {
	styles := m.theme.Styles()
	m.profilesViewport.Width = max(m.width-6, MinBarWidth)
	m.profilesViewport.Height = max(m.surface.contentHeight()-3, 1)

	names := m.profiles.Names
	if len(names) == 0 {
		m.profilesViewport.SetContent(styles.FaintText.Render("No profiles. Press a to save the current thresholds as one."))
		return
	}

	lines := make([]string, 0, len(names))
	for i, name := range names {
		marker := "  "
		if name == m.profiles.Current {
			marker = styles.SuccessText.Render("● ")
		}
		text := truncate(name, m.profilesViewport.Width-2)
		if i == m.profileCursor {
			text = styles.Selected.Render(padRight(text, m.profilesViewport.Width-2))
		} else {
			text = styles.Text.Render(text)
		}
		lines = append(lines, marker+text)
	}
	m.profilesViewport.SetContent(strings.Join(lines, "\n"))

	// Keep the cursor visible.
	if m.profileCursor < m.profilesViewport.YOffset {
		m.profilesViewport.SetYOffset(m.profileCursor)
	} else if bottom := m.profilesViewport.YOffset + m.profilesViewport.Height - 1; m.profileCursor > bottom {
		m.profilesViewport.SetYOffset(m.profileCursor - m.profilesViewport.Height + 1)
	}
}

// logTailLines bounds how much of the log file the Logs view reads.
const logTailLines = 500

// renderLogs shows the tail of the fsrmon log.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Log")
	if m.logPath != "" {
		title += " " + styles.FaintText.Render(truncate(m.logPath, max(m.width-12, 0)))
	}
	return styles.Panel.Width(max(m.width-2, MinBarWidth)).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, m.logsViewport.View()),
	)
}

// updateLogsViewport re-reads the log tail. The view stays pinned to the
// bottom unless the user scrolled up.
func (m *Model) updateLogsViewport() {
	styles := m.theme.Styles()
	m.logsViewport.Width = max(m.width-6, MinBarWidth)
	m.logsViewport.Height = max(m.surface.contentHeight()-3, 1)

	if m.logPath == "" {
		m.logsViewport.SetContent(styles.FaintText.Render("Logging to a file is disabled."))
		return
	}
	entries, err := logtail.Tail(m.logPath, logTailLines)
	if err != nil {
		m.logsViewport.SetContent(styles.DangerText.Render(err.Error()))
		return
	}
	if len(entries) == 0 {
		m.logsViewport.SetContent(styles.FaintText.Render("Log is empty."))
		return
	}

	follow := m.logsViewport.AtBottom()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		text := truncate(e.String(), m.logsViewport.Width)
		switch e.Level {
		case "error", "fatal", "panic":
			text = styles.DangerText.Render(text)
		case "warn":
			text = styles.WarningText.Render(text)
		case "debug", "trace":
			text = styles.FaintText.Render(text)
		default:
			text = styles.Text.Render(text)
		}
		lines = append(lines, text)
	}
	m.logsViewport.SetContent(strings.Join(lines, "\n"))
	if follow {
		m.logsViewport.GotoBottom()
	}
}
