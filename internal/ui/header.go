package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/fsrmon/internal/session"
)

// notConnectedText is shown instead of sensor views while disconnected.
const notConnectedText = "Not connected! Please check the connection with your controller."

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	// Header line 1: logo + status
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// Header line 2: command bar
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	// Main content, padded so the footer stays at the bottom
	content := lipgloss.NewStyle().
		Height(m.surface.contentHeight()).
		MaxHeight(m.surface.contentHeight()).
		Render(m.renderContent())
	b.WriteString(content)
	b.WriteString("\n")

	b.WriteString(m.renderFooter())
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	if (m.currentView == ViewMonitor || m.currentView == ViewPlot) && (m.status != session.Open || m.channels == 0) {
		return m.renderPlaceholder()
	}
	switch m.currentView {
	case ViewMonitor:
		return m.renderMonitor()
	case ViewPlot:
		return m.renderPlot()
	case ViewProfiles:
		return m.renderProfiles()
	case ViewLogs:
		return m.renderLogs()
	default:
		return ""
	}
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("fsrmon", styles.Logo),
		m.renderConnection(styles, bg),
	}
	if m.channels > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("%d sensors", m.channels), styles.MutedText))
	}
	if current := m.profiles.Current; current != "" {
		parts = append(parts,
			bg.Render("profile", styles.FaintText)+bg.Space()+bg.Render(truncate(current, 24), styles.AccentText))
	}
	if !m.lastPersisted.IsZero() {
		parts = append(parts,
			bg.Render("saved", styles.FaintText)+bg.Space()+bg.Render(m.lastPersisted.Format("15:04:05"), styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) renderConnection(styles Styles, bg BgStyle) string {
	switch m.status {
	case session.Open:
		return bg.Render("CONNECTED", styles.SuccessText)
	case session.Connecting:
		return bg.Render("CONNECTING", styles.WarningText.Bold(true))
	default:
		return bg.Render("LOADING", styles.DangerText)
	}
}

// renderCommandBar renders the view tabs.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	tabs := []struct {
		key  string
		view View
	}{
		{"m", ViewMonitor},
		{"g", ViewPlot},
		{"p", ViewProfiles},
		{"L", ViewLogs},
	}
	parts := make([]string, 0, len(tabs))
	for _, tab := range tabs {
		label := styles.WarningText.Render(tab.key) + " " + styles.MutedText.Render(tab.view.String())
		if tab.view == m.currentView {
			label = styles.Selected.Padding(0, 1).Render(tab.key + " " + tab.view.String())
		} else {
			label = " " + label + " "
		}
		parts = append(parts, label)
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(parts, " "))
}

// renderFooter renders the status line and short help.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	line := ""
	switch {
	case m.notice.err:
		line = styles.DangerText.Render(m.notice.text)
	case m.notice.text != "":
		line = styles.AccentText.Render(m.notice.text)
	case m.status == session.Open && (m.currentView == ViewMonitor || m.currentView == ViewPlot):
		line = styles.FaintText.Render("selected " + m.surface.channelName(m.surface.selected))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(line) + "\n" +
		lipgloss.NewStyle().Padding(0, 1).Render(m.help.View(m.keys))
}

// renderPlaceholder is the non-interactive connecting screen.
func (m Model) renderPlaceholder() string {
	styles := m.theme.Styles()
	detail := "Loading defaults from the controller..."
	if m.status == session.Connecting {
		detail = "Connecting to the controller..."
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		styles.DangerText.Render(notConnectedText),
		"",
		styles.FaintText.Render(detail),
	)
	return lipgloss.Place(m.width, m.surface.contentHeight(), lipgloss.Center, lipgloss.Center, body)
}
