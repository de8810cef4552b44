package ui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

type entryKind int

const (
	entryThreshold entryKind = iota
	entryProfile
)

// entrySubmittedMsg carries the text of a confirmed entry modal.
type entrySubmittedMsg struct {
	kind    entryKind
	channel int
	value   string
}

// entryModal is a single-line prompt used for direct threshold entry and
// new profile names.
type entryModal struct {
	kind    entryKind
	channel int
	title   string
	hint    string
	input   textinput.Model
}

func newThresholdEntry(channel int, name string, current int) *entryModal {
	in := textinput.New()
	in.Placeholder = "0-1023"
	in.CharLimit = 5
	in.Width = 8
	in.Prompt = "› "
	in.Focus()
	return &entryModal{
		kind:    entryThreshold,
		channel: channel,
		title:   "Threshold for " + name,
		hint:    "current " + strconv.Itoa(current) + ", values are clamped to 0-1023",
		input:   in,
	}
}

func newProfileEntry() *entryModal {
	in := textinput.New()
	in.Placeholder = "profile name"
	in.CharLimit = 32
	in.Width = 24
	in.Prompt = "› "
	in.Focus()
	return &entryModal{
		kind:  entryProfile,
		title: "New profile",
		hint:  "saved from the current thresholds",
		input: in,
	}
}

// Update implements Modal.
func (e *entryModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, keys.Escape):
			return e, nil, true
		case key.Matches(k, keys.Confirm):
			sub := entrySubmittedMsg{kind: e.kind, channel: e.channel, value: e.input.Value()}
			return e, func() tea.Msg { return sub }, true
		}
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd, false
}

// removeConfirmedMsg is sent when the user agrees to delete a profile.
type removeConfirmedMsg struct {
	name string
}

// confirmModal asks before a profile is deleted on the controller.
type confirmModal struct {
	name string
}

func newRemoveConfirm(name string) *confirmModal {
	return &confirmModal{name: name}
}

// Update implements Modal.
func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch {
	case key.Matches(k, keys.Yes), key.Matches(k, keys.Confirm):
		done := removeConfirmedMsg{name: c.name}
		return c, func() tea.Msg { return done }, true
	case key.Matches(k, keys.No), key.Matches(k, keys.Escape):
		return c, nil, true
	}
	return c, nil, false
}

// View implements Modal.
func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render("Delete profile"),
		"",
		styles.Text.Render("Do you want to delete "+styles.AccentText.Render(c.name)+"?"),
		"",
		styles.FaintText.Render("y delete · n/esc keep"),
	)
	return placeModal(theme, width, height, lipgloss.Color(theme.Danger), content)
}

// View implements Modal.
func (e *entryModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Text.Bold(true).Render(e.title),
		"",
		e.input.View(),
		"",
		styles.FaintText.Render(e.hint),
		styles.FaintText.Render("enter confirm · esc cancel"),
	)
	return placeModal(theme, width, height, lipgloss.Color(theme.Accent), content)
}

// placeModal centers a bordered dialog on the screen.
func placeModal(theme Theme, width, height int, border lipgloss.Color, content string) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
