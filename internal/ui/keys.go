package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Escape     key.Binding

	// View switching
	ViewMonitor  key.Binding
	ViewPlot     key.Binding
	ViewProfiles key.Binding
	ViewLogs     key.Binding

	// Threshold editing
	PrevChannel key.Binding
	NextChannel key.Binding
	Increase    key.Binding
	Decrease    key.Binding
	IncreaseBig key.Binding
	DecreaseBig key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Enter       key.Binding
	Persist     key.Binding

	// Plot
	ToggleChannel key.Binding

	// Profiles
	Up            key.Binding
	Down          key.Binding
	AddProfile    key.Binding
	RemoveProfile key.Binding

	// Input
	Confirm key.Binding
	Yes     key.Binding
	No      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		// View switching
		ViewMonitor: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Monitor"),
		),
		ViewPlot: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Plot"),
		),
		ViewProfiles: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Profiles"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Logs"),
		),

		// Threshold editing
		PrevChannel: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "Previous sensor"),
		),
		NextChannel: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "Next sensor"),
		),
		Increase: key.NewBinding(
			key.WithKeys("up", "k", "+"),
			key.WithHelp("↑/k", "Threshold +1"),
		),
		Decrease: key.NewBinding(
			key.WithKeys("down", "j", "-"),
			key.WithHelp("↓/j", "Threshold -1"),
		),
		IncreaseBig: key.NewBinding(
			key.WithKeys("shift+up", "K"),
			key.WithHelp("shift+↑", "Threshold +5"),
		),
		DecreaseBig: key.NewBinding(
			key.WithKeys("shift+down", "J"),
			key.WithHelp("shift+↓", "Threshold -5"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "Threshold +10"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "Threshold -10"),
		),
		Enter: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "Enter threshold"),
		),
		Persist: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save thresholds"),
		),

		// Plot
		ToggleChannel: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Toggle sensor"),
		),

		// Profiles
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Move down"),
		),
		AddProfile: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Add profile"),
		),
		RemoveProfile: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "Remove profile"),
		),

		// Input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "Yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "No"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ViewMonitor, k.ViewPlot, k.ViewProfiles, k.ViewLogs, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewMonitor, k.ViewPlot, k.ViewProfiles, k.ViewLogs},
		{k.PrevChannel, k.NextChannel, k.Increase, k.Decrease},
		{k.IncreaseBig, k.DecreaseBig, k.PageUp, k.PageDown, k.Enter, k.Persist},
		{k.ToggleChannel},
		{k.Up, k.Down, k.Confirm, k.AddProfile, k.RemoveProfile},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
