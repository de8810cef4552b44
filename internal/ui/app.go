package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/fsrmon/internal/metrics"
	"github.com/five82/fsrmon/internal/prefs"
	"github.com/five82/fsrmon/internal/render"
	"github.com/five82/fsrmon/internal/session"
	"github.com/five82/fsrmon/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewMonitor View = iota
	ViewPlot
	ViewProfiles
	ViewLogs
)

func (v View) String() string {
	switch v {
	case ViewPlot:
		return "Plot"
	case ViewProfiles:
		return "Profiles"
	case ViewLogs:
		return "Logs"
	default:
		return "Monitor"
	}
}

// Backend is the session surface the UI reads and edits. *session.Session
// satisfies it.
type Backend interface {
	Status() session.Status
	History() *state.Ring
	Thresholds() *state.Thresholds
	Profiles() *state.Profiles
	SetThreshold(index, value int) (int, error)
	AdjustThreshold(index, delta int) (int, error)
	AddProfile(name string) error
	RemoveProfile(name string) error
	ChangeProfile(name string) error
	PersistThresholds() error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	Logger    zerolog.Logger
	Metrics   *metrics.Metrics
	FPS       float64
	PollTick  time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string
}

// notice is a transient status line message.
type notice struct {
	text string
	err  bool
	at   time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	backend   Backend
	log       zerolog.Logger
	prefsPath string
	logPath   string
	pollTick  time.Duration

	// UI state
	keys        keyMap
	help        help.Model
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal
	notice      notice

	// Data state
	status        session.Status
	channels      int
	profiles      state.ProfileSnapshot
	lastPersisted time.Time

	// Render loops and their caches
	surface *surface

	// Profiles view
	profileCursor    int
	profilesViewport viewport.Model

	// Logs view
	logsViewport viewport.Model
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = StatusInterval
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = render.DefaultFPS
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	theme := GetTheme(opts.Prefs.Theme)
	m := Model{
		ctx:              ctx,
		backend:          opts.Backend,
		log:              opts.Logger.With().Str("component", "ui").Logger(),
		prefsPath:        prefsPath,
		logPath:          opts.LogPath,
		pollTick:         pollTick,
		keys:             DefaultKeyMap(),
		help:             help.New(),
		theme:            theme,
		currentView:      ViewMonitor,
		surface:          newSurface(opts.Backend, opts.Metrics, render.IntervalFor(fps), theme, opts.Prefs),
		profilesViewport: viewport.New(0, 0),
		logsViewport:     viewport.New(0, 0),
	}
	m.refresh()
	m.lastPersisted = m.profiles.LastPersisted
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.pollTick), m.startLoops())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.surface.resize(msg.Width, msg.Height)
		m.updateProfilesViewport()
		if m.currentView == ViewLogs {
			m.updateLogsViewport()
		}
		return m, nil

	case render.FrameMsg:
		return m, m.surface.frame(msg)

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case entrySubmittedMsg:
		m.handleEntry(msg)
		return m, nil

	case removeConfirmedMsg:
		if err := m.backend.RemoveProfile(msg.name); err != nil {
			m.fail("remove profile", err)
		} else {
			m.inform("Removing " + msg.name + "...")
		}
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var done bool
		m.modal, cmd, done = m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var done bool
		m.modal, cmd, done = m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.surface.stopAll()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.surface.setTheme(m.theme)
		m.surface.prefs.Theme = m.theme.Name
		m.savePrefs()
		m.updateProfilesViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewMonitor):
		return m.switchView(ViewMonitor)

	case key.Matches(msg, m.keys.ViewPlot):
		return m.switchView(ViewPlot)

	case key.Matches(msg, m.keys.ViewProfiles):
		return m.switchView(ViewProfiles)

	case key.Matches(msg, m.keys.ViewLogs):
		return m.switchView(ViewLogs)

	case key.Matches(msg, m.keys.Persist):
		if err := m.backend.PersistThresholds(); err != nil {
			m.fail("save thresholds", err)
		} else {
			m.inform("Saving thresholds on the device...")
		}
		return m, nil
	}

	switch m.currentView {
	case ViewMonitor, ViewPlot:
		return m.handleSensorKey(msg)
	case ViewProfiles:
		return m.handleProfilesKey(msg)
	case ViewLogs:
		var cmd tea.Cmd
		m.logsViewport, cmd = m.logsViewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleSensorKey processes channel selection and threshold edits.
func (m Model) handleSensorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.status != session.Open || m.channels == 0 {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.PrevChannel):
		m.selectChannel(m.surface.selected - 1)
	case key.Matches(msg, m.keys.NextChannel):
		m.selectChannel(m.surface.selected + 1)
	case key.Matches(msg, m.keys.IncreaseBig):
		m.adjust(5)
	case key.Matches(msg, m.keys.DecreaseBig):
		m.adjust(-5)
	case key.Matches(msg, m.keys.Increase):
		m.adjust(1)
	case key.Matches(msg, m.keys.Decrease):
		m.adjust(-1)
	case key.Matches(msg, m.keys.PageUp):
		m.adjust(10)
	case key.Matches(msg, m.keys.PageDown):
		m.adjust(-10)
	case key.Matches(msg, m.keys.Enter):
		ch := m.surface.selected
		current, _ := m.backend.Thresholds().Get(ch)
		entry := newThresholdEntry(ch, m.surface.channelName(ch), current)
		m.modal = entry
		return m, entry.input.Focus()
	case key.Matches(msg, m.keys.ToggleChannel):
		if m.currentView == ViewPlot {
			m.toggleChannel(msg.String())
		}
	}
	return m, nil
}

// handleProfilesKey processes keyboard input for the profiles view.
func (m Model) handleProfilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	names := m.profiles.Names
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.profileCursor > 0 {
			m.profileCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.profileCursor < len(names)-1 {
			m.profileCursor++
		}
	case key.Matches(msg, m.keys.Confirm):
		if name, ok := m.cursorProfile(); ok {
			if err := m.backend.ChangeProfile(name); err != nil {
				m.fail("change profile", err)
			} else {
				m.inform("Switching to " + name + "...")
			}
		}
	case key.Matches(msg, m.keys.RemoveProfile):
		if name, ok := m.cursorProfile(); ok {
			m.modal = newRemoveConfirm(name)
			return m, nil
		}
	case key.Matches(msg, m.keys.AddProfile):
		entry := newProfileEntry()
		m.modal = entry
		return m, entry.input.Focus()
	}
	m.updateProfilesViewport()
	return m, nil
}

// handleEntry applies a confirmed entry modal.
func (m *Model) handleEntry(msg entrySubmittedMsg) {
	switch msg.kind {
	case entryThreshold:
		v, err := strconv.Atoi(strings.TrimSpace(msg.value))
		if err != nil {
			m.fail("set threshold", fmt.Errorf("%q is not a number", msg.value))
			return
		}
		applied, err := m.backend.SetThreshold(msg.channel, v)
		if err != nil {
			m.fail("set threshold", err)
			return
		}
		if applied != v {
			m.inform(fmt.Sprintf("%s threshold clamped to %d", m.surface.channelName(msg.channel), applied))
		}
	case entryProfile:
		name := strings.TrimSpace(msg.value)
		if err := m.backend.AddProfile(name); err != nil {
			m.fail("add profile", err)
			return
		}
		m.inform("Adding " + name + "...")
	}
}

// handleTick re-reads connection state and restarts loops when the shape
// of the data changes.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	prevStatus, prevChannels := m.status, m.channels
	m.refresh()

	var cmds []tea.Cmd
	if m.status != prevStatus || m.channels != prevChannels {
		if m.surface.selected >= m.channels {
			m.surface.selected = max(m.channels-1, 0)
		}
		cmds = append(cmds, m.startLoops())
	}

	if p := m.profiles.LastPersisted; p.After(m.lastPersisted) {
		m.lastPersisted = p
		m.inform("Thresholds saved on the device")
	}
	if m.profileCursor >= len(m.profiles.Names) {
		m.profileCursor = max(len(m.profiles.Names)-1, 0)
	}
	if m.notice.text != "" && now.Sub(m.notice.at) > NoticeTTL {
		m.notice = notice{}
	}
	m.updateProfilesViewport()
	if m.currentView == ViewLogs {
		m.updateLogsViewport()
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// refresh copies connection state and profiles from the backend.
func (m *Model) refresh() {
	m.status = m.backend.Status()
	m.channels = 0
	if m.status != session.Loading {
		m.channels = m.backend.History().Width()
	}
	m.profiles = m.backend.Profiles().Snapshot()
}

// switchView stops the current view's loops and starts the next view's.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	if m.currentView == v {
		return m, nil
	}
	m.currentView = v
	m.updateProfilesViewport()
	if v == ViewLogs {
		m.updateLogsViewport()
		m.logsViewport.GotoBottom()
	}
	return m, m.startLoops()
}

// startLoops replaces the running loops with the ones the current view and
// connection state need. Nothing animates while disconnected.
func (m Model) startLoops() tea.Cmd {
	if m.status != session.Open || m.channels == 0 {
		m.surface.stopAll()
		return nil
	}
	switch m.currentView {
	case ViewMonitor:
		return m.surface.startSensors(m.channels)
	case ViewPlot:
		return m.surface.startPlot()
	default:
		m.surface.stopAll()
		return nil
	}
}

func (m *Model) selectChannel(ch int) {
	if m.channels == 0 {
		return
	}
	m.surface.selected = (ch + m.channels) % m.channels
}

func (m *Model) adjust(delta int) {
	ch := m.surface.selected
	if _, err := m.backend.AdjustThreshold(ch, delta); err != nil {
		m.fail("adjust threshold", err)
	}
}

func (m *Model) toggleChannel(digit string) {
	n, err := strconv.Atoi(digit)
	if err != nil || n < 1 || n > m.channels {
		return
	}
	m.surface.prefs.ToggleHidden(n - 1)
	m.savePrefs()
}

func (m *Model) cursorProfile() (string, bool) {
	if m.profileCursor < 0 || m.profileCursor >= len(m.profiles.Names) {
		return "", false
	}
	return m.profiles.Names[m.profileCursor], true
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.surface.prefs); err != nil {
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs")
	}
}

func (m *Model) inform(text string) {
	m.notice = notice{text: text, at: time.Now()}
}

func (m *Model) fail(op string, err error) {
	text := err.Error()
	if errors.Is(err, session.ErrNotConnected) {
		text = "not connected to the controller"
	}
	m.log.Debug().Err(err).Str("op", op).Msg("ui action failed")
	m.notice = notice{text: op + ": " + text, err: true, at: time.Now()}
}

// Messages

type tickMsg time.Time

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	m.surface.stopAll()
	if err != nil && m.ctx.Err() != nil {
		return nil
	}
	return err
}
