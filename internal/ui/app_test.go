package ui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/five82/fsrmon/internal/fsr"
	"github.com/five82/fsrmon/internal/prefs"
	"github.com/five82/fsrmon/internal/render"
	"github.com/five82/fsrmon/internal/session"
	"github.com/five82/fsrmon/internal/state"
)

// fakeBackend applies edits to real state types and records requests.
type fakeBackend struct {
	status     session.Status
	ring       *state.Ring
	thresholds *state.Thresholds
	profiles   *state.Profiles
	err        error
	requests   []string
}

func newFakeBackend(thresholds []int) *fakeBackend {
	b := &fakeBackend{
		status:     session.Open,
		ring:       state.NewRing(100),
		thresholds: state.NewThresholds(thresholds),
		profiles:   &state.Profiles{},
	}
	b.ring.Reset(len(thresholds))
	b.profiles.Seed([]string{"Singles", "Doubles", "Stamina"}, "Singles")
	return b
}

func (b *fakeBackend) Status() session.Status { return b.status }
func (b *fakeBackend) History() *state.Ring { return b.ring }
func (b *fakeBackend) Thresholds() *state.Thresholds { return b.thresholds }
func (b *fakeBackend) Profiles() *state.Profiles { return b.profiles }
func (b *fakeBackend) PersistThresholds() error { return b.request("persist") }
func (b *fakeBackend) RemoveProfile(name string) error { return b.request("remove " + name) }
func (b *fakeBackend) ChangeProfile(name string) error { return b.request("change " + name) }

func (b *fakeBackend) AddProfile(name string) error {
	if strings.TrimSpace(name) == "" {
		return session.ErrEmptyProfileName
	}
	return b.request("add " + name)
}

func (b *fakeBackend) SetThreshold(index, value int) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	value = state.Clamp(value)
	if err := b.thresholds.Set(index, value); err != nil {
		return 0, err
	}
	return value, nil
}

func (b *fakeBackend) AdjustThreshold(index, delta int) (int, error) {
	cur, ok := b.thresholds.Get(index)
	if !ok {
		return 0, state.ErrChannelRange
	}
	return b.SetThreshold(index, cur+delta)
}

func (b *fakeBackend) request(r string) error {
	if b.err != nil {
		return b.err
	}
	b.requests = append(b.requests, r)
	return nil
}

func newTestModel(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := New(Options{
		Backend:   b,
		Logger:    zerolog.Nop(),
		FPS:       1000,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Prefs:     prefs.Prefs{Theme: "Nightfox"},
	})
	_ = m.Init()
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "shift+up":
			msg = tea.KeyMsg{Type: tea.KeyShiftUp}
		case "shift+down":
			msg = tea.KeyMsg{Type: tea.KeyShiftDown}
		case "pgup":
			msg = tea.KeyMsg{Type: tea.KeyPgUp}
		case "pgdown":
			msg = tea.KeyMsg{Type: tea.KeyPgDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = next.(Model)
		// Deliver a modal's result the way the program would.
		if res := runModalResult(cmd); res != nil {
			m = update(t, m, res)
		}
	}
	return m
}

// runModalResult executes cmd when it is the result command of a modal and
// returns its message. Other commands (ticks, cursor blinks) yield nil.
func runModalResult(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		switch msg.(type) {
		case entrySubmittedMsg, removeConfirmedMsg:
			return msg
		}
		return nil
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

func TestModel_PlaceholderUntilOpen(t *testing.T) {
	b := newFakeBackend([]int{100, 200, 500, 400})
	b.status = session.Loading
	m := newTestModel(t, b)

	view := m.View()
	if !strings.Contains(view, notConnectedText) {
		t.Fatalf("view missing placeholder:\n%s", view)
	}
	if len(m.surface.loops) != 0 {
		t.Fatalf("loops running while loading: %d", len(m.surface.loops))
	}

	// Edits are ignored while disconnected.
	m = press(t, m, "up")
	if got, _ := b.thresholds.Get(0); got != 100 {
		t.Fatalf("threshold changed while loading: %d", got)
	}

	b.status = session.Open
	m = update(t, m, tickMsg(time.Now()))
	if strings.Contains(m.View(), notConnectedText) {
		t.Fatalf("placeholder still shown after open")
	}
	if len(m.surface.loops) != 4 {
		t.Fatalf("loops = %d, want one per sensor", len(m.surface.loops))
	}
}

func TestModel_ThresholdKeysEditSelectedSensor(t *testing.T) {
	b := newFakeBackend([]int{100, 200, 500, 400})
	m := newTestModel(t, b)

	m = press(t, m, "right", "right", "up")
	want := []int{100, 200, 501, 400}
	if diff := cmp.Diff(want, b.thresholds.Values(nil)); diff != "" {
		t.Fatalf("thresholds mismatch (-want +got):\n%s", diff)
	}

	m = press(t, m, "shift+up", "pgdown", "down")
	if got, _ := b.thresholds.Get(2); got != 501+5-10-1 {
		t.Fatalf("threshold = %d, want %d", got, 501+5-10-1)
	}

	// Selection wraps.
	m = press(t, m, "right", "right", "pgup")
	if got, _ := b.thresholds.Get(0); got != 110 {
		t.Fatalf("threshold[0] = %d, want 110", got)
	}
	m = press(t, m, "left", "shift+down")
	if got, _ := b.thresholds.Get(3); got != 395 {
		t.Fatalf("threshold[3] = %d, want 395", got)
	}
}

func TestModel_DirectEntryClampsAndRejectsText(t *testing.T) {
	b := newFakeBackend([]int{100, 200})
	m := newTestModel(t, b)

	m = press(t, m, "=")
	if m.modal == nil {
		t.Fatalf("entry modal not open")
	}
	m = press(t, m, "2", "0", "0", "0", "enter")
	if m.modal != nil {
		t.Fatalf("entry modal still open")
	}
	if got, _ := b.thresholds.Get(0); got != state.MaxValue {
		t.Fatalf("threshold = %d, want %d", got, state.MaxValue)
	}
	if !strings.Contains(m.notice.text, "clamped to 1023") {
		t.Fatalf("notice = %q, want clamp message", m.notice.text)
	}

	m = press(t, m, "=", "x", "enter")
	if !m.notice.err || !strings.Contains(m.notice.text, "not a number") {
		t.Fatalf("notice = %+v, want number error", m.notice)
	}

	m = press(t, m, "=", "5", "esc")
	if m.modal != nil {
		t.Fatalf("esc did not close entry")
	}
	if got, _ := b.thresholds.Get(0); got != state.MaxValue {
		t.Fatalf("cancelled entry changed threshold to %d", got)
	}
}

func TestModel_EmitFailureShowsNotice(t *testing.T) {
	b := newFakeBackend([]int{100, 200})
	m := newTestModel(t, b)
	b.err = session.ErrNotConnected

	m = press(t, m, "up")
	if !m.notice.err || !strings.Contains(m.notice.text, "not connected") {
		t.Fatalf("notice = %+v, want not connected", m.notice)
	}
	if !strings.Contains(m.View(), "not connected to the controller") {
		t.Fatalf("status line missing from view")
	}

	b.err = errors.New("boom")
	m = press(t, m, "s")
	if !strings.Contains(m.notice.text, "save thresholds: boom") {
		t.Fatalf("notice = %q", m.notice.text)
	}
}

func TestModel_LoopsFollowViewAndConnection(t *testing.T) {
	b := newFakeBackend([]int{1, 2, 3, 4})
	m := newTestModel(t, b)

	if len(m.surface.loops) != 4 || m.surface.listeners.Len() != 4 {
		t.Fatalf("loops=%d listeners=%d, want 4/4", len(m.surface.loops), m.surface.listeners.Len())
	}

	m = press(t, m, "g")
	if _, ok := m.surface.loops[plotLoop]; !ok || len(m.surface.loops) != 1 {
		t.Fatalf("plot view loops = %v", m.surface.loops)
	}
	if m.surface.listeners.Len() != 1 {
		t.Fatalf("listeners = %d, want 1", m.surface.listeners.Len())
	}

	m = press(t, m, "p")
	if len(m.surface.loops) != 0 || m.surface.listeners.Len() != 0 {
		t.Fatalf("profiles view still animating")
	}

	m = press(t, m, "m")
	b.status = session.Connecting
	m = update(t, m, tickMsg(time.Now()))
	if len(m.surface.loops) != 0 {
		t.Fatalf("loops survive disconnect")
	}

	// Reconnect with a different sensor count.
	b.ring.Reset(6)
	b.thresholds.ReplaceAll([]int{1, 2, 3, 4, 5, 6})
	b.status = session.Open
	m = update(t, m, tickMsg(time.Now()))
	if len(m.surface.loops) != 6 {
		t.Fatalf("loops = %d after reconnect, want 6", len(m.surface.loops))
	}
}

func TestModel_FrameDrawsSensorPanel(t *testing.T) {
	b := newFakeBackend([]int{100, 200, 500, 400})
	b.ring.Append(fsr.Snapshot{700, 10, 20, 30})
	m := newTestModel(t, b)

	loop := m.surface.loops[sensorLoop(0)]
	if loop == nil {
		t.Fatalf("no loop for sensor 0")
	}
	msg := loop.Start()()
	frame, ok := msg.(render.FrameMsg)
	if !ok {
		t.Fatalf("loop command returned %T", msg)
	}
	m = update(t, m, frame)

	panel := m.surface.panels[0]
	for _, want := range []string{"Left", "700", "100", "pressed"} {
		if !strings.Contains(panel, want) {
			t.Fatalf("panel missing %q:\n%s", want, panel)
		}
	}
	if m.surface.panels[1] != "" {
		t.Fatalf("sensor 1 drawn without its own frame")
	}
	if !strings.Contains(m.View(), "Down") {
		t.Fatalf("view missing undrawn sensor fallback")
	}
}

func TestModel_PlotToggleSavesPrefs(t *testing.T) {
	b := newFakeBackend([]int{100, 200, 500, 400})
	m := newTestModel(t, b)

	m = press(t, m, "g", "2", "4")
	if diff := cmp.Diff([]int{1, 3}, m.surface.prefs.HiddenChannels); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if diff := cmp.Diff([]int{1, 3}, saved.HiddenChannels); diff != "" {
		t.Fatalf("saved hidden mismatch (-want +got):\n%s", diff)
	}

	// Digits beyond the sensor count do nothing.
	m = press(t, m, "9")
	if len(m.surface.prefs.HiddenChannels) != 2 {
		t.Fatalf("hidden = %v", m.surface.prefs.HiddenChannels)
	}
}

func TestModel_ProfilesView(t *testing.T) {
	b := newFakeBackend([]int{100, 200})
	m := newTestModel(t, b)

	m = press(t, m, "p")
	if !strings.Contains(m.View(), "Stamina") {
		t.Fatalf("profiles view missing names:\n%s", m.View())
	}
	m = press(t, m, "down", "enter", "down", "d")
	if !strings.Contains(m.View(), "Do you want to delete Stamina?") {
		t.Fatalf("remove did not ask first:\n%s", m.View())
	}
	m = press(t, m, "esc")
	if m.modal != nil || len(b.requests) != 1 {
		t.Fatalf("modal=%v requests=%v after declining", m.modal, b.requests)
	}
	m = press(t, m, "d", "n", "d", "y", "up", "up", "up")
	if m.profileCursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.profileCursor)
	}
	m = press(t, m, "a", "P", "a", "d", "enter")
	m = press(t, m, "a", " ", "enter")

	want := []string{"change Doubles", "remove Stamina", "add Pad"}
	if diff := cmp.Diff(want, b.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if !m.notice.err || !strings.Contains(m.notice.text, "profile name is empty") {
		t.Fatalf("notice = %+v, want empty name error", m.notice)
	}
}

func TestModel_PersistAcknowledgment(t *testing.T) {
	b := newFakeBackend([]int{100})
	m := newTestModel(t, b)

	m = press(t, m, "s")
	if diff := cmp.Diff([]string{"persist"}, b.requests); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	b.profiles.MarkPersisted(time.Now())
	m = update(t, m, tickMsg(time.Now()))
	if m.notice.text != "Thresholds saved on the device" {
		t.Fatalf("notice = %q", m.notice.text)
	}
	if !strings.Contains(m.renderHeader(), "saved") {
		t.Fatalf("header missing persist time")
	}

	// Notices expire.
	m = update(t, m, tickMsg(time.Now().Add(2*NoticeTTL)))
	if m.notice.text != "" {
		t.Fatalf("notice not cleared: %q", m.notice.text)
	}
}

func TestModel_CycleThemeSavesPrefs(t *testing.T) {
	b := newFakeBackend([]int{100})
	m := newTestModel(t, b)

	m = press(t, m, "T")
	if m.theme.Name != "Kanagawa" || m.surface.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q/%q, want Kanagawa", m.theme.Name, m.surface.theme.Name)
	}
	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q", saved.Theme)
	}
}

func TestModel_HelpOverlay(t *testing.T) {
	m := newTestModel(t, newFakeBackend([]int{100}))
	m = press(t, m, "?")
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = press(t, m, "x")
	if m.showHelp {
		t.Fatalf("help still open")
	}
}

func TestModel_LogsViewTailsLogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "fsrmon.log")
	first := `{"level":"warn","component":"defaults","message":"fetch defaults failed"}` + "\n"
	if err := os.WriteFile(logPath, []byte(first), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	b := newFakeBackend([]int{100, 200})
	b.status = session.Connecting
	m := New(Options{
		Backend:   b,
		Logger:    zerolog.Nop(),
		FPS:       1000,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		LogPath:   logPath,
	})
	_ = m.Init()
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	m = press(t, m, "L")
	if m.currentView != ViewLogs {
		t.Fatalf("view = %v, want Logs", m.currentView)
	}
	view := m.View()
	if strings.Contains(view, notConnectedText) {
		t.Fatalf("logs view replaced by placeholder:\n%s", view)
	}
	if !strings.Contains(view, "fetch defaults failed") {
		t.Fatalf("logs view missing entry:\n%s", view)
	}
	if len(m.surface.loops) != 0 {
		t.Fatalf("logs view animating")
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString(`{"level":"info","component":"wsconn","message":"connected"}` + "\n"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	_ = f.Close()

	m = update(t, m, tickMsg(time.Now()))
	if !strings.Contains(m.View(), "[wsconn] connected") {
		t.Fatalf("logs view did not refresh:\n%s", m.View())
	}
}

func TestModel_LogsViewWithoutFile(t *testing.T) {
	m := newTestModel(t, newFakeBackend([]int{100}))
	m = press(t, m, "L")
	if !strings.Contains(m.View(), "Logging to a file is disabled.") {
		t.Fatalf("missing disabled hint:\n%s", m.View())
	}
}
