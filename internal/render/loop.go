package render

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/fsrmon/internal/metrics"
)

// FrameMsg is one scheduled frame slot for a loop.
type FrameMsg struct {
	Loop string
	Gen  uint64
	At   time.Time
}

// Loop is one independently animating consumer. Frame slots are delivered
// through the Bubble Tea event loop, so a Loop is only touched from the
// program goroutine and needs no locking.
type Loop struct {
	name    string
	slot    time.Duration
	limiter Limiter
	draw    func(time.Time)
	metrics *metrics.Metrics

	gen     uint64
	running bool
	onStop  []func()
}

// NewLoop builds a stopped loop that calls draw at most once per interval.
// Slots are scheduled at half the interval so a late tick does not cost a
// whole frame.
func NewLoop(name string, interval time.Duration, draw func(time.Time), m *metrics.Metrics) *Loop {
	if interval <= 0 {
		interval = IntervalFor(DefaultFPS)
	}
	return &Loop{
		name:    name,
		slot:    max(interval/2, time.Millisecond),
		limiter: Limiter{MinInterval: interval},
		draw:    draw,
		metrics: m,
	}
}

// Name identifies the loop in frame messages.
func (l *Loop) Name() string { return l.name }

// Running reports whether the loop has a live schedule.
func (l *Loop) Running() bool { return l.running }

// Start begins a new generation and returns the first frame command.
// Starting a running loop restarts it; slots from the old generation are
// then ignored.
func (l *Loop) Start() tea.Cmd {
	l.gen++
	l.running = true
	l.limiter.Reset()
	return l.schedule()
}

// Stop cancels the schedule and runs cleanup registered with OnStop.
func (l *Loop) Stop() {
	if !l.running {
		return
	}
	l.gen++
	l.running = false
	for _, fn := range l.onStop {
		fn()
	}
	l.onStop = nil
}

// OnStop registers cleanup for the next Stop.
func (l *Loop) OnStop(fn func()) {
	l.onStop = append(l.onStop, fn)
}

// Frame handles one slot. It draws when the limiter allows and returns the
// next slot either way. Slots from a stopped or superseded generation
// return nil, which ends that schedule.
func (l *Loop) Frame(msg FrameMsg) tea.Cmd {
	if !l.running || msg.Loop != l.name || msg.Gen != l.gen {
		return nil
	}
	drawn := l.limiter.Allow(msg.At)
	if drawn && l.draw != nil {
		l.draw(msg.At)
	}
	l.metrics.Frame(l.name, drawn)
	return l.schedule()
}

func (l *Loop) schedule() tea.Cmd {
	name, gen := l.name, l.gen
	return tea.Tick(l.slot, func(t time.Time) tea.Msg {
		return FrameMsg{Loop: name, Gen: gen, At: t}
	})
}

// Listeners fans window resizes out to loops that need them. Loops remove
// their listener when they stop.
type Listeners struct {
	next int
	fns  map[int]func(width, height int)
}

// Add registers fn and returns its removal func.
func (s *Listeners) Add(fn func(width, height int)) (remove func()) {
	if s.fns == nil {
		s.fns = make(map[int]func(int, int))
	}
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() { delete(s.fns, id) }
}

// Notify calls every registered listener.
func (s *Listeners) Notify(width, height int) {
	for _, fn := range s.fns {
		fn(width, height)
	}
}

// Len returns the number of registered listeners.
func (s *Listeners) Len() int { return len(s.fns) }

// Attach registers fn with s for as long as the loop runs.
func (l *Loop) Attach(s *Listeners, fn func(width, height int)) {
	l.OnStop(s.Add(fn))
}
