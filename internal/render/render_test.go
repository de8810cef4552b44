package render

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/fsrmon/internal/metrics"
)

func TestIntervalFor(t *testing.T) {
	if got := IntervalFor(60.1); got < 16*time.Millisecond || got > 17*time.Millisecond {
		t.Fatalf("IntervalFor(60.1) = %v, want ~16.6ms", got)
	}
	if IntervalFor(0) != IntervalFor(DefaultFPS) {
		t.Fatalf("IntervalFor(0) should use the default rate")
	}
	if got := IntervalFor(10); got != 100*time.Millisecond {
		t.Fatalf("IntervalFor(10) = %v, want 100ms", got)
	}
}

func TestLimiter_SkipsFramesUnderInterval(t *testing.T) {
	l := Limiter{MinInterval: 10 * time.Millisecond}
	base := time.Unix(1000, 0)

	steps := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{4 * time.Millisecond, false},
		{9 * time.Millisecond, false},
		{10 * time.Millisecond, true},
		{15 * time.Millisecond, false},
		{21 * time.Millisecond, true},
	}
	for _, s := range steps {
		if got := l.Allow(base.Add(s.offset)); got != s.want {
			t.Fatalf("Allow(+%v) = %v, want %v", s.offset, got, s.want)
		}
	}

	l.Reset()
	if !l.Allow(base.Add(22 * time.Millisecond)) {
		t.Fatalf("Allow after Reset = false, want true")
	}
}

func TestLoop_DrawsWhenAllowedAndAlwaysReschedules(t *testing.T) {
	var draws int
	m := metrics.New()
	l := NewLoop("plot", 10*time.Millisecond, func(time.Time) { draws++ }, m)

	if cmd := l.Frame(FrameMsg{Loop: "plot", Gen: 0, At: time.Now()}); cmd != nil {
		t.Fatalf("stopped loop rescheduled")
	}
	if cmd := l.Start(); cmd == nil {
		t.Fatalf("Start returned nil command")
	}

	base := time.Unix(2000, 0)
	for i, offset := range []time.Duration{0, 3 * time.Millisecond, 6 * time.Millisecond, 12 * time.Millisecond} {
		if cmd := l.Frame(FrameMsg{Loop: "plot", Gen: 1, At: base.Add(offset)}); cmd == nil {
			t.Fatalf("frame %d: no reschedule", i)
		}
	}
	if draws != 2 {
		t.Fatalf("draws = %d, want 2", draws)
	}
	if n := testutil.ToFloat64(m.Frames.WithLabelValues("plot", "skipped")); n != 2 {
		t.Fatalf("skipped frames = %v, want 2", n)
	}
}

func TestLoop_StopDropsOldGeneration(t *testing.T) {
	var draws int
	l := NewLoop("ch0", time.Millisecond, func(time.Time) { draws++ }, nil)
	l.Start()

	listeners := &Listeners{}
	var resized int
	l.Attach(listeners, func(int, int) { resized++ })
	listeners.Notify(80, 24)

	l.Stop()
	if l.Running() {
		t.Fatalf("loop still running after Stop")
	}
	if listeners.Len() != 0 {
		t.Fatalf("listener still registered after Stop")
	}
	listeners.Notify(100, 30)
	if resized != 1 {
		t.Fatalf("resized = %d, want 1", resized)
	}
	if cmd := l.Frame(FrameMsg{Loop: "ch0", Gen: 1, At: time.Now()}); cmd != nil {
		t.Fatalf("frame from stopped generation rescheduled")
	}

	l.Start()
	if cmd := l.Frame(FrameMsg{Loop: "ch0", Gen: 1, At: time.Now()}); cmd != nil {
		t.Fatalf("frame from superseded generation rescheduled")
	}
	if cmd := l.Frame(FrameMsg{Loop: "ch0", Gen: 3, At: time.Now()}); cmd == nil {
		t.Fatalf("frame from current generation not rescheduled")
	}
	if draws != 1 {
		t.Fatalf("draws = %d, want 1", draws)
	}
}
