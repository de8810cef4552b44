package render

import "time"

// DefaultFPS is the target frame cadence.
const DefaultFPS = 60.1

// IntervalFor converts a frame rate into the minimum spacing between drawn
// frames. Non-positive rates use DefaultFPS.
func IntervalFor(fps float64) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// Limiter decides whether a frame timestamp may draw.
type Limiter struct {
	MinInterval time.Duration

	prev time.Time
}

// Allow reports whether ts is at least MinInterval after the last allowed
// frame, and records ts when it is. The first frame is always allowed.
func (l *Limiter) Allow(ts time.Time) bool {
	if !l.prev.IsZero() && ts.Sub(l.prev) < l.MinInterval {
		return false
	}
	l.prev = ts
	return true
}

// Reset forgets the previous frame.
func (l *Limiter) Reset() {
	l.prev = time.Time{}
}
