package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/five82/fsrmon/internal/fsr"
)

// Threshold bounds match the controller's ADC range.
const (
	MinValue = fsr.MinReading
	MaxValue = fsr.MaxReading
)

// ErrChannelRange is returned for an index outside the vector.
var ErrChannelRange = errors.New("channel out of range")

// Clamp snaps v into [MinValue, MaxValue].
func Clamp(v int) int {
	return min(max(v, MinValue), MaxValue)
}

// Thresholds is the per-channel activation vector. A *Thresholds is shared by
// reference and never replaced: ReplaceAll rewrites the contents in place, so
// every holder observes the new values.
type Thresholds struct {
	mu     sync.RWMutex
	values []int
}

// NewThresholds returns a vector holding a copy of values.
func NewThresholds(values []int) *Thresholds {
	t := &Thresholds{}
	t.ReplaceAll(values)
	return t
}

// ReplaceAll clears the vector and repopulates it from values.
func (t *Thresholds) ReplaceAll(values []int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.values = append(t.values[:0], values...)
}

// Set assigns one channel. Callers clamp first.
func (t *Thresholds) Set(index, value int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.values) {
		return fmt.Errorf("set threshold %d: %w", index, ErrChannelRange)
	}
	t.values[index] = value
	return nil
}

// SetAndSnapshot assigns one channel and returns a copy of the whole vector
// taken under the same lock.
func (t *Thresholds) SetAndSnapshot(index, value int) ([]int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if index < 0 || index >= len(t.values) {
		return nil, fmt.Errorf("set threshold %d: %w", index, ErrChannelRange)
	}
	t.values[index] = value
	return append([]int(nil), t.values...), nil
}

// Get returns one channel's threshold.
func (t *Thresholds) Get(index int) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if index < 0 || index >= len(t.values) {
		return 0, false
	}
	return t.values[index], true
}

// Len returns the channel count.
func (t *Thresholds) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.values)
}

// Values copies the vector into dst, growing it when needed.
func (t *Thresholds) Values(dst []int) []int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append(dst[:0], t.values...)
}
