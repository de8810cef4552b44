package state

import (
	"sync"

	"github.com/five82/fsrmon/internal/fsr"
)

// Ring is a fixed-capacity history of sensor snapshots. Appends are O(1) and
// overwrite the oldest entry once the buffer is full. A Ring is written by the
// connection's reader goroutine and read by any number of render loops.
type Ring struct {
	mu       sync.RWMutex
	capacity int
	width    int
	buf      []fsr.Snapshot
	oldest   int
}

// NewRing returns an empty ring. Capacities below one are raised to one.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		capacity: capacity,
		buf:      make([]fsr.Snapshot, 0, capacity),
	}
}

// Reset clears the history and seeds it with one zero snapshot of width
// channels.
func (r *Ring) Reset(width int) {
	if width < 0 {
		width = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.width = width
	r.oldest = 0
	r.buf = r.buf[:0]
	r.buf = append(r.buf, make(fsr.Snapshot, width))
}

// Append stores a copy of s. A snapshot whose length differs from the ring's
// width is truncated or zero-padded to fit; the return value reports whether
// that happened. A ring that was never reset adopts the width of its first
// snapshot.
func (r *Ring) Append(s fsr.Snapshot) (normalized bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.width == 0 && len(r.buf) == 0 {
		r.width = len(s)
	}
	normalized = len(s) != r.width

	if len(r.buf) < r.capacity {
		slot := make(fsr.Snapshot, r.width)
		fit(slot, s)
		r.buf = append(r.buf, slot)
		return normalized
	}

	// Full: reuse the oldest slot's storage.
	slot := r.buf[r.oldest]
	if len(slot) != r.width {
		slot = make(fsr.Snapshot, r.width)
		r.buf[r.oldest] = slot
	}
	fit(slot, s)
	r.oldest = (r.oldest + 1) % r.capacity
	return normalized
}

// Latest copies the newest snapshot into dst, growing it when needed, and
// returns it. Before anything is stored it returns width zeros.
func (r *Ring) Latest(dst fsr.Snapshot) fsr.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dst = resize(dst, r.width)
	if len(r.buf) == 0 {
		clear(dst)
		return dst
	}
	copy(dst, r.buf[r.physical(len(r.buf)-1)])
	return dst
}

// ValueAt returns the reading for channel at offset snapshots before the
// newest (0 is the newest). Out-of-range arguments return 0, false.
func (r *Ring) ValueAt(channel, offset int) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if channel < 0 || channel >= r.width || offset < 0 || offset >= len(r.buf) {
		return 0, false
	}
	return r.buf[r.physical(len(r.buf)-1-offset)][channel], true
}

// NthFromOldest copies the n-th snapshot in logical order (0 is the oldest)
// into dst.
func (r *Ring) NthFromOldest(n int, dst fsr.Snapshot) (fsr.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n < 0 || n >= len(r.buf) {
		return dst[:0], false
	}
	dst = resize(dst, r.width)
	copy(dst, r.buf[r.physical(n)])
	return dst, true
}

// Series writes one channel's readings oldest to newest into dst.
func (r *Ring) Series(channel int, dst []int) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dst = dst[:0]
	if channel < 0 || channel >= r.width {
		return dst
	}
	for i := range r.buf {
		dst = append(dst, r.buf[r.physical(i)][channel])
	}
	return dst
}

// Len returns the number of stored snapshots.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.buf)
}

// Cap returns the fixed capacity.
func (r *Ring) Cap() int {
	return r.capacity
}

// Width returns the channel count set by the last Reset.
func (r *Ring) Width() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.width
}

// Oldest returns the physical index of the oldest snapshot. It stays 0 until
// the buffer fills.
func (r *Ring) Oldest() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.oldest
}

// physical maps a logical position (0 = oldest) to a buffer index. oldest is
// 0 until the buffer is full, so the same formula covers both phases.
func (r *Ring) physical(logical int) int {
	return (logical + r.oldest) % len(r.buf)
}

// fit copies src into dst, zero-filling whatever src does not cover.
func fit(dst, src []int) {
	n := copy(dst, src)
	clear(dst[n:])
}

func resize(dst []int, n int) []int {
	if cap(dst) < n {
		return make([]int, n)
	}
	return dst[:n]
}

// Fit returns values truncated or zero-padded to width.
func Fit(values []int, width int) []int {
	out := make([]int, width)
	fit(out, values)
	return out
}
