// Package state holds the shared structures that network handlers write and
// render loops read.
//
// # Overview
//
// Three containers live here, each owned by one session.Session and shared by
// pointer with every consumer:
//
//   - Ring: fixed-capacity history of sensor snapshots
//   - Thresholds: per-channel activation values, edited optimistically
//   - Profiles: the server's profile list and active profile
//
// # Architecture
//
// The package follows a producer-consumer pattern:
//
//	Producer (wsconn reader):        Consumers (render loops):
//	┌──────────────────────┐        ┌──────────────────────┐
//	│ "values"     → Append│        │ Latest / Series      │
//	│ "thresholds" → Replace│──────→│ Thresholds.Values    │
//	│ "get_profiles"→ Set  │ (mutex)│ Profiles.Snapshot    │
//	└──────────────────────┘        └──────────────────────┘
//
// Each container guards itself with a sync.RWMutex. Every mutation is one
// critical section (clear+repopulate, or a single index assignment), so a
// reader sees either the whole previous state or the whole next one.
//
// # Ring Semantics
//
// While the ring is not full, appends grow the buffer and the logical oldest
// entry is index 0. Once full, an append overwrites buf[oldest] and advances
// oldest modulo the capacity:
//
//	cap 3, append 1,2,3:  [1 2 3]  oldest=0
//	append 4:             [4 2 3]  oldest=1
//	ValueAt(0, 0..2)  →   4, 3, 2
//
// Reset(width) clears the history and seeds one zero snapshot. A snapshot
// whose length differs from the width is truncated or zero-padded; Append
// reports when that happens.
//
// Latest and NthFromOldest copy into a caller-supplied slice so a render loop
// can reuse one buffer per frame without allocating.
//
// # Threshold Identity
//
// A *Thresholds is created once per session and never reassigned. ReplaceAll
// rewrites the slice contents in place, so anything holding the pointer sees
// server resyncs without re-subscribing. Set does not clamp; callers apply
// Clamp first so the value applied locally and the value sent to the server
// are identical.
//
// # Testing Considerations
//
// A zero Profiles is ready to use. Ring and Thresholds need their
// constructors for capacity and initial contents.
package state
