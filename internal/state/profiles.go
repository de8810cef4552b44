package state

import (
	"slices"
	"sync"
	"time"
)

// ProfileSnapshot is a point-in-time copy of the server's profile state.
type ProfileSnapshot struct {
	Names         []string
	Current       string
	LastPersisted time.Time
	LastUpdated   time.Time
}

// HasProfile reports whether name is in the list.
func (s ProfileSnapshot) HasProfile(name string) bool {
	return slices.Contains(s.Names, name)
}

// Profiles holds the profile list as last reported by the server. The client
// forwards add/remove/change requests and waits for the server to echo the
// result; nothing here is edited optimistically.
type Profiles struct {
	mu       sync.RWMutex
	snapshot ProfileSnapshot
}

// Seed replaces everything from a defaults payload and clears the persist
// acknowledgment.
func (p *Profiles) Seed(names []string, current string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = ProfileSnapshot{
		Names:       slices.Clone(names),
		Current:     current,
		LastUpdated: time.Now(),
	}
}

// SetNames records a get_profiles message.
func (p *Profiles) SetNames(names []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.Names = slices.Clone(names)
	p.snapshot.LastUpdated = time.Now()
}

// SetCurrent records a get_cur_profile message.
func (p *Profiles) SetCurrent(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.Current = name
	p.snapshot.LastUpdated = time.Now()
}

// MarkPersisted records a thresholds_persisted acknowledgment.
func (p *Profiles) MarkPersisted(at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot.LastPersisted = at
}

// Snapshot returns a copy of the current state.
func (p *Profiles) Snapshot() ProfileSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	snap := p.snapshot
	snap.Names = slices.Clone(p.snapshot.Names)
	return snap
}
