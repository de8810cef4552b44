package state

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/fsrmon/internal/fsr"
)

func TestRing_CapacityThreeWrap(t *testing.T) {
	r := NewRing(3)
	for _, v := range []int{1, 2, 3, 4} {
		r.Append(fsr.Snapshot{v})
	}

	if diff := cmp.Diff(fsr.Snapshot{4}, r.Latest(nil)); diff != "" {
		t.Fatalf("Latest mismatch (-want +got):\n%s", diff)
	}
	for offset, want := range []int{4, 3, 2} {
		got, ok := r.ValueAt(0, offset)
		if !ok || got != want {
			t.Fatalf("ValueAt(0, %d) = %d, %v; want %d, true", offset, got, ok, want)
		}
	}
	if _, ok := r.ValueAt(0, 3); ok {
		t.Fatalf("ValueAt(0, 3) ok = true, want false past capacity")
	}
	if r.Len() != 3 || r.Oldest() != 1 {
		t.Fatalf("Len, Oldest = %d, %d; want 3, 1", r.Len(), r.Oldest())
	}
}

func TestRing_LatestTracksEveryAppend(t *testing.T) {
	r := NewRing(5)
	r.Reset(2)
	for i := range 23 {
		s := fsr.Snapshot{i, 1000 - i}
		r.Append(s)
		if diff := cmp.Diff(s, r.Latest(nil)); diff != "" {
			t.Fatalf("append %d: Latest mismatch (-want +got):\n%s", i, diff)
		}
		if v, _ := r.ValueAt(1, 0); v != 1000-i {
			t.Fatalf("append %d: ValueAt(1, 0) = %d, want %d", i, v, 1000-i)
		}
	}
}

func TestRing_OldestAdvancesOncePerAppendWhenFull(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 7, 16} {
		r := NewRing(capacity)
		r.Reset(1)
		for k := 1; k <= capacity*3; k++ {
			before := r.Oldest()
			wasFull := r.Len() == capacity
			r.Append(fsr.Snapshot{k})

			if r.Len() > capacity {
				t.Fatalf("cap %d: Len = %d exceeds capacity", capacity, r.Len())
			}
			if wasFull {
				if want := (before + 1) % capacity; r.Oldest() != want {
					t.Fatalf("cap %d append %d: Oldest = %d, want %d", capacity, k, r.Oldest(), want)
				}
			} else if r.Oldest() != 0 {
				t.Fatalf("cap %d append %d: Oldest = %d before full, want 0", capacity, k, r.Oldest())
			}
		}
		if r.Len() != capacity {
			t.Fatalf("cap %d: Len = %d, want %d", capacity, r.Len(), capacity)
		}
	}
}

func TestRing_NthFromOldestAndSeries(t *testing.T) {
	r := NewRing(4)
	r.Reset(1)
	r.Append(fsr.Snapshot{1})
	r.Append(fsr.Snapshot{2})

	// Not full: logical order is buffer order starting at the seed.
	if diff := cmp.Diff([]int{0, 1, 2}, r.Series(0, nil)); diff != "" {
		t.Fatalf("Series before full (-want +got):\n%s", diff)
	}

	for _, v := range []int{3, 4, 5} {
		r.Append(fsr.Snapshot{v})
	}
	if diff := cmp.Diff([]int{2, 3, 4, 5}, r.Series(0, nil)); diff != "" {
		t.Fatalf("Series after wrap (-want +got):\n%s", diff)
	}
	got, ok := r.NthFromOldest(0, nil)
	if !ok || got[0] != 2 {
		t.Fatalf("NthFromOldest(0) = %v, %v; want [2], true", got, ok)
	}
	if _, ok := r.NthFromOldest(4, nil); ok {
		t.Fatalf("NthFromOldest(4) ok = true, want false")
	}
	if s := r.Series(5, nil); len(s) != 0 {
		t.Fatalf("Series(5) = %v, want empty", s)
	}
}

func TestRing_ResetSeedsZeroSnapshot(t *testing.T) {
	r := NewRing(10)
	if got := r.Latest(nil); len(got) != 0 {
		t.Fatalf("Latest on fresh ring = %v, want empty", got)
	}
	r.Append(fsr.Snapshot{9, 9})
	r.Reset(4)

	if r.Len() != 1 || r.Width() != 4 || r.Oldest() != 0 {
		t.Fatalf("after Reset: Len=%d Width=%d Oldest=%d", r.Len(), r.Width(), r.Oldest())
	}
	if diff := cmp.Diff(fsr.Snapshot{0, 0, 0, 0}, r.Latest(nil)); diff != "" {
		t.Fatalf("Latest after Reset (-want +got):\n%s", diff)
	}
}

func TestRing_AppendNormalizesWidth(t *testing.T) {
	r := NewRing(3)
	r.Reset(3)

	tests := []struct {
		name string
		in   fsr.Snapshot
		want fsr.Snapshot
		norm bool
	}{
		{"exact", fsr.Snapshot{1, 2, 3}, fsr.Snapshot{1, 2, 3}, false},
		{"short", fsr.Snapshot{7}, fsr.Snapshot{7, 0, 0}, true},
		{"long", fsr.Snapshot{4, 5, 6, 7, 8}, fsr.Snapshot{4, 5, 6}, true},
		{"empty", fsr.Snapshot{}, fsr.Snapshot{0, 0, 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Append(tt.in); got != tt.norm {
				t.Fatalf("Append normalized = %v, want %v", got, tt.norm)
			}
			if diff := cmp.Diff(tt.want, r.Latest(nil)); diff != "" {
				t.Fatalf("Latest mismatch (-want +got):\n%s", diff)
			}
			if r.Len() > r.Cap() {
				t.Fatalf("Len %d exceeds Cap %d", r.Len(), r.Cap())
			}
		})
	}
}

func TestRing_AppendCopiesInput(t *testing.T) {
	r := NewRing(2)
	r.Reset(2)
	in := fsr.Snapshot{5, 6}
	r.Append(in)
	in[0] = 999

	if v, _ := r.ValueAt(0, 0); v != 5 {
		t.Fatalf("stored snapshot changed with caller's slice: got %d", v)
	}
}

func TestRing_LatestReusesBuffer(t *testing.T) {
	r := NewRing(8)
	r.Reset(4)
	r.Append(fsr.Snapshot{1, 2, 3, 4})
	dst := make(fsr.Snapshot, 4)

	allocs := testing.AllocsPerRun(100, func() {
		dst = r.Latest(dst)
	})
	if allocs != 0 {
		t.Fatalf("Latest allocated %.1f times per call, want 0", allocs)
	}
}

func TestRing_ConcurrentAppendAndRead(t *testing.T) {
	r := NewRing(64)
	r.Reset(4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range 2000 {
			r.Append(fsr.Snapshot{i, i, i, i})
		}
	}()

	buf := make(fsr.Snapshot, 4)
	for range 2000 {
		buf = r.Latest(buf)
		for ch := 1; ch < len(buf); ch++ {
			if buf[ch] != buf[0] {
				t.Fatalf("torn read: %v", buf)
			}
		}
	}
	wg.Wait()
}
