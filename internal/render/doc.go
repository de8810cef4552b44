// Package render implements the frame contract shared by every view that
// animates from the session state.
//
// # Overview
//
// A Loop draws at most once per frame slot, skips slots that arrive too
// soon and always reschedules. Loops never touch the network; their draw
// callbacks read the shared ring and threshold vector directly.
//
// # Frame Slots
//
// Slots are FrameMsg values delivered through the Bubble Tea event loop:
//
//	Start ──► tea.Tick ──► FrameMsg{Loop, Gen} ──► Frame
//	                ▲                                │
//	                └──────── reschedule ◄───────────┤
//	                                                 └─► Limiter.Allow ─► draw
//
// Limiter.Allow admits a slot when there was no previous frame or at least
// MinInterval has passed since the last drawn one. The default rate is
// DefaultFPS (60.1 frames per second).
//
// # Cancellation
//
// Stop bumps the loop's generation. A FrameMsg carrying an older generation
// is dropped and not rescheduled, so a stopped loop goes quiet after at most
// one pending slot. Resize listeners attached with Attach are removed on
// Stop.
//
// # Metrics
//
// Each slot is counted as drawn or skipped under the loop's name when a
// *metrics.Metrics is supplied.
package render
