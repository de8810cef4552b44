// Package session is the composition root of the synchronized client state.
//
// # Overview
//
// A Session owns one state.Ring, one state.Thresholds, one state.Profiles,
// one wsconn.Router and one defaults.Loader, plus whichever wsconn.Conn is
// currently live. Render loops and input handlers hold the shared pointers
// returned by History, Thresholds and Profiles; those pointers never change
// for the life of the Session.
//
// # Lifecycle
//
//	Start ─► Loader.Load ─► OnLoad(defaults)
//	                          ├─ close previous Conn (teardown, no OnClose)
//	                          ├─ Ring.Reset(len(thresholds))
//	                          ├─ Thresholds.ReplaceAll(thresholds)
//	                          ├─ Profiles.Seed(profiles, cur_profile)
//	                          └─ wsconn.Dial(url, OnClose: reload)
//
//	unexpected close ─► Loader.Reload ─► (fetch again) ─► OnLoad ...
//
// Every reconnect restarts from fresh defaults; nothing from the previous
// connection is repaired in place. A failed handshake delays the reload by
// one retry interval. Each dial carries a generation number, and a close
// reported by an already superseded Conn is ignored.
//
// # Inbound Messages
//
//	values               → Ring.Append (width normalized, logged, counted)
//	thresholds           → Thresholds.ReplaceAll
//	get_profiles         → Profiles.SetNames
//	get_cur_profile      → Profiles.SetCurrent
//	thresholds_persisted → Profiles.MarkPersisted
//
// A values or thresholds frame with no list is malformed and skipped; it
// never overwrites the shared state.
//
// # Threshold Edits
//
// SetThreshold clamps to [0, 1023], applies the value in place, then emits
//
//	["update_threshold", <full vector>, <index>]
//
// The full vector lets a restarted server resynchronize every channel from
// one message; the index tells it which channel to actuate.
//
// # Emit Policy
//
// While a connection is still connecting, Emit queues and the queue is
// flushed in order on open. With no connection (loading, or after a drop)
// Emit returns ErrNotConnected. Local threshold edits are applied either way.
package session
