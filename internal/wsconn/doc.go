// Package wsconn is the realtime link to the pad server's /ws endpoint.
//
// # Overview
//
// A Conn is one connection attempt. It is never reused: the session dials a
// fresh Conn after every reload. A Router maps action tags to handlers and
// outlives the connections that feed it.
//
// # State Machine
//
//	Idle ──Dial──► Connecting ──handshake──► Open
//	                    │                      │
//	                    └──── error/close ─────┴──► Closed (terminal)
//
// Dial starts the handshake in a goroutine and returns at once. The Conn is
// ready as soon as the handshake completes.
//
// # Sending
//
// Emit encodes [action, args...] as a JSON array. While Connecting,
// messages are queued and flushed in order before the state becomes Open.
// While Open they are written directly. After Closed, Emit returns
// ErrClosed. Messages still queued when a Conn closes before opening are
// discarded and counted.
//
// # Receiving
//
// One reader goroutine decodes each frame and dispatches it through the
// Router in arrival order. Malformed frames, unknown actions and handler
// errors are logged and skipped; none of them close the connection.
//
// # Teardown
//
// Close sets the teardown flag before closing the socket, so the reader's
// close path does not call OnClose. Any other closure calls OnClose exactly
// once, with ErrDial wrapping the cause when the handshake never completed.
//
// # Keepalive
//
// Pongs extend the read deadline and a ping is written every PingPeriod, so
// a silent server surfaces as a read error.
package wsconn
