// Package fsr holds the pad server's wire vocabulary and its HTTP client.
//
// # Overview
//
// The pad server exposes two endpoints on the same host:
//
//   - GET /defaults: bootstrap configuration (thresholds, profiles, active profile)
//   - /ws: a persistent websocket carrying tagged JSON arrays in both directions
//
// This package covers the first directly (Client.FetchDefaults) and supplies the
// codec for the second (Encode, Decode). The websocket lifecycle itself lives in
// package wsconn.
//
// # Message Envelope
//
// Every frame is a JSON array whose first element is the action tag:
//
//	["values", {"values": [12, 0, 830, 4]}]
//	["thresholds", {"thresholds": [400, 400, 400, 400]}]
//	["update_threshold", [400, 400, 401, 400], 2]
//	["persist_thresholds"]
//
// Inbound frames carry one payload object. Outbound frames carry positional
// arguments. Decode returns the payload as json.RawMessage so each handler
// decodes only the shape it understands; ParsePayload treats a missing payload
// as an empty object.
//
// # Value Range
//
// Readings and thresholds are 10-bit ADC values in [MinReading, MaxReading].
// The channel count of a session is len(Defaults.Thresholds); a defaults
// payload with no thresholds is rejected as an error so the loader retries.
//
// # Error Handling
//
// Errors are wrapped with the failing step, matching the rest of the module:
//
//   - "execute request: dial tcp ...: connection refused"
//   - "api /defaults returned status 503"
//   - "decode response: unexpected EOF"
//   - "malformed message: empty array"
//
// # Testing
//
// Package fsrtest runs an in-process pad server (httptest + gorilla/websocket)
// used by the wsconn, session and app tests.
package fsr
