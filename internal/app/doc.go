// Package app provides the orchestration layer for the fsrmon application.
//
// # Overview
//
// This package wires together configuration, logging, metrics, the
// synchronized session and the UI. It is the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load client configuration from ~/.config/fsrmon/config.toml and apply
//     command-line overrides
//  2. Open the log file (the terminal belongs to the TUI)
//  3. Build the Prometheus registry and, when metrics_addr is set, serve it
//  4. Build the pad HTTP client and the session around it
//  5. Start the session, which loads defaults and connects in the background
//  6. Start the TUI and block until the user exits or the context cancels
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()      Read config, apply flags
//	       ├─────> logging.Open()     File logger
//	       ├─────> metrics.New()      Registry (+ Serve)
//	       ├─────> NewSession()       Pad client + session
//	       ├─────> Session.Start()    Defaults loader + connection
//	       └─────> ui.Run()           Start TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - Log file cannot be opened
//   - Invalid host
//   - TUI failure
//
// Recoverable errors (logged, retried forever):
//   - Controller unreachable or /defaults failing
//   - Connection dropped
//
// fsrmon never refuses to start because the controller is offline; the UI
// shows the connecting placeholder until it appears.
package app
