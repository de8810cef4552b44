// Package ui provides the Bubble Tea terminal interface for fsrmon.
//
// # Architecture Overview
//
// Model is the root tea.Model. It never blocks on the network: connection
// state and the profile list are re-read from the session on a short status
// tick, and sensor data is read straight from the shared ring and threshold
// vector by render loops.
//
// # Render Loops
//
// Each animating consumer is a render.Loop with its own frame schedule:
//
//   - Monitor view: one loop per sensor, each redrawing its cached panel
//   - Plot view: one loop redrawing the drawille canvas of the trailing window
//
// Loops stop when their view is left, when the connection drops and when
// the program exits. View only composes the caches the loops drew.
//
// # Views
//
//   - Monitor: reading, threshold and a bar per sensor, colored by whether
//     the reading is at or above its threshold
//   - Plot: trailing readings of every visible sensor plus threshold lines;
//     keys 1-9 hide and show sensors
//   - Profiles: list of profiles stored on the controller, with add, remove
//     and activate
//   - Logs: tail of the fsrmon log file, re-read on the status tick and
//     pinned to the bottom unless scrolled up
//
// While the session is not open the sensor views are replaced by a
// "Not connected!" placeholder.
//
// # Threshold Editing
//
// Arrow keys, shift+arrows and page keys adjust the selected sensor by 1, 5
// and 10. "=" opens a direct entry prompt. Every edit is applied locally at
// once and sent to the controller with the full threshold vector.
//
// # Theming
//
// Nightfox, Kanagawa and Slate palettes; T cycles them and the choice is
// saved with the other preferences.
package ui
