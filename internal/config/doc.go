// Package config loads the fsrmon client configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/fsrmon/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//
// Command-line flags are applied on top by cmd/fsrmon.
//
// # Default Values
//
//   - Config file: ~/.config/fsrmon/config.toml
//   - Pad server: localhost:5000
//   - History size: 1000 snapshots
//   - Frame rate: 60.1 fps
//   - Defaults retry delay: 1s
//   - Log file: ~/.local/state/fsrmon/fsrmon.log
//   - Log level: info
//   - Metrics: disabled
//
// # TOML Format
//
//	host = "localhost:5000"
//	history_size = 1000
//	fps = 60.1
//	retry_delay = "1s"
//	log_file = "~/.local/state/fsrmon/fsrmon.log"
//	log_level = "info"
//	metrics_addr = "127.0.0.1:9109"
//
// Every field is optional. Tilde expansion is performed on log_file.
// retry_delay uses Go duration syntax.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML syntax errors or an unparseable retry_delay
package config
