// Package defaults fetches the pad server's bootstrap configuration.
//
// A Loader owns at most one fetch chain at a time. A chain requests
// /defaults, and on failure waits RetryDelay (one second by default) and
// tries again, forever. There is no retry cap: the client must come up on
// its own once the controller is reachable.
//
//	Load ──► fetch ──fail──► wait 1s ──► fetch ──ok──► cache, OnLoad(d)
//	                   ▲                         │
//	Reload ── cancel ──┘  (request and timer)    └── chain ends
//
// Reload is the recovery path after an unexpected disconnect: it drops the
// cache, cancels the running chain with its timer, and starts over, so the
// sensor count and active profile are re-read before reconnecting. Each
// chain carries a generation number; a chain that finishes after being
// superseded never calls OnLoad.
package defaults
