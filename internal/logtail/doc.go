// Package logtail reads the end of the fsrmon log file for display in the
// TUI.
//
// Read extracts the last N lines with a ring buffer in one sequential pass,
// using O(N) memory regardless of file size. Tail additionally decodes each
// zerolog JSON record into an Entry; lines that are not records are kept
// verbatim.
//
//	entries, err := logtail.Tail(path, 200)
//	for _, e := range entries {
//		fmt.Println(e.String())
//	}
package logtail
