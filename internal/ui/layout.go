package ui

import "time"

// Vertical chrome around the content area.
const (
	headerLines = 2
	footerLines = 2
)

// Panel limits.
const (
	// MinBarWidth keeps sensor bars readable on narrow terminals.
	MinBarWidth = 10

	// MinPlotHeight is the smallest canvas worth drawing.
	MinPlotHeight = 4
)

// Timing constants.
const (
	// StatusInterval is how often connection state and profiles are re-read.
	StatusInterval = 250 * time.Millisecond

	// NoticeTTL is how long a status line message stays visible.
	NoticeTTL = 5 * time.Second
)
