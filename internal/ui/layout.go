package ui

import "time"

// Chrome rows around the poster grid: header, filter bar, detail line and
// command bar.
const chromeRows = 4

// Card padding around each poster, in cells.
const (
	cardPadX = 2
	cardPadY = 2 // title line plus spacer
)

// Diagnostics pane limits.
const (
	// LogTailLines is the number of log lines read for the diagnostics pane.
	LogTailLines = 200

	// LogRefreshInterval is how often the diagnostics pane rereads the file.
	LogRefreshInterval = 2 * time.Second
)

// Thumbnail defaults when the caller leaves dimensions unset.
const (
	DefaultThumbWidth  = 24
	DefaultThumbHeight = 18
)
