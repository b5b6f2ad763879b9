package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutWideWidth is the minimum width to show timestamps in rows.
	LayoutWideWidth = 120
)

// Log display limits.
const (
	// LogTailLines is how many lines of the log file the log view reads.
	LogTailLines = 1000
)

// Timing constants.
const (
	// UIRefreshInterval advances relative times and expires flash messages.
	// Data changes arrive through watchers instead.
	UIRefreshInterval = 500 * time.Millisecond

	// LoadMoreThreshold is how close to the end of a list the selection must
	// be before the next page is requested.
	LoadMoreThreshold = 3
)
