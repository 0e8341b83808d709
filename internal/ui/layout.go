package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutFormMaxWidth caps the width of form boxes.
	LayoutFormMaxWidth = 90
)

// Chrome sizes.
const (
	// chromeHeight is the header plus the command bar.
	chromeHeight = 2

	// ActivityLines is the number of log lines loaded into the activity overlay.
	ActivityLines = 500
)
