package ui

import "time"

// Icons (emojis/symbols)
const (
	IconFolder = "📁"
	IconFile   = "📄"
	IconStart  = "▶"
	IconError  = "❌"
	IconDone   = "✔"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Layout sizing
const (
	WindowWidth  float32 = 720
	WindowHeight float32 = 480

	PercentLabelWidth float32 = 48
	RowMinWidth       float32 = 400
)

// URLs / parsing
const (
	PlaylistQueryParam = "list"
	VideoQueryParam    = "v"
)

// Debounce durations
const (
	TaskListRefreshDebounce = 100 * time.Millisecond
)
