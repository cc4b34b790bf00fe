package ui

import "time"

// Icons (emojis/symbols)
const (
	IconSettings  = "⚙"
	IconPlay      = "▶"
	IconQueued    = "⏳"
	IconProcess   = "⚙"
	IconError     = "❌"
	IconCanceled  = "⏹"
	IconCompleted = "✔"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	DashPlaceholder     = "—"
	ProgressLabelFormat = "%d%%"
)

// Layout sizing (QueueRow / lists)
const (
	StatusLabelWidth  float32 = 110
	SpeedLabelWidth   float32 = 150
	PercentLabelWidth float32 = 48
	QualityLabelWidth float32 = 160

	RowMinWidth  float32 = 400
	RowMinHeight float32 = 80

	WindowWidth  float32 = 960
	WindowHeight float32 = 640
)

// Notification behavior
const (
	NotificationAutoHide = 4 * time.Second
)

// Playlist expansion runs off the UI thread and is bounded by this timeout
const (
	PlaylistExpandTimeout = 2 * time.Minute
)
