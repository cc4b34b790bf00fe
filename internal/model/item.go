package model

import (
	"path/filepath"
	"strings"
	"time"
)

// QueueItem represents one user-requested download
type QueueItem struct {
	ID          int64
	URL         string
	Title       string
	FormatID    string // empty means best available
	QualityText string // variant label chosen by the user
	Status      QueueStatus
	Progress    float64 // 0 to 100
	Speed       string  // human readable speed (e.g., "1.2 MiB/s")
	ETA         string  // human readable time remaining
	OutputPath  string  // set only on success
	Error       string  // set only on failure or cancel
	Attempts    int     // number of dispatches so far
	CreatedAt   time.Time
	FinishedAt  time.Time
}

// NewQueueItem creates a pending item
func NewQueueItem(id int64, url, formatID, title, qualityText string) *QueueItem {
	return &QueueItem{
		ID:          id,
		URL:         url,
		Title:       title,
		FormatID:    formatID,
		QualityText: qualityText,
		Status:      QueueStatusPending,
		CreatedAt:   time.Now(),
	}
}

// ResetForDispatch clears progress and terminal fields before a new attempt
func (qi *QueueItem) ResetForDispatch() {
	qi.Status = QueueStatusPending
	qi.Progress = 0
	qi.Speed = ""
	qi.ETA = ""
	qi.OutputPath = ""
	qi.Error = ""
	qi.FinishedAt = time.Time{}
	qi.Attempts++
}

// Complete records a successful transfer
func (qi *QueueItem) Complete(outputPath string) {
	qi.Status = QueueStatusCompleted
	qi.OutputPath = outputPath
	qi.Error = ""
	qi.Progress = 100
	qi.Speed = ""
	qi.ETA = ""
	qi.FinishedAt = time.Now()
}

// Fail records a failed or canceled transfer. Progress keeps its last value.
func (qi *QueueItem) Fail(status QueueStatus, message string) {
	qi.Status = status
	qi.Error = message
	qi.OutputPath = ""
	qi.Speed = ""
	qi.ETA = ""
	qi.FinishedAt = time.Now()
}

// GetDisplayTitle returns title, filename, or URL in order of preference
func (qi *QueueItem) GetDisplayTitle() string {
	if qi.Title != "" && !strings.HasPrefix(qi.Title, "http") {
		return qi.Title
	}

	if qi.OutputPath != "" {
		name := filepath.Base(qi.OutputPath)
		if idx := strings.LastIndex(name, "."); idx > 0 {
			name = name[:idx]
		}
		return name
	}

	return qi.URL
}
