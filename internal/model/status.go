package model

// QueueStatus represents the lifecycle state of a queue item
type QueueStatus int

const (
	// QueueStatusPending means the item is queued and waiting for a worker
	QueueStatusPending QueueStatus = iota

	// QueueStatusDownloading means a worker is transferring the item
	QueueStatusDownloading

	// QueueStatusCompleted means the transfer finished successfully
	QueueStatusCompleted

	// QueueStatusFailed means the transfer failed with an error
	QueueStatusFailed

	// QueueStatusCanceled means the user canceled the transfer
	QueueStatusCanceled
)

// String returns a stable identifier for logs and JSON output
func (s QueueStatus) String() string {
	switch s {
	case QueueStatusPending:
		return "pending"
	case QueueStatusDownloading:
		return "downloading"
	case QueueStatusCompleted:
		return "completed"
	case QueueStatusFailed:
		return "failed"
	case QueueStatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// DisplayText returns the user-facing label. Pending items are shown as
// "Queued"; there is no separate ready state.
func (s QueueStatus) DisplayText() string {
	switch s {
	case QueueStatusPending:
		return "Queued"
	case QueueStatusDownloading:
		return "Downloading"
	case QueueStatusCompleted:
		return "Completed"
	case QueueStatusFailed:
		return "Failed"
	case QueueStatusCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// IsActive returns true while a dispatch for the item has not finished
func (s QueueStatus) IsActive() bool {
	return s == QueueStatusPending || s == QueueStatusDownloading
}

// IsTerminal returns true if no further automatic transition occurs
func (s QueueStatus) IsTerminal() bool {
	return s == QueueStatusCompleted || s == QueueStatusFailed || s == QueueStatusCanceled
}
