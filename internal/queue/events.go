package queue

import (
	"context"

	"github.com/ytget/fbgrabber/internal/model"
)

// RowHandle is an opaque token the presentation layer returns from CreateRow
// and receives back in later callbacks.
type RowHandle = any

// Phase describes what a transfer is doing right now.
type Phase int

const (
	PhaseQueued Phase = iota
	PhaseDownloading
	PhaseProcessing
)

func (p Phase) String() string {
	switch p {
	case PhaseQueued:
		return "Queued"
	case PhaseDownloading:
		return "Downloading"
	case PhaseProcessing:
		return "Processing"
	default:
		return "Unknown"
	}
}

// Progress is a normalized progress notification.
type Progress struct {
	Percent float64 // 0 to 100
	Speed   string  // e.g. "1.5 MiB/s", empty when unknown
	ETA     string  // e.g. "4m 05s", empty when unknown
	Phase   Phase
}

// AddRequest describes a new queue entry. An empty FormatID selects the best
// available variant.
type AddRequest struct {
	URL         string
	FormatID    string
	Title       string
	QualityText string
}

// Events is implemented by the presentation layer. All methods are called
// from the orchestrator loop goroutine, one at a time. Implementations may
// call Commands methods (except Snapshot) without deadlocking; they must
// marshal onto their own UI thread if they need one.
type Events interface {
	FormatsReady(url, title string, formats []model.FormatOption)
	FormatsFailed(url string, err error)
	// CreateRow is called once per added item, before any other callback
	// for it.
	CreateRow(item model.QueueItem, qualityText string) RowHandle
	ProgressUpdate(row RowHandle, progress Progress)
	ItemStarted(row RowHandle, item model.QueueItem)
	// ItemFinished is the last callback of a dispatch.
	ItemFinished(row RowHandle, item model.QueueItem)
	RowRemoved(row RowHandle)
}

// Commands is implemented by the orchestrator. Every method except Snapshot
// only enqueues a message and returns immediately.
type Commands interface {
	FetchFormats(url string)
	AddToQueue(req AddRequest)
	Retry(id int64)
	Remove(id int64)
	Cancel(id int64)
	CancelAll()
	// Snapshot returns copies of all items in queue order.
	Snapshot(ctx context.Context) ([]model.QueueItem, error)
	SetConfig(cfg Config)
}
