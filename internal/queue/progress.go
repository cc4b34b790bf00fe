package queue

import (
	"strings"

	"github.com/ytget/fbgrabber/internal/download"
	"github.com/ytget/fbgrabber/internal/platform"
)

// Raw status values reported by the fetcher.
const (
	statusFinished    = "finished"
	statusMergePrefix = "merg"
	statusPostPrefix  = "post"
)

// Normalize converts a raw fetcher event into display-ready progress.
func Normalize(ev download.ProgressEvent) Progress {
	status := strings.ToLower(strings.TrimSpace(ev.Status))
	if status == statusFinished {
		return Progress{Percent: 100, Phase: PhaseProcessing}
	}

	p := Progress{
		Phase: PhaseDownloading,
		Speed: platform.SpeedText(ev.Speed),
		ETA:   platform.HumanETA(ev.ETA),
	}
	if strings.HasPrefix(status, statusMergePrefix) || strings.HasPrefix(status, statusPostPrefix) {
		p.Phase = PhaseProcessing
	}

	total := ev.TotalBytes
	if total <= 0 {
		total = ev.TotalBytesEstimate
	}
	if total > 0 {
		p.Percent = min(max(ev.DownloadedBytes/total*100, 0), 100)
	}
	return p
}
