package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ytget/fbgrabber/internal/config"
	"github.com/ytget/fbgrabber/internal/model"
	"github.com/ytget/fbgrabber/internal/platform"
	"github.com/ytget/fbgrabber/internal/queue"
)

// progressInterval throttles progress lines per item
const progressInterval = time.Second

var getCmd = &cobra.Command{
	Use:   "get <url>...",
	Short: "Download one or more videos",
	Long: `Download one or more videos concurrently.

Playlist URLs are expanded into their videos. The command exits with a
non-zero status when any download fails or is interrupted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		opts := getOptions{}
		opts.formatID, _ = cmd.Flags().GetString("format")
		opts.parallel, _ = cmd.Flags().GetInt("parallel")
		opts.dir, _ = cmd.Flags().GetString("dir")
		opts.cookies, _ = cmd.Flags().GetString("cookies")
		return runGet(cmd.Context(), rt, args, opts)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().StringP("format", "f", "", "Format id (default: best available)")
	getCmd.Flags().IntP("parallel", "p", 0, "Max concurrent downloads (default from config)")
	getCmd.Flags().StringP("dir", "d", "", "Download directory (default from config)")
	getCmd.Flags().String("cookies", "", "Netscape cookies file")
}

type getOptions struct {
	formatID string
	parallel int
	dir      string
	cookies  string
}

// queueConfig merges flag overrides into the file configuration
func (o getOptions) queueConfig(cfg *config.File) (queue.Config, error) {
	qc := cfg.QueueConfig()
	if o.parallel != 0 {
		qc.MaxConcurrent = o.parallel
	}
	if o.dir != "" {
		qc.DownloadDir = o.dir
	}
	if o.cookies != "" {
		qc.CookiesFile = o.cookies
	}
	if errs := config.ValidateQueue(qc); len(errs) > 0 {
		return queue.Config{}, &config.ConfigError{Errors: errs}
	}
	return qc, nil
}

func runGet(ctx context.Context, rt *runtime, urls []string, opts getOptions) error {
	qc, err := opts.queueConfig(rt.cfg)
	if err != nil {
		return err
	}

	requests, err := expandRequests(ctx, rt, urls, opts.formatID)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return errors.New("nothing to download")
	}

	p := newPrinter(rt.out, rt.json, len(requests))
	orch := queue.NewOrchestrator(rt.resolver, rt.fetcher, p, qc, rt.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return orch.Run(gctx)
	})
	g.Go(func() error {
		defer orch.Close()
		select {
		case <-p.done:
			return nil
		case <-gctx.Done():
			stats := orch.PoolStats()
			rt.logger.Warn("downloads interrupted", "running", stats.Running, "queued", stats.Queued)
			return gctx.Err()
		}
	})

	for _, req := range requests {
		orch.AddToQueue(req)
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("interrupted")
		}
		return err
	}
	return p.summary()
}

// expandRequests turns arguments into queue requests, listing playlists
func expandRequests(ctx context.Context, rt *runtime, urls []string, formatID string) ([]queue.AddRequest, error) {
	var requests []queue.AddRequest
	for _, raw := range urls {
		link := strings.TrimSpace(raw)
		if link == "" {
			continue
		}
		if !platform.IsPlaylistURL(link) {
			requests = append(requests, queue.AddRequest{URL: link, FormatID: formatID, QualityText: formatID})
			continue
		}

		entries, err := rt.playlists.Expand(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("playlist %s: %w", link, err)
		}
		rt.logger.Info("playlist expanded", "url", link, "videos", len(entries))
		for _, e := range entries {
			requests = append(requests, queue.AddRequest{URL: e.URL, Title: e.Title})
		}
	}
	return requests, nil
}

// printer renders queue events as text lines or JSON records. Its Events
// methods run on the orchestrator loop.
type printer struct {
	out      io.Writer
	json     bool
	expected int

	mu        sync.Mutex
	finished  []model.QueueItem
	throttles map[int64]*rate.Sometimes
	done      chan struct{}
}

var _ queue.Events = (*printer)(nil)

func newPrinter(out io.Writer, json bool, expected int) *printer {
	return &printer{
		out:       out,
		json:      json,
		expected:  expected,
		throttles: make(map[int64]*rate.Sometimes),
		done:      make(chan struct{}),
	}
}

func (p *printer) FormatsReady(string, string, []model.FormatOption) {}

func (p *printer) FormatsFailed(string, error) {}

func (p *printer) RowRemoved(queue.RowHandle) {}

func (p *printer) CreateRow(item model.QueueItem, qualityText string) queue.RowHandle {
	p.mu.Lock()
	p.throttles[item.ID] = &rate.Sometimes{Interval: progressInterval}
	p.mu.Unlock()

	if !p.json {
		quality := qualityText
		if quality == "" {
			quality = "best"
		}
		printf(p.out, "[%d] queued %s (%s)\n", item.ID, item.GetDisplayTitle(), quality)
	}
	return item.ID
}

func (p *printer) ItemStarted(row queue.RowHandle, item model.QueueItem) {
	if !p.json {
		printf(p.out, "[%d] downloading %s\n", item.ID, item.URL)
	}
}

func (p *printer) ProgressUpdate(row queue.RowHandle, progress queue.Progress) {
	id, _ := row.(int64)
	p.mu.Lock()
	throttle := p.throttles[id]
	p.mu.Unlock()
	if p.json || throttle == nil || progress.Phase == queue.PhaseQueued {
		return
	}

	throttle.Do(func() {
		parts := []string{fmt.Sprintf("%5.1f%%", progress.Percent)}
		if progress.Speed != "" {
			parts = append(parts, progress.Speed)
		}
		if progress.ETA != "" {
			parts = append(parts, "ETA "+progress.ETA)
		}
		printf(p.out, "[%d] %s %s\n", id, strings.ToLower(progress.Phase.String()), strings.Join(parts, " "))
	})
}

func (p *printer) ItemFinished(row queue.RowHandle, item model.QueueItem) {
	if p.json {
		p.printRecord(item)
	} else {
		switch item.Status {
		case model.QueueStatusCompleted:
			printf(p.out, "[%d] completed %s\n", item.ID, item.OutputPath)
		default:
			printf(p.out, "[%d] %s: %s\n", item.ID, item.Status, item.Error)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = append(p.finished, item)
	if len(p.finished) == p.expected {
		close(p.done)
	}
}

type itemRecord struct {
	ID       int64  `json:"id"`
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Status   string `json:"status"`
	Path     string `json:"path,omitempty"`
	Error    string `json:"error,omitempty"`
	Attempts int    `json:"attempts"`
}

func (p *printer) printRecord(item model.QueueItem) {
	printJSONLine(p.out, itemRecord{
		ID:       item.ID,
		URL:      item.URL,
		Title:    item.Title,
		Status:   item.Status.String(),
		Path:     item.OutputPath,
		Error:    item.Error,
		Attempts: item.Attempts,
	})
}

// summary reports the failed items as a single error
func (p *printer) summary() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	failed := 0
	for _, item := range p.finished {
		if item.Status != model.QueueStatusCompleted {
			failed++
		}
	}
	if !p.json {
		printf(p.out, "%d of %d downloads completed\n", len(p.finished)-failed, p.expected)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, p.expected)
	}
	return nil
}
