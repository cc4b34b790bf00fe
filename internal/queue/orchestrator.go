package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ytget/fbgrabber/internal/download"
	"github.com/ytget/fbgrabber/internal/model"
	"github.com/ytget/fbgrabber/internal/platform"
)

// CanceledMessage is recorded on items stopped by the user.
const CanceledMessage = "Download canceled"

var (
	// ErrStopped is returned by Snapshot once the loop has exited.
	ErrStopped = errors.New("orchestrator stopped")
	// ErrEmptyURL is reported when a command carries a blank URL.
	ErrEmptyURL = errors.New("empty URL")
)

var _ Commands = (*Orchestrator)(nil)

// flight is the bookkeeping of one dispatch. A new token is minted per
// dispatch so messages from an earlier attempt can be told apart.
type flight struct {
	token    uuid.UUID
	ctx      context.Context
	cancel   context.CancelFunc
	progress float64
}

// Orchestrator implements Commands. Create it with NewOrchestrator and start
// it with Run.
type Orchestrator struct {
	resolver download.Resolver
	fetcher  download.Fetcher
	events   Events
	pool     *Pool
	inbox    *mailbox
	logger   *slog.Logger

	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	// owned by the loop goroutine
	baseCtx context.Context
	cfg     Config
	items   []*model.QueueItem
	rows    map[int64]RowHandle
	flights map[int64]*flight
	nextID  int64
}

// NewOrchestrator wires the orchestrator to its collaborators.
func NewOrchestrator(resolver download.Resolver, fetcher download.Fetcher, events Events, cfg Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.Normalize()
	return &Orchestrator{
		resolver: resolver,
		fetcher:  fetcher,
		events:   events,
		pool:     NewPool(cfg.MaxConcurrent, logger),
		inbox:    newMailbox(),
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		baseCtx:  context.Background(),
		cfg:      cfg,
		rows:     make(map[int64]RowHandle),
		flights:  make(map[int64]*flight),
	}
}

// Run processes messages until ctx is cancelled or Close is called. On exit
// every in-flight transfer is cancelled and the pool is drained.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return errors.New("orchestrator already running")
	}
	defer close(o.done)

	base, cancel := context.WithCancel(ctx)
	defer cancel()
	o.baseCtx = base

	o.logger.Info("queue started", "max_concurrent", o.cfg.MaxConcurrent, "download_dir", o.cfg.DownloadDir)

	for {
		select {
		case <-ctx.Done():
			o.shutdown(cancel)
			return nil
		case <-o.stop:
			o.shutdown(cancel)
			return nil
		case <-o.inbox.notify:
			for _, fn := range o.inbox.drain() {
				fn()
			}
		}
	}
}

// Close stops the loop and waits for it to exit.
func (o *Orchestrator) Close() {
	o.stopOnce.Do(func() { close(o.stop) })
	if o.started.Load() {
		<-o.done
	}
}

// PoolStats reports the worker pool's load. Safe from any goroutine.
func (o *Orchestrator) PoolStats() PoolStats {
	return o.pool.Stats()
}

func (o *Orchestrator) shutdown(cancel context.CancelFunc) {
	o.logger.Info("queue stopping", "in_flight", len(o.flights))
	for _, f := range o.flights {
		f.cancel()
	}
	cancel()
	o.pool.Close()
	o.pool.Wait()
	o.logger.Info("queue stopped")
}

func (o *Orchestrator) post(fn func()) {
	o.inbox.post(fn)
}

// FetchFormats resolves url on the pool and reports through FormatsReady or
// FormatsFailed.
func (o *Orchestrator) FetchFormats(url string) {
	o.post(func() { o.fetchFormats(url) })
}

// AddToQueue creates an item and dispatches it immediately.
func (o *Orchestrator) AddToQueue(req AddRequest) {
	o.post(func() { o.add(req) })
}

// Retry re-dispatches a finished item with its original URL and variant.
func (o *Orchestrator) Retry(id int64) {
	o.post(func() { o.retry(id) })
}

// Remove drops an item and its row. An in-flight transfer keeps running but
// its results are ignored.
func (o *Orchestrator) Remove(id int64) {
	o.post(func() { o.remove(id) })
}

// Cancel asks the transfer of id to stop.
func (o *Orchestrator) Cancel(id int64) {
	o.post(func() { o.cancel(id) })
}

// CancelAll asks every transfer to stop.
func (o *Orchestrator) CancelAll() {
	o.post(func() {
		for id := range o.flights {
			o.cancel(id)
		}
	})
}

// SetConfig replaces the settings used for subsequent dispatches and
// resizes the pool.
func (o *Orchestrator) SetConfig(cfg Config) {
	o.post(func() {
		o.cfg = cfg.Normalize()
		o.pool.SetLimit(o.cfg.MaxConcurrent)
		o.logger.Info("queue config updated", "max_concurrent", o.cfg.MaxConcurrent, "download_dir", o.cfg.DownloadDir)
	})
}

// Snapshot returns copies of the items in queue order. It must not be
// called from an Events callback.
func (o *Orchestrator) Snapshot(ctx context.Context) ([]model.QueueItem, error) {
	reply := make(chan []model.QueueItem, 1)
	o.post(func() {
		out := make([]model.QueueItem, len(o.items))
		for i, it := range o.items {
			out[i] = *it
		}
		reply <- out
	})

	select {
	case items := <-reply:
		return items, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-o.done:
		return nil, ErrStopped
	}
}

func (o *Orchestrator) fetchFormats(url string) {
	url = strings.TrimSpace(url)
	if url == "" {
		o.events.FormatsFailed(url, &download.ResolutionError{URL: url, Err: ErrEmptyURL})
		return
	}

	ctx := o.baseCtx
	err := o.pool.Submit(Task{Run: func() {
		catalog, err := o.resolve(ctx, url)
		o.post(func() { o.formatsResolved(url, catalog, err) })
	}})
	if err != nil {
		o.events.FormatsFailed(url, &download.ResolutionError{URL: url, Err: err})
	}
}

func (o *Orchestrator) resolve(ctx context.Context, url string) (catalog *download.Catalog, err error) {
	defer func() {
		if r := recover(); r != nil {
			catalog = nil
			err = &download.ResolutionError{URL: url, Err: fmt.Errorf("resolver panicked: %v", r)}
		}
	}()
	return o.resolver.Resolve(ctx, url)
}

func (o *Orchestrator) formatsResolved(url string, catalog *download.Catalog, err error) {
	if err == nil && catalog == nil {
		err = errors.New("resolver returned no catalog")
	}
	if err != nil {
		var rerr *download.ResolutionError
		if !errors.As(err, &rerr) {
			err = &download.ResolutionError{URL: url, Err: err}
		}
		o.logger.Warn("format resolution failed", "url", url, "error", err)
		o.events.FormatsFailed(url, err)
		return
	}

	title := platform.CleanTitle(catalog.Title, platform.DefaultTitlePlaceholder)
	o.events.FormatsReady(url, title, model.SortFormats(catalog.Formats))
}

func (o *Orchestrator) add(req AddRequest) {
	url := strings.TrimSpace(req.URL)
	if url == "" {
		o.logger.Warn("ignoring add request with empty URL")
		return
	}

	o.nextID++
	item := model.NewQueueItem(o.nextID, url, req.FormatID, req.Title, req.QualityText)
	o.items = append(o.items, item)
	o.rows[item.ID] = o.events.CreateRow(*item, req.QualityText)

	o.logger.Info("item added", "id", item.ID, "url", url, "format", req.FormatID)
	o.dispatch(item)
}

func (o *Orchestrator) dispatch(item *model.QueueItem) {
	if _, busy := o.flights[item.ID]; busy {
		o.logger.Warn("item already dispatched", "id", item.ID)
		return
	}

	item.ResetForDispatch()
	o.events.ProgressUpdate(o.rows[item.ID], Progress{Phase: PhaseQueued})

	ctx, cancel := context.WithCancel(o.baseCtx)
	f := &flight{token: newToken(), ctx: ctx, cancel: cancel}
	o.flights[item.ID] = f

	req := download.FetchRequest{
		URL:         item.URL,
		FormatID:    item.FormatID,
		Title:       item.Title,
		Dir:         o.cfg.DownloadDir,
		CookiesFile: o.cfg.CookiesFile,
	}
	id, token := item.ID, f.token

	err := o.pool.Submit(Task{
		Started: func() { o.post(func() { o.itemStarted(id, token) }) },
		Run:     func() { o.runFetch(ctx, id, token, req) },
	})
	if err != nil {
		cancel()
		delete(o.flights, item.ID)
		item.Fail(model.QueueStatusFailed, err.Error())
		o.events.ItemFinished(o.rows[item.ID], *item)
	}
}

// runFetch runs on a pool worker. It only communicates through the mailbox.
func (o *Orchestrator) runFetch(ctx context.Context, id int64, token uuid.UUID, req download.FetchRequest) {
	if ctx.Err() != nil {
		err := fmt.Errorf("%w: %s", download.ErrCanceled, req.URL)
		o.post(func() { o.complete(id, token, "", err) })
		return
	}

	path, err := o.fetch(ctx, req, func(ev download.ProgressEvent) {
		o.post(func() { o.progress(id, token, ev) })
	})
	if err != nil && ctx.Err() != nil && !errors.Is(err, download.ErrCanceled) {
		err = fmt.Errorf("%w: %v", download.ErrCanceled, err)
	}
	o.post(func() { o.complete(id, token, path, err) })
}

func (o *Orchestrator) fetch(ctx context.Context, req download.FetchRequest, onProgress func(download.ProgressEvent)) (path string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &download.FetchError{URL: req.URL, Err: fmt.Errorf("fetcher panicked: %v", r)}
		}
	}()
	return o.fetcher.Fetch(ctx, req, onProgress)
}

// current returns the item and flight a worker message refers to, or nil if
// the message is stale or the item was removed.
func (o *Orchestrator) current(id int64, token uuid.UUID) (*model.QueueItem, *flight) {
	f, ok := o.flights[id]
	if !ok || f.token != token {
		return nil, nil
	}
	item := o.find(id)
	if item == nil {
		return nil, f
	}
	return item, f
}

func (o *Orchestrator) itemStarted(id int64, token uuid.UUID) {
	item, f := o.current(id, token)
	if item == nil || f.ctx.Err() != nil {
		return
	}
	item.Status = model.QueueStatusDownloading
	o.logger.Debug("item downloading", "id", id)
	o.events.ItemStarted(o.rows[id], *item)
}

func (o *Orchestrator) progress(id int64, token uuid.UUID, ev download.ProgressEvent) {
	item, f := o.current(id, token)
	if item == nil || item.Status.IsTerminal() {
		return
	}

	p := Normalize(ev)
	if p.Percent < f.progress {
		p.Percent = f.progress
	}
	f.progress = p.Percent

	item.Progress = p.Percent
	item.Speed = p.Speed
	item.ETA = p.ETA
	o.events.ProgressUpdate(o.rows[id], p)
}

func (o *Orchestrator) complete(id int64, token uuid.UUID, path string, err error) {
	item, f := o.current(id, token)
	if f == nil {
		o.logger.Debug("dropping stale completion", "id", id)
		return
	}
	f.cancel()
	delete(o.flights, id)
	if item == nil {
		o.logger.Debug("completion for removed item", "id", id)
		return
	}

	switch {
	case err == nil && path != "":
		item.Complete(path)
		o.logger.Info("item completed", "id", id, "path", path)
	case err == nil:
		item.Fail(model.QueueStatusFailed, "download produced no file")
		o.logger.Warn("item produced no file", "id", id)
	case errors.Is(err, download.ErrCanceled):
		item.Fail(model.QueueStatusCanceled, CanceledMessage)
		o.logger.Info("item canceled", "id", id)
	default:
		item.Fail(model.QueueStatusFailed, err.Error())
		o.logger.Warn("item failed", "id", id, "error", err)
	}
	o.events.ItemFinished(o.rows[id], *item)
}

func (o *Orchestrator) retry(id int64) {
	item := o.find(id)
	if item == nil {
		return
	}
	if _, busy := o.flights[id]; busy {
		o.logger.Warn("retry ignored for in-flight item", "id", id)
		return
	}
	o.logger.Info("retrying item", "id", id, "attempt", item.Attempts+1)
	o.dispatch(item)
}

func (o *Orchestrator) remove(id int64) {
	idx := o.index(id)
	if idx < 0 {
		return
	}
	o.items = append(o.items[:idx], o.items[idx+1:]...)
	row := o.rows[id]
	delete(o.rows, id)
	o.logger.Info("item removed", "id", id)
	o.events.RowRemoved(row)
}

func (o *Orchestrator) cancel(id int64) {
	f, ok := o.flights[id]
	if !ok {
		return
	}
	o.logger.Info("canceling item", "id", id)
	f.cancel()
}

func (o *Orchestrator) find(id int64) *model.QueueItem {
	if idx := o.index(id); idx >= 0 {
		return o.items[idx]
	}
	return nil
}

func (o *Orchestrator) index(id int64) int {
	for i, it := range o.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func newToken() uuid.UUID {
	if token, err := uuid.NewV7(); err == nil {
		return token
	}
	return uuid.New()
}
