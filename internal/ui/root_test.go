package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/fbgrabber/internal/config"
	"github.com/ytget/fbgrabber/internal/download"
	"github.com/ytget/fbgrabber/internal/logger"
	"github.com/ytget/fbgrabber/internal/model"
	"github.com/ytget/fbgrabber/internal/queue"
)

const eventually = 2 * time.Second

// commandLog records the intents forwarded to the orchestrator
type commandLog struct {
	mu      sync.Mutex
	fetched []string
	added   []queue.AddRequest
	retried []int64
	removed []int64
	cancels []int64
	all     int
	configs []queue.Config
}

func (c *commandLog) FetchFormats(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetched = append(c.fetched, url)
}

func (c *commandLog) AddToQueue(req queue.AddRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, req)
}

func (c *commandLog) Retry(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retried = append(c.retried, id)
}

func (c *commandLog) Remove(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, id)
}

func (c *commandLog) Cancel(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancels = append(c.cancels, id)
}

func (c *commandLog) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.all++
}

func (c *commandLog) Snapshot(context.Context) ([]model.QueueItem, error) {
	return nil, nil
}

func (c *commandLog) SetConfig(cfg queue.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs = append(c.configs, cfg)
}

func (c *commandLog) addedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.added)
}

type stubExpander struct {
	entries []model.PlaylistEntry
	err     error
}

func (s stubExpander) Expand(context.Context, string) ([]model.PlaylistEntry, error) {
	return s.entries, s.err
}

func newTestRoot(t *testing.T, expander PlaylistExpander) (*RootUI, *commandLog) {
	t.Helper()
	app := test.NewTempApp(t)
	settings := config.NewSettings(app)
	settings.SetLanguage("en")
	window := app.NewWindow("")
	t.Cleanup(window.Close)

	ui := NewRootUI(window, app, settings, expander, nil, logger.Discard())
	commands := &commandLog{}
	ui.Bind(commands)
	return ui, commands
}

func rowOf(t *testing.T, ui *RootUI, id int64) *QueueRow {
	t.Helper()
	var row *QueueRow
	require.Eventually(t, func() bool {
		var ok bool
		row, ok = ui.rows[id]
		return ok
	}, eventually, 10*time.Millisecond)
	return row
}

func TestRootUI_CreateRowAndProgress(t *testing.T) {
	ui, _ := newTestRoot(t, nil)

	item := *model.NewQueueItem(1, "https://fb.watch/a", "hd", "Clip", "")
	handle := ui.CreateRow(item, "720p • mp4")
	assert.Equal(t, int64(1), handle)

	row := rowOf(t, ui, 1)
	assert.Equal(t, "720p • mp4", row.qualityLabel.Text)
	assert.False(t, ui.emptyLabel.Visible())

	ui.ProgressUpdate(handle, queue.Progress{Phase: queue.PhaseQueued})
	item.Status = model.QueueStatusDownloading
	ui.ItemStarted(handle, item)
	ui.ProgressUpdate(handle, queue.Progress{Percent: 42.5, Speed: "1.0 MiB/s", ETA: "7s", Phase: queue.PhaseDownloading})

	assert.Eventually(t, func() bool { return row.progressLabel.Text == "42%" }, eventually, 10*time.Millisecond)
	assert.Equal(t, model.QueueStatusDownloading, row.Item().Status)
	assert.Equal(t, "1.0 MiB/s"+MiddleDotSeparator+"7s", row.speedEtaLabel.Text)
	assert.False(t, row.cancelBtn.Disabled())
	assert.True(t, row.retryBtn.Disabled())
	assert.True(t, row.openBtn.Disabled())

	ui.ProgressUpdate(handle, queue.Progress{Percent: 100, Phase: queue.PhaseProcessing})
	assert.Eventually(t, func() bool {
		return row.statusLabel.Text == IconProcess+" "+ui.localization.GetText(KeyStatusProcessing)
	}, eventually, 10*time.Millisecond)
}

func TestRootUI_ItemFinished(t *testing.T) {
	ui, commands := newTestRoot(t, nil)

	item := *model.NewQueueItem(3, "https://fb.watch/c", "", "Clip", "")
	handle := ui.CreateRow(item, "")
	row := rowOf(t, ui, 3)
	assert.Equal(t, ui.localization.GetText(KeyBestQuality), row.qualityLabel.Text)

	done := item
	done.Complete("/tmp/Clip.mp4")
	ui.ItemFinished(handle, done)

	assert.Eventually(t, func() bool { return row.Item().Status == model.QueueStatusCompleted }, eventually, 10*time.Millisecond)
	assert.False(t, row.openBtn.Disabled())
	assert.False(t, row.revealBtn.Disabled())
	assert.False(t, row.copyPathBtn.Disabled())
	assert.False(t, row.retryBtn.Disabled())
	assert.True(t, row.cancelBtn.Disabled())
	assert.Equal(t, float64(100), row.progressBar.Value)
	assert.Contains(t, ui.notificationLabel.Text, "Download completed")

	test.Tap(row.retryBtn)
	test.Tap(row.removeBtn)
	test.Tap(row.cancelBtn) // disabled

	commands.mu.Lock()
	defer commands.mu.Unlock()
	assert.Equal(t, []int64{3}, commands.retried)
	assert.Equal(t, []int64{3}, commands.removed)
	assert.Empty(t, commands.cancels)
}

func TestRootUI_FailedItemShowsError(t *testing.T) {
	ui, _ := newTestRoot(t, nil)

	item := *model.NewQueueItem(4, "https://fb.watch/d", "", "", "")
	handle := ui.CreateRow(item, "")
	row := rowOf(t, ui, 4)

	item.Progress = 30
	item.Fail(model.QueueStatusFailed, "HTTP Error 403:\nForbidden")
	ui.ItemFinished(handle, item)

	assert.Eventually(t, func() bool { return row.Item().Status == model.QueueStatusFailed }, eventually, 10*time.Millisecond)
	assert.Equal(t, "HTTP Error 403: Forbidden", row.speedEtaLabel.Text)
	assert.Equal(t, "30%", row.progressLabel.Text)
	assert.True(t, row.openBtn.Disabled())

	// a retry dispatch starts with a queued notification
	ui.ProgressUpdate(handle, queue.Progress{Phase: queue.PhaseQueued})
	assert.Eventually(t, func() bool { return row.Item().Status == model.QueueStatusPending }, eventually, 10*time.Millisecond)
	assert.Empty(t, row.Item().Error)
	assert.Equal(t, "0%", row.progressLabel.Text)
}

func TestRootUI_RowRemoved(t *testing.T) {
	ui, _ := newTestRoot(t, nil)

	handle := ui.CreateRow(*model.NewQueueItem(5, "https://fb.watch/e", "", "", ""), "")
	other := ui.CreateRow(*model.NewQueueItem(6, "https://fb.watch/f", "", "", ""), "")
	rowOf(t, ui, 5)
	otherRow := rowOf(t, ui, 6)

	ui.RowRemoved(handle)
	assert.Eventually(t, func() bool {
		_, ok := ui.rows[5]
		return !ok
	}, eventually, 10*time.Millisecond)
	assert.Len(t, ui.rowsBox.Objects, 1)

	// late callbacks for the removed row are dropped
	ui.ProgressUpdate(handle, queue.Progress{Percent: 80, Phase: queue.PhaseDownloading})
	ui.ItemFinished(handle, model.QueueItem{ID: 5, Status: model.QueueStatusCompleted, OutputPath: "/tmp/x.mp4"})
	ui.RowRemoved("not a handle")
	assert.Equal(t, model.QueueStatusPending, otherRow.Item().Status)

	ui.RowRemoved(other)
	assert.Eventually(t, func() bool { return ui.emptyLabel.Visible() }, eventually, 10*time.Millisecond)
}

func TestRootUI_FetchFormats(t *testing.T) {
	ui, commands := newTestRoot(t, nil)

	test.Type(ui.urlEntry, "https://www.facebook.com/watch?v=123")
	test.Tap(ui.fetchBtn)

	commands.mu.Lock()
	assert.Equal(t, []string{"https://www.facebook.com/watch?v=123"}, commands.fetched)
	commands.mu.Unlock()
	assert.True(t, ui.fetchBtn.Disabled())
	assert.True(t, ui.notificationSpinner.Visible())

	ui.FormatsFailed("https://www.facebook.com/watch?v=123", &download.ResolutionError{
		URL: "https://www.facebook.com/watch?v=123",
		Err: errors.New("login required"),
	})
	assert.Eventually(t, func() bool { return !ui.fetchBtn.Disabled() }, eventually, 10*time.Millisecond)
	assert.Contains(t, ui.notificationLabel.Text, "login required")
	assert.False(t, ui.notificationSpinner.Visible())
}

func TestRootUI_DownloadWithSelectedFormat(t *testing.T) {
	ui, commands := newTestRoot(t, nil)
	link := "https://www.facebook.com/watch?v=123"

	test.Type(ui.urlEntry, link)
	formats := []model.FormatOption{
		{FormatID: "hd", Ext: "mp4", Resolution: "720p", VCodec: "avc1", ACodec: "mp4a"},
		{FormatID: "sd", Ext: "mp4", Resolution: "360p", VCodec: "avc1", ACodec: "mp4a"},
	}
	ui.FormatsReady(link, "Sunset", formats)

	assert.Eventually(t, func() bool { return len(ui.formatSelect.Options) == 3 }, eventually, 10*time.Millisecond)
	assert.Equal(t, "Sunset", ui.titleLabel.Text)
	assert.Equal(t, ui.localization.GetText(KeyBestQuality), ui.formatSelect.Selected)

	ui.formatSelect.SetSelectedIndex(2)
	test.Tap(ui.downloadBtn)

	commands.mu.Lock()
	defer commands.mu.Unlock()
	require.Len(t, commands.added, 1)
	assert.Equal(t, queue.AddRequest{
		URL:         link,
		FormatID:    "sd",
		Title:       "Sunset",
		QualityText: formats[1].DisplayText(),
	}, commands.added[0])
	assert.Empty(t, ui.urlEntry.Text)
}

func TestRootUI_DownloadBestWithoutFormats(t *testing.T) {
	ui, commands := newTestRoot(t, nil)

	test.Type(ui.urlEntry, "https://fb.watch/xyz")
	test.Tap(ui.downloadBtn)

	commands.mu.Lock()
	defer commands.mu.Unlock()
	require.Len(t, commands.added, 1)
	assert.Equal(t, queue.AddRequest{URL: "https://fb.watch/xyz"}, commands.added[0])
}

func TestRootUI_StaleFormatsIgnored(t *testing.T) {
	ui, _ := newTestRoot(t, nil)

	test.Type(ui.urlEntry, "https://fb.watch/new")
	ui.FormatsReady("https://fb.watch/old", "Old", []model.FormatOption{{FormatID: "a", VCodec: "avc1"}})

	assert.Eventually(t, func() bool { return !ui.fetchBtn.Disabled() }, eventually, 10*time.Millisecond)
	assert.Len(t, ui.formatSelect.Options, 1)
	assert.Empty(t, ui.formatsURL)
}

func TestRootUI_RejectsBadInput(t *testing.T) {
	ui, commands := newTestRoot(t, nil)

	test.Tap(ui.downloadBtn)
	assert.Equal(t, ui.localization.GetText(KeyPleaseEnterURL), ui.notificationLabel.Text)

	test.Type(ui.urlEntry, "ftp://example.com/video")
	test.Tap(ui.fetchBtn)
	assert.Contains(t, ui.notificationLabel.Text, ui.localization.GetText(KeyInvalidURL))

	commands.mu.Lock()
	defer commands.mu.Unlock()
	assert.Empty(t, commands.fetched)
	assert.Empty(t, commands.added)
}

func TestRootUI_PlaylistExpansion(t *testing.T) {
	expander := stubExpander{entries: []model.PlaylistEntry{
		{VideoID: "a", Title: "First", URL: "https://example.com/a"},
		{VideoID: "b", Title: "Second", URL: "https://example.com/b"},
	}}
	ui, commands := newTestRoot(t, expander)

	test.Type(ui.urlEntry, "https://example.com/watch?v=a&list=PL123")
	test.Tap(ui.downloadBtn)

	assert.Eventually(t, func() bool { return commands.addedCount() == 2 }, eventually, 10*time.Millisecond)
	commands.mu.Lock()
	defer commands.mu.Unlock()
	assert.Equal(t, queue.AddRequest{URL: "https://example.com/a", Title: "First"}, commands.added[0])
	assert.Equal(t, queue.AddRequest{URL: "https://example.com/b", Title: "Second"}, commands.added[1])
	assert.Empty(t, commands.fetched)
}

func TestRootUI_CancelAll(t *testing.T) {
	ui, commands := newTestRoot(t, nil)

	test.Tap(ui.cancelAllBtn)

	commands.mu.Lock()
	defer commands.mu.Unlock()
	assert.Equal(t, 1, commands.all)
}

func TestRootUI_LanguageChange(t *testing.T) {
	ui, _ := newTestRoot(t, nil)
	ui.CreateRow(*model.NewQueueItem(1, "https://fb.watch/a", "", "", ""), "")
	row := rowOf(t, ui, 1)

	ui.onLanguageChange("ru")

	assert.Equal(t, "ru", ui.settings.GetLanguage())
	assert.Equal(t, "Скачать", ui.downloadBtn.Text)
	assert.Equal(t, "отмена", row.cancelBtn.Text)
	assert.Equal(t, "⏳ В очереди", row.statusLabel.Text)
}

func TestRootUI_CopyURL(t *testing.T) {
	ui, _ := newTestRoot(t, nil)
	ui.CreateRow(*model.NewQueueItem(1, "https://fb.watch/a", "", "", ""), "")
	row := rowOf(t, ui, 1)

	test.Tap(row.copyURLBtn)

	assert.Equal(t, "https://fb.watch/a", ui.app.Clipboard().Content())
	assert.Equal(t, ui.localization.GetText(KeyCopied), ui.notificationLabel.Text)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"", false},
		{"   ", false},
		{"https://www.facebook.com/watch?v=1", false},
		{"http://fb.watch/abc", false},
		{"ftp://example.com", true},
		{"www.facebook.com/watch", true},
		{"https://", true},
	}
	for _, tt := range tests {
		err := validateURL(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
}

var _ fyne.Widget = (*QueueRow)(nil)
