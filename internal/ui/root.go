package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/fbgrabber/internal/config"
	"github.com/ytget/fbgrabber/internal/model"
	"github.com/ytget/fbgrabber/internal/platform"
	"github.com/ytget/fbgrabber/internal/queue"
)

// PlaylistExpander turns a playlist URL into individual videos
type PlaylistExpander interface {
	Expand(ctx context.Context, url string) ([]model.PlaylistEntry, error)
}

// CookiesSetter receives the cookies file used for catalog resolution
type CookiesSetter interface {
	SetCookiesFile(path string)
}

// RootUI is the main window. It implements queue.Events; every callback is
// marshalled onto the Fyne thread with fyne.Do.
type RootUI struct {
	window       fyne.Window
	app          fyne.App
	settings     *config.Settings
	localization *Localization
	commands     queue.Commands
	playlists    PlaylistExpander
	cookies      CookiesSetter
	logger       *slog.Logger

	urlEntry     *widget.Entry
	fetchBtn     *widget.Button
	formatSelect *widget.Select
	downloadBtn  *widget.Button
	cancelAllBtn *widget.Button
	openDirBtn   *widget.Button
	titleLabel   *widget.Label

	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
	notificationContainer *fyne.Container
	notificationSeq       int

	rowsBox    *fyne.Container
	emptyLabel *widget.Label

	// Fyne thread only
	rows         map[int64]*QueueRow
	formatsURL   string
	formatsTitle string
	formats      []model.FormatOption
}

// NewRootUI creates the main window content. Bind must be called before the
// window is shown.
func NewRootUI(window fyne.Window, app fyne.App, settings *config.Settings, playlists PlaylistExpander, cookies CookiesSetter, logger *slog.Logger) *RootUI {
	if logger == nil {
		logger = slog.Default()
	}
	ui := &RootUI{
		window:       window,
		app:          app,
		settings:     settings,
		localization: NewLocalization(),
		playlists:    playlists,
		cookies:      cookies,
		logger:       logger.With("component", "ui"),
		rows:         make(map[int64]*QueueRow),
	}
	ui.localization.SetLanguage(settings.GetLanguage())

	ui.setupUI()
	ui.createMenu()
	return ui
}

// Bind connects the UI to the orchestrator that drives it
func (ui *RootUI) Bind(commands queue.Commands) {
	ui.commands = commands
}

var _ queue.Events = (*RootUI)(nil)

func (ui *RootUI) setupUI() {
	text := ui.localization.GetText
	ui.window.SetTitle(text(KeyAppTitle))

	ui.urlEntry = widget.NewEntry()
	ui.urlEntry.SetPlaceHolder(text(KeyEnterURL))
	ui.urlEntry.Validator = validateURL
	ui.urlEntry.OnSubmitted = func(string) { ui.onFetchFormatsClick() }
	ui.urlEntry.OnChanged = func(string) { ui.resetFormats() }

	ui.fetchBtn = widget.NewButton(text(KeyFetchFormats), ui.onFetchFormatsClick)

	ui.formatSelect = widget.NewSelect(nil, nil)
	ui.setFormatOptions(nil)
	ui.downloadBtn = widget.NewButton(text(KeyDownload), ui.onDownloadClick)
	ui.downloadBtn.Importance = widget.HighImportance

	ui.titleLabel = widget.NewLabel("")
	ui.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	ui.titleLabel.Truncation = fyne.TextTruncateEllipsis

	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	left := container.NewHBox(settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(32, 32))
		logoImage.FillMode = canvas.ImageFillContain
		left = container.NewHBox(logoImage, settingsBtn)
	}

	urlRow := container.NewBorder(nil, nil, left, ui.fetchBtn, ui.urlEntry)
	formatRow := container.NewBorder(nil, nil, widget.NewLabel(text(KeyQuality)), ui.downloadBtn, ui.formatSelect)

	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Wrapping = fyne.TextWrapWord
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewBorder(nil, nil, ui.notificationSpinner, nil, ui.notificationLabel)
	ui.notificationContainer.Hide()

	top := container.NewVBox(urlRow, ui.titleLabel, formatRow, ui.notificationContainer, widget.NewSeparator())

	ui.cancelAllBtn = widget.NewButton(text(KeyCancelAll), ui.onCancelAll)
	ui.openDirBtn = widget.NewButton(text(KeyOpenFolder), ui.onOpenDownloadDir)
	bottom := container.NewHBox(ui.openDirBtn, ui.cancelAllBtn)

	ui.emptyLabel = widget.NewLabel(text(KeyEmptyQueue))
	ui.emptyLabel.Alignment = fyne.TextAlignCenter
	ui.rowsBox = container.NewVBox()

	content := container.NewBorder(
		top,
		bottom,
		nil,
		nil,
		container.NewStack(ui.emptyLabel, container.NewVScroll(ui.rowsBox)),
	)

	ui.window.SetContent(content)
	ui.window.Resize(fyne.NewSize(WindowWidth, WindowHeight))
}

// createMenu creates the main menu
func (ui *RootUI) createMenu() {
	settingsItem := fyne.NewMenuItem(ui.localization.GetText(KeySettings), ui.onShowSettings)
	openDirItem := fyne.NewMenuItem(ui.localization.GetText(KeyOpenFolder), ui.onOpenDownloadDir)

	languageMenu := fyne.NewMenu(ui.localization.GetText(KeyLanguage))
	available := ui.localization.GetAvailableLanguages()
	codes := make([]string, 0, len(available))
	for code := range available {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		langCode := code
		langItem := fyne.NewMenuItem(available[code], func() {
			ui.onLanguageChange(langCode)
		})
		langItem.Checked = ui.localization.GetCurrentLanguage() == code
		languageMenu.Items = append(languageMenu.Items, langItem)
	}

	ui.window.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu(ui.localization.GetText(KeyFile), settingsItem, openDirItem),
		languageMenu,
	))
}

func (ui *RootUI) onLanguageChange(langCode string) {
	ui.localization.SetLanguage(langCode)
	ui.settings.SetLanguage(langCode)
	ui.refreshUITexts()
	ui.createMenu()
}

func (ui *RootUI) refreshUITexts() {
	text := ui.localization.GetText
	ui.window.SetTitle(text(KeyAppTitle))
	ui.urlEntry.SetPlaceHolder(text(KeyEnterURL))
	ui.fetchBtn.SetText(text(KeyFetchFormats))
	ui.downloadBtn.SetText(text(KeyDownload))
	ui.cancelAllBtn.SetText(text(KeyCancelAll))
	ui.openDirBtn.SetText(text(KeyOpenFolder))
	ui.emptyLabel.SetText(text(KeyEmptyQueue))
	ui.setFormatOptions(ui.formats)
	for _, row := range ui.rows {
		row.refreshTexts()
	}
}

// validateURL accepts an empty entry; anything else must be http(s)
func validateURL(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	parsed, err := url.Parse(input)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return errors.New("URL has no host")
	}
	return nil
}

// enteredURL returns the cleaned URL or reports why it cannot be used
func (ui *RootUI) enteredURL() (string, bool) {
	raw := singleLine(ui.urlEntry.Text)
	if raw == "" {
		ui.showNotification(ui.localization.GetText(KeyPleaseEnterURL), false)
		return "", false
	}
	if err := validateURL(raw); err != nil {
		ui.showNotification(ui.localization.GetText(KeyInvalidURL)+": "+err.Error(), false)
		return "", false
	}
	return raw, true
}

func (ui *RootUI) onFetchFormatsClick() {
	link, ok := ui.enteredURL()
	if !ok {
		return
	}
	if platform.IsPlaylistURL(link) {
		ui.expandPlaylist(link)
		return
	}

	ui.resetFormats()
	ui.fetchBtn.Disable()
	ui.showNotification(ui.localization.GetText(KeyLoadingFormats), true)
	ui.logger.Info("fetching formats", "url", link)
	ui.commands.FetchFormats(link)
}

func (ui *RootUI) onDownloadClick() {
	link, ok := ui.enteredURL()
	if !ok {
		return
	}
	if platform.IsPlaylistURL(link) {
		ui.expandPlaylist(link)
		return
	}

	req := queue.AddRequest{URL: link}
	if link == ui.formatsURL {
		req.Title = ui.formatsTitle
		if idx := ui.formatSelect.SelectedIndex(); idx > 0 && idx <= len(ui.formats) {
			chosen := ui.formats[idx-1]
			req.FormatID = chosen.FormatID
			req.QualityText = chosen.DisplayText()
		}
	}

	ui.logger.Info("adding to queue", "url", link, "format", req.FormatID)
	ui.commands.AddToQueue(req)
	ui.urlEntry.SetText("")
	ui.showNotification(ui.localization.GetText(KeyTaskAdded), false)
}

// expandPlaylist lists the playlist off the Fyne thread and queues every
// entry with the best available quality
func (ui *RootUI) expandPlaylist(link string) {
	if ui.playlists == nil {
		return
	}
	ui.showNotification(ui.localization.GetText(KeyReadingPlaylist), true)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PlaylistExpandTimeout)
		defer cancel()

		entries, err := ui.playlists.Expand(ctx, link)
		if err != nil {
			ui.logger.Error("playlist expansion failed", "url", link, "error", err)
			fyne.Do(func() {
				ui.showNotification(ui.localization.GetText(KeyPlaylistFailed)+": "+err.Error(), false)
			})
			return
		}

		for _, entry := range entries {
			ui.commands.AddToQueue(queue.AddRequest{URL: entry.URL, Title: entry.Title})
		}
		ui.logger.Info("playlist queued", "url", link, "videos", len(entries))

		fyne.Do(func() {
			ui.urlEntry.SetText("")
			ui.showNotification(fmt.Sprintf("%s (%d)", ui.localization.GetText(KeyPlaylistAdded), len(entries)), false)
		})
	}()
}

func (ui *RootUI) resetFormats() {
	ui.formatsURL = ""
	ui.formatsTitle = ""
	ui.formats = nil
	ui.titleLabel.SetText("")
	ui.setFormatOptions(nil)
}

// setFormatOptions fills the picker; index 0 is always "best available"
func (ui *RootUI) setFormatOptions(formats []model.FormatOption) {
	options := make([]string, 0, len(formats)+1)
	options = append(options, ui.localization.GetText(KeyBestQuality))
	for _, f := range formats {
		options = append(options, f.DisplayText())
	}
	ui.formatSelect.PlaceHolder = ui.localization.GetText(KeyBestQuality)
	ui.formatSelect.SetOptions(options)
	ui.formatSelect.SetSelectedIndex(0)
}

func (ui *RootUI) onCancelAll() {
	ui.commands.CancelAll()
}

func (ui *RootUI) onOpenDownloadDir() {
	if err := platform.OpenDirectory(ui.settings.GetDownloadDirectory()); err != nil {
		ui.logger.Error("open download directory failed", "error", err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.settings, ui.localization, ui.window, func(cfg queue.Config) {
		ui.commands.SetConfig(cfg)
		if ui.cookies != nil {
			ui.cookies.SetCookiesFile(cfg.CookiesFile)
		}
		ui.showNotification(ui.localization.GetText(KeySettingsSaved), false)
	}).Show()
}

// showNotification displays a message under the URL input. The spinner
// indicates background activity; plain messages hide after a while.
func (ui *RootUI) showNotification(message string, spinning bool) {
	ui.notificationSeq++
	seq := ui.notificationSeq

	ui.notificationLabel.SetText(message)
	if spinning {
		ui.notificationSpinner.Show()
	} else {
		ui.notificationSpinner.Hide()
		time.AfterFunc(NotificationAutoHide, func() {
			fyne.Do(func() {
				if ui.notificationSeq == seq {
					ui.hideNotification()
				}
			})
		})
	}
	ui.notificationContainer.Show()
	ui.notificationContainer.Refresh()
}

func (ui *RootUI) hideNotification() {
	ui.notificationSpinner.Hide()
	ui.notificationContainer.Hide()
}

func (ui *RootUI) rowActions() RowActions {
	return RowActions{
		Retry:    func(id int64) { ui.commands.Retry(id) },
		Cancel:   func(id int64) { ui.commands.Cancel(id) },
		Remove:   func(id int64) { ui.commands.Remove(id) },
		Open:     ui.onOpenFile,
		Reveal:   ui.onRevealFile,
		CopyPath: ui.copyToClipboard,
		CopyURL:  ui.copyToClipboard,
	}
}

func (ui *RootUI) onOpenFile(path string) {
	if err := platform.OpenFileWithDefaultApp(path); err != nil {
		ui.logger.Error("open file failed", "path", path, "error", err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

func (ui *RootUI) onRevealFile(path string) {
	if err := platform.OpenFileInManager(path); err != nil {
		ui.logger.Error("reveal file failed", "path", path, "error", err)
		ui.showNotification(ui.localization.GetText(KeyErrorOpeningFile)+": "+err.Error(), false)
	}
}

func (ui *RootUI) copyToClipboard(value string) {
	ui.app.Clipboard().SetContent(value)
	ui.showNotification(ui.localization.GetText(KeyCopied), false)
}

// rowFor resolves a handle handed out by CreateRow
func (ui *RootUI) rowFor(handle queue.RowHandle) (*QueueRow, bool) {
	id, ok := handle.(int64)
	if !ok {
		return nil, false
	}
	row, ok := ui.rows[id]
	return row, ok
}

// FormatsReady fills the variant picker
func (ui *RootUI) FormatsReady(link, title string, formats []model.FormatOption) {
	fyne.Do(func() {
		ui.fetchBtn.Enable()
		if link != singleLine(ui.urlEntry.Text) {
			ui.hideNotification()
			return
		}
		ui.formatsURL = link
		ui.formatsTitle = title
		ui.formats = formats
		ui.titleLabel.SetText(title)
		ui.setFormatOptions(formats)
		ui.showNotification(fmt.Sprintf("%s (%d)", ui.localization.GetText(KeyFormatsLoaded), len(formats)), false)
	})
}

// FormatsFailed re-arms the fetch button and reports the error
func (ui *RootUI) FormatsFailed(link string, err error) {
	fyne.Do(func() {
		ui.fetchBtn.Enable()
		ui.resetFormats()
		ui.showNotification(ui.localization.GetText(KeyFormatsFailed)+": "+err.Error(), false)
	})
}

// CreateRow appends a row for item. The handle is the item id.
func (ui *RootUI) CreateRow(item model.QueueItem, qualityText string) queue.RowHandle {
	item.QualityText = qualityText
	fyne.Do(func() {
		row := NewQueueRow(item, ui.localization, ui.rowActions())
		ui.rows[item.ID] = row
		ui.rowsBox.Add(row)
		ui.emptyLabel.Hide()
	})
	return item.ID
}

// ProgressUpdate forwards normalized progress to the row
func (ui *RootUI) ProgressUpdate(handle queue.RowHandle, progress queue.Progress) {
	fyne.Do(func() {
		if row, ok := ui.rowFor(handle); ok {
			row.SetProgress(progress)
		}
	})
}

// ItemStarted marks the row as downloading
func (ui *RootUI) ItemStarted(handle queue.RowHandle, item model.QueueItem) {
	fyne.Do(func() {
		if row, ok := ui.rowFor(handle); ok {
			row.SetItem(item)
		}
	})
}

// ItemFinished shows the terminal state and notifies about completion
func (ui *RootUI) ItemFinished(handle queue.RowHandle, item model.QueueItem) {
	fyne.Do(func() {
		row, ok := ui.rowFor(handle)
		if !ok {
			return
		}
		row.SetItem(item)

		switch item.Status {
		case model.QueueStatusCompleted:
			ui.app.SendNotification(&fyne.Notification{
				Title:   ui.localization.GetText(KeyDownloadCompleted),
				Content: item.GetDisplayTitle(),
			})
			ui.showNotification(ui.localization.GetText(KeyDownloadCompleted)+": "+item.GetDisplayTitle(), false)
			if ui.settings.GetAutoRevealOnComplete() {
				ui.onRevealFile(item.OutputPath)
			}
		case model.QueueStatusFailed:
			ui.showNotification(ui.localization.GetText(KeyDownloadFailed)+": "+singleLine(item.Error), false)
		}
	})
}

// RowRemoved drops the row; later callbacks for it are ignored
func (ui *RootUI) RowRemoved(handle queue.RowHandle) {
	fyne.Do(func() {
		row, ok := ui.rowFor(handle)
		if !ok {
			return
		}
		delete(ui.rows, row.Item().ID)
		ui.rowsBox.Remove(row)
		if len(ui.rows) == 0 {
			ui.emptyLabel.Show()
		}
	})
}
