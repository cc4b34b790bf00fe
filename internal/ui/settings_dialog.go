package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/fbgrabber/internal/config"
	"github.com/ytget/fbgrabber/internal/queue"
)

// SettingsDialog represents the settings configuration dialog
type SettingsDialog struct {
	settings     *config.Settings
	localization *Localization
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	onSaved      func(queue.Config)

	downloadDirEntry *widget.Entry
	maxParallel      *widget.Select
	cookiesEntry     *widget.Entry
	autoRevealCheck  *widget.Check
}

// NewSettingsDialog creates a new settings dialog. onSaved receives the
// stored queue configuration after a successful save.
func NewSettingsDialog(settings *config.Settings, localization *Localization, window fyne.Window, onSaved func(queue.Config)) *SettingsDialog {
	sd := &SettingsDialog{
		settings:     settings,
		localization: localization,
		window:       window,
		onSaved:      onSaved,
	}

	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	text := sd.localization.GetText

	sd.downloadDirEntry = widget.NewEntry()
	browseDirBtn := widget.NewButton(text(KeyBrowse), sd.onBrowseDirectory)
	downloadDirRow := container.NewBorder(nil, nil, nil, browseDirBtn, sd.downloadDirEntry)

	options := make([]string, 0, queue.MaxConcurrent)
	for n := queue.MinConcurrent; n <= queue.MaxConcurrent; n++ {
		options = append(options, strconv.Itoa(n))
	}
	sd.maxParallel = widget.NewSelect(options, nil)

	sd.cookiesEntry = widget.NewEntry()
	sd.cookiesEntry.SetPlaceHolder("cookies.txt")
	browseCookiesBtn := widget.NewButton(text(KeyBrowse), sd.onBrowseCookies)
	clearCookiesBtn := widget.NewButton(text(KeyClear), func() { sd.cookiesEntry.SetText("") })
	cookiesRow := container.NewBorder(nil, nil, nil, container.NewHBox(browseCookiesBtn, clearCookiesBtn), sd.cookiesEntry)

	sd.autoRevealCheck = widget.NewCheck(text(KeyAutoReveal), nil)

	form := widget.NewForm(
		widget.NewFormItem(text(KeyDownloadDirectory), downloadDirRow),
		widget.NewFormItem(text(KeyMaxParallel), sd.maxParallel),
		widget.NewFormItem(text(KeyCookiesFile), cookiesRow),
		widget.NewFormItem("", sd.autoRevealCheck),
	)

	sd.dialog = dialog.NewCustomConfirm(
		text(KeySettings),
		text(KeySave),
		text(KeyCancel),
		form,
		sd.onSave,
		sd.window,
	)
	sd.dialog.Resize(fyne.NewSize(560, 300))
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.downloadDirEntry.SetText(sd.settings.GetDownloadDirectory())
	sd.maxParallel.SetSelected(strconv.Itoa(sd.settings.GetMaxParallelDownloads()))
	sd.cookiesEntry.SetText(sd.settings.GetCookiesFile())
	sd.autoRevealCheck.SetChecked(sd.settings.GetAutoRevealOnComplete())
}

func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.downloadDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onBrowseCookies() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		defer reader.Close()
		sd.cookiesEntry.SetText(reader.URI().Path())
	}, sd.window)
}

// formConfig reads the queue configuration currently entered in the form
func (sd *SettingsDialog) formConfig() queue.Config {
	maxParallel, err := strconv.Atoi(sd.maxParallel.Selected)
	if err != nil {
		maxParallel = sd.settings.GetMaxParallelDownloads()
	}
	return queue.Config{
		DownloadDir:   sd.downloadDirEntry.Text,
		MaxConcurrent: maxParallel,
		CookiesFile:   sd.cookiesEntry.Text,
	}
}

// save stores the form values. Nothing is stored when validation fails.
func (sd *SettingsDialog) save() (queue.Config, error) {
	cfg := sd.formConfig()
	if err := sd.settings.Apply(cfg); err != nil {
		return queue.Config{}, err
	}
	sd.settings.SetAutoRevealOnComplete(sd.autoRevealCheck.Checked)
	return sd.settings.QueueConfig(), nil
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}

	cfg, err := sd.save()
	if err != nil {
		dialog.ShowError(err, sd.window)
		return
	}
	if sd.onSaved != nil {
		sd.onSaved(cfg)
	}
}
