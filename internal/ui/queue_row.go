package ui

import (
	"fmt"
	"image/color"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/fbgrabber/internal/model"
	"github.com/ytget/fbgrabber/internal/queue"
)

// RowActions are the per-row user intents. Id-based actions go to the
// orchestrator; path-based ones are handled locally.
type RowActions struct {
	Retry    func(id int64)
	Cancel   func(id int64)
	Remove   func(id int64)
	Open     func(path string)
	Reveal   func(path string)
	CopyPath func(path string)
	CopyURL  func(url string)
}

// QueueRow renders one queue item. It must only be touched on the Fyne thread.
type QueueRow struct {
	widget.BaseWidget

	item         model.QueueItem
	progress     queue.Progress
	localization *Localization
	actions      RowActions

	titleLabel    *widget.Label
	qualityLabel  *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	speedEtaLabel *widget.Label
	progressBar   *widget.ProgressBar

	retryBtn    *widget.Button
	cancelBtn   *widget.Button
	removeBtn   *widget.Button
	openBtn     *widget.Button // open with default app
	revealBtn   *widget.Button // reveal in file manager
	copyURLBtn  *widget.Button
	copyPathBtn *widget.Button
}

// NewQueueRow creates a row for item
func NewQueueRow(item model.QueueItem, localization *Localization, actions RowActions) *QueueRow {
	qr := &QueueRow{
		item:         item,
		progress:     queue.Progress{Phase: queue.PhaseQueued},
		localization: localization,
		actions:      actions,
	}
	qr.ExtendBaseWidget(qr)
	qr.createUI()
	qr.updateFromItem()
	return qr
}

// Item returns the last item state shown by the row
func (qr *QueueRow) Item() model.QueueItem {
	return qr.item
}

// SetItem replaces the row's item state
func (qr *QueueRow) SetItem(item model.QueueItem) {
	qr.item = item
	if item.Status.IsTerminal() {
		qr.progress = queue.Progress{Percent: item.Progress}
	}
	qr.updateFromItem()
	qr.Refresh()
}

// SetProgress shows a progress notification. A queued notification starts a
// new dispatch and clears the previous outcome.
func (qr *QueueRow) SetProgress(progress queue.Progress) {
	if progress.Phase == queue.PhaseQueued {
		qr.item.Status = model.QueueStatusPending
		qr.item.Error = ""
		qr.item.OutputPath = ""
	} else {
		qr.item.Status = model.QueueStatusDownloading
	}
	qr.progress = progress
	qr.item.Progress = progress.Percent
	qr.item.Speed = progress.Speed
	qr.item.ETA = progress.ETA
	qr.updateFromItem()
	qr.Refresh()
}

func (qr *QueueRow) createUI() {
	qr.titleLabel = widget.NewLabel("")
	qr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	qr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	qr.qualityLabel = widget.NewLabel("")
	qr.qualityLabel.Truncation = fyne.TextTruncateEllipsis

	qr.statusLabel = widget.NewLabel("")
	qr.statusLabel.Alignment = fyne.TextAlignTrailing
	qr.progressLabel = widget.NewLabel("")
	qr.progressLabel.Alignment = fyne.TextAlignTrailing
	qr.speedEtaLabel = widget.NewLabel("")
	qr.speedEtaLabel.TextStyle = fyne.TextStyle{Monospace: true}

	qr.progressBar = widget.NewProgressBar()
	qr.progressBar.Max = 100
	qr.progressBar.TextFormatter = func() string { return "" }

	byID := func(fn *func(int64)) func() {
		return func() {
			if *fn != nil {
				(*fn)(qr.item.ID)
			}
		}
	}
	byPath := func(fn *func(string)) func() {
		return func() {
			if *fn != nil && qr.item.OutputPath != "" {
				(*fn)(qr.item.OutputPath)
			}
		}
	}

	qr.retryBtn = widget.NewButton(qr.localization.GetText(KeyRetry), byID(&qr.actions.Retry))
	qr.cancelBtn = widget.NewButton(qr.localization.GetText(KeyCancel), byID(&qr.actions.Cancel))
	qr.removeBtn = widget.NewButton(qr.localization.GetText(KeyRemove), byID(&qr.actions.Remove))
	qr.openBtn = widget.NewButton(qr.localization.GetText(KeyOpen), byPath(&qr.actions.Open))
	qr.revealBtn = widget.NewButton(qr.localization.GetText(KeyReveal), byPath(&qr.actions.Reveal))
	qr.copyPathBtn = widget.NewButton(qr.localization.GetText(KeyCopyPath), byPath(&qr.actions.CopyPath))
	qr.copyURLBtn = widget.NewButton(qr.localization.GetText(KeyCopyURL), func() {
		if qr.actions.CopyURL != nil {
			qr.actions.CopyURL(qr.item.URL)
		}
	})
	qr.removeBtn.Importance = widget.LowImportance
}

// refreshTexts re-reads button captions after a language change
func (qr *QueueRow) refreshTexts() {
	qr.retryBtn.SetText(qr.localization.GetText(KeyRetry))
	qr.cancelBtn.SetText(qr.localization.GetText(KeyCancel))
	qr.removeBtn.SetText(qr.localization.GetText(KeyRemove))
	qr.openBtn.SetText(qr.localization.GetText(KeyOpen))
	qr.revealBtn.SetText(qr.localization.GetText(KeyReveal))
	qr.copyPathBtn.SetText(qr.localization.GetText(KeyCopyPath))
	qr.copyURLBtn.SetText(qr.localization.GetText(KeyCopyURL))
	qr.updateFromItem()
}

func (qr *QueueRow) updateFromItem() {
	qr.titleLabel.SetText(singleLine(qr.item.GetDisplayTitle()))

	quality := qr.item.QualityText
	if quality == "" {
		quality = qr.localization.GetText(KeyBestQuality)
	}
	qr.qualityLabel.SetText(quality)

	status := qr.localization.StatusText(qr.item.Status)
	switch qr.item.Status {
	case model.QueueStatusPending:
		qr.statusLabel.Importance = widget.MediumImportance
		qr.statusLabel.SetText(IconQueued + " " + status)
	case model.QueueStatusDownloading:
		qr.statusLabel.Importance = widget.HighImportance
		if qr.progress.Phase == queue.PhaseProcessing {
			qr.statusLabel.SetText(IconProcess + " " + qr.localization.GetText(KeyStatusProcessing))
		} else {
			qr.statusLabel.SetText(IconPlay + " " + status)
		}
	case model.QueueStatusCompleted:
		qr.statusLabel.Importance = widget.SuccessImportance
		qr.statusLabel.SetText(IconCompleted + " " + status)
	case model.QueueStatusFailed:
		qr.statusLabel.Importance = widget.DangerImportance
		qr.statusLabel.SetText(IconError + " " + status)
	case model.QueueStatusCanceled:
		qr.statusLabel.Importance = widget.WarningImportance
		qr.statusLabel.SetText(IconCanceled + " " + status)
	}

	percent := qr.item.Progress
	if qr.item.Status == model.QueueStatusCompleted {
		percent = 100
	}
	qr.progressBar.SetValue(percent)
	if qr.item.Status == model.QueueStatusCompleted {
		qr.progressLabel.SetText("")
	} else {
		qr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, int(percent)))
	}

	qr.speedEtaLabel.SetText(qr.detailText())
	qr.updateButtons()
}

// detailText is the speed/ETA line while active and the error once failed
func (qr *QueueRow) detailText() string {
	switch qr.item.Status {
	case model.QueueStatusDownloading:
		parts := make([]string, 0, 2)
		if qr.item.Speed != "" {
			parts = append(parts, qr.item.Speed)
		}
		if qr.item.ETA != "" {
			parts = append(parts, qr.item.ETA)
		}
		if len(parts) == 0 {
			return DashPlaceholder
		}
		return strings.Join(parts, MiddleDotSeparator)
	case model.QueueStatusFailed, model.QueueStatusCanceled:
		return singleLine(qr.item.Error)
	default:
		return ""
	}
}

func (qr *QueueRow) updateButtons() {
	setEnabled(qr.cancelBtn, qr.item.Status.IsActive())
	setEnabled(qr.retryBtn, qr.item.Status.IsTerminal())

	hasFile := qr.item.Status == model.QueueStatusCompleted && qr.item.OutputPath != ""
	setEnabled(qr.openBtn, hasFile)
	setEnabled(qr.revealBtn, hasFile)
	setEnabled(qr.copyPathBtn, hasFile)
}

func setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

// singleLine flattens titles and errors that carry newlines or tabs
func singleLine(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ").Replace(s)
	return strings.TrimSpace(s)
}

// CreateRenderer creates the widget renderer
func (qr *QueueRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	info := container.NewVBox(
		fixedWidth(StatusLabelWidth, qr.statusLabel),
		container.NewHBox(
			fixedWidth(SpeedLabelWidth, qr.speedEtaLabel),
			fixedWidth(PercentLabelWidth, qr.progressLabel),
		),
	)

	actions := container.NewHBox(
		qr.retryBtn,
		qr.cancelBtn,
		qr.revealBtn,
		qr.openBtn,
		qr.copyPathBtn,
		qr.copyURLBtn,
		qr.removeBtn,
	)

	heading := container.NewBorder(nil, nil, nil, fixedWidth(QualityLabelWidth, qr.qualityLabel), qr.titleLabel)
	right := container.NewBorder(nil, nil, nil, actions, info)
	body := container.NewBorder(nil, nil, nil, right, container.NewVBox(heading, qr.progressBar))

	return widget.NewSimpleRenderer(container.NewVBox(body, widget.NewSeparator()))
}

// MinSize keeps rows from collapsing inside the scroll container
func (qr *QueueRow) MinSize() fyne.Size {
	size := qr.BaseWidget.MinSize()
	return fyne.NewSize(max(size.Width, RowMinWidth), max(size.Height, RowMinHeight))
}
