package ui

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/video-downloader/internal/model"
)

// TaskRow shows one task of the runner: its source, intent, status and percent
type TaskRow struct {
	widget.BaseWidget

	state        model.TaskState
	localization *Localization

	titleLabel   *widget.Label
	detailLabel  *widget.Label
	percentLabel *widget.Label
	revealBtn    *widget.Button
	progressBar  *widget.ProgressBar
	onReveal     func(path string)
}

// NewTaskRow creates a new task row widget
func NewTaskRow(localization *Localization, onReveal func(path string)) *TaskRow {
	tr := &TaskRow{
		localization: localization,
		onReveal:     onReveal,
	}
	tr.ExtendBaseWidget(tr)
	tr.createUI()
	tr.updateFromState()
	return tr
}

// SetState updates the row with a task snapshot
func (tr *TaskRow) SetState(state model.TaskState) {
	tr.state = state
	tr.updateFromState()
	tr.Refresh()
}

// State returns the snapshot currently shown
func (tr *TaskRow) State() model.TaskState {
	return tr.state
}

func (tr *TaskRow) createUI() {
	tr.titleLabel = widget.NewLabel("")
	tr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	tr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	tr.detailLabel = widget.NewLabel("")
	tr.detailLabel.Truncation = fyne.TextTruncateEllipsis

	tr.percentLabel = widget.NewLabel("")
	tr.percentLabel.Alignment = fyne.TextAlignTrailing

	tr.progressBar = widget.NewProgressBar()
	tr.progressBar.Max = 100
	tr.progressBar.TextFormatter = func() string { return "" }

	tr.revealBtn = widget.NewButton(tr.localization.GetText(KeyReveal), func() {
		if tr.onReveal != nil && tr.state.OutputPath != "" {
			tr.onReveal(tr.state.OutputPath)
		}
	})
	tr.revealBtn.Importance = widget.MediumImportance
}

func (tr *TaskRow) updateFromState() {
	tr.titleLabel.SetText(rowTitle(tr.state.Task.Source))

	parts := []string{tr.localization.IntentLabel(tr.state.Task.Intent)}
	if tr.state.Status != "" {
		parts = append(parts, tr.state.Status.String())
	}
	if msg := singleLine(tr.state.Message); msg != "" {
		parts = append(parts, msg)
	}
	tr.detailLabel.SetText(strings.Join(parts, MiddleDotSeparator))

	if tr.state.Status == "" {
		tr.percentLabel.SetText(DashPlaceholder)
	} else {
		tr.percentLabel.SetText(fmt.Sprintf(ProgressLabelFormat, int(math.Round(tr.state.Percent))))
	}
	tr.progressBar.SetValue(tr.state.Percent)

	if tr.state.Status == model.TaskStatusCompleted && tr.state.OutputPath != "" {
		tr.revealBtn.Enable()
	} else {
		tr.revealBtn.Disable()
	}
}

// CreateRenderer creates the widget renderer
func (tr *TaskRow) CreateRenderer() fyne.WidgetRenderer {
	percent := container.NewGridWrap(fyne.NewSize(PercentLabelWidth, tr.percentLabel.MinSize().Height), tr.percentLabel)
	right := container.NewHBox(percent, tr.revealBtn)
	text := container.NewVBox(tr.titleLabel, tr.detailLabel)
	top := container.NewBorder(nil, nil, nil, right, text)

	content := container.NewVBox(top, tr.progressBar, layout.NewSpacer())
	return widget.NewSimpleRenderer(content)
}

// MinSize keeps rows readable in narrow windows
func (tr *TaskRow) MinSize() fyne.Size {
	size := tr.BaseWidget.MinSize()
	if size.Width < RowMinWidth {
		size.Width = RowMinWidth
	}
	return size
}

func rowTitle(source string) string {
	source = singleLine(source)
	if source == "" {
		return DashPlaceholder
	}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return source
	}
	return filepath.Base(source)
}

// singleLine collapses control whitespace so labels stay on one line
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.TrimSpace(s)
}
