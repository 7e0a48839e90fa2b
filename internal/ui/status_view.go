package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/progress"
	"github.com/ytget/video-downloader/internal/status"
)

// StatusView renders the latest status update as a progress bar and a status
// line. The last applied update wins, whichever task it came from.
type StatusView struct {
	bar   *widget.ProgressBar
	label *widget.Label
	box   *fyne.Container

	lastFailed bool
}

// NewStatusView creates a status view showing idleText
func NewStatusView(idleText string) *StatusView {
	bar := widget.NewProgressBar()
	bar.Min = 0
	bar.Max = progress.MaxPercent

	label := widget.NewLabel(idleText)
	label.Wrapping = fyne.TextWrapWord

	return &StatusView{
		bar:   bar,
		label: label,
		box:   container.NewVBox(bar, label),
	}
}

// Container returns the view's canvas object
func (v *StatusView) Container() fyne.CanvasObject {
	return v.box
}

// Apply renders u. It must be called on the Fyne goroutine.
func (v *StatusView) Apply(u model.StatusUpdate) {
	v.bar.SetValue(clampPercent(u.Percent))
	if u.Message != "" || u.Final {
		v.label.SetText(u.Message)
	}
	v.lastFailed = u.Failed()
}

// ShowError replaces the status line with message and resets the bar
func (v *StatusView) ShowError(message string) {
	v.bar.SetValue(0)
	v.label.SetText(message)
	v.lastFailed = true
}

// Percent returns the value currently shown by the bar
func (v *StatusView) Percent() float64 {
	return v.bar.Value
}

// Text returns the current status line
func (v *StatusView) Text() string {
	return v.label.Text
}

// Failed reports whether the status line currently shows an error
func (v *StatusView) Failed() bool {
	return v.lastFailed
}

// Listen drains ch on a background goroutine and hands every update to apply
// on the Fyne goroutine. It returns when ctx is done or ch is closed.
func Listen(ctx context.Context, ch *status.Channel, apply func(model.StatusUpdate)) {
	go ch.Dispatch(ctx, func(u model.StatusUpdate) {
		fyne.Do(func() {
			apply(u)
		})
	})
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > progress.MaxPercent {
		return progress.MaxPercent
	}
	return p
}
