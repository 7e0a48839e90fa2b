package ui

import (
	"net/url"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/platform"
)

// TaskRunner is the part of task.Runner the window drives
type TaskRunner interface {
	Run(t model.Task) (string, error)
	GetTask(id string) (model.TaskState, bool)
	GetAllTasks() []model.TaskState
}

// Options configures a RootUI
type Options struct {
	OutputDir    string
	Logger       *logrus.Logger
	Localization *Localization
	Reveal       func(path string) error // defaults to platform.OpenFileInManager
}

// RootUI represents the main UI structure
type RootUI struct {
	window fyne.Window
	runner TaskRunner
	logger *logrus.Logger
	loc    *Localization
	reveal func(path string) error

	// read and written on the Fyne goroutine only; copied into each task
	outputDir  string
	lastOutput string

	sourceEntry   *widget.Entry
	intentSelect  *widget.Select
	formatSelect  *widget.Select
	formatRow     *fyne.Container
	dirLabel      *widget.Label
	startBtn      *widget.Button
	browseBtn     *widget.Button
	folderBtn     *widget.Button
	openFolderBtn *widget.Button
	status        *StatusView
	taskList      *widget.List

	intentByLabel map[string]model.Intent
	tasks         []model.TaskState
	lastRefresh   time.Time
}

// NewRootUI creates the main window content and installs it into window
func NewRootUI(window fyne.Window, runner TaskRunner, opts Options) *RootUI {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Localization == nil {
		opts.Localization = NewLocalization()
	}
	if opts.Reveal == nil {
		opts.Reveal = platform.OpenFileInManager
	}

	ui := &RootUI{
		window:        window,
		runner:        runner,
		logger:        opts.Logger,
		loc:           opts.Localization,
		reveal:        opts.Reveal,
		outputDir:     opts.OutputDir,
		intentByLabel: make(map[string]model.Intent),
	}

	window.SetTitle(ui.loc.GetText(KeyAppTitle))
	ui.setupUI()
	return ui
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	ui.sourceEntry = widget.NewEntry()
	ui.sourceEntry.SetPlaceHolder(ui.loc.GetText(KeyEnterSource))
	ui.sourceEntry.OnSubmitted = func(string) {
		ui.onStartClick()
	}

	ui.browseBtn = widget.NewButton(IconFile+" "+ui.loc.GetText(KeyBrowseFile), ui.onBrowseFile)
	ui.startBtn = widget.NewButton(IconStart+" "+ui.loc.GetText(KeyStart), ui.onStartClick)
	ui.startBtn.Importance = widget.HighImportance

	var intentLabels []string
	for _, intent := range model.Intents() {
		label := ui.loc.IntentLabel(intent)
		ui.intentByLabel[label] = intent
		intentLabels = append(intentLabels, label)
	}
	ui.intentSelect = widget.NewSelect(intentLabels, ui.onIntentChanged)

	formatLabels := []string{ui.loc.GetText(KeyBestFormat)}
	for _, f := range model.VideoFormats {
		formatLabels = append(formatLabels, f.Label)
	}
	ui.formatSelect = widget.NewSelect(formatLabels, nil)
	ui.formatSelect.SetSelected(formatLabels[0])
	ui.formatRow = container.NewHBox(widget.NewLabel(ui.loc.GetText(KeyFormat)), ui.formatSelect)

	ui.dirLabel = widget.NewLabel(ui.outputDir)
	ui.dirLabel.Truncation = fyne.TextTruncateEllipsis
	ui.folderBtn = widget.NewButton(IconFolder+" "+ui.loc.GetText(KeyOutputFolder), ui.onChooseFolder)
	ui.openFolderBtn = widget.NewButton(ui.loc.GetText(KeyOpenFolder), ui.onOpenFolder)
	ui.openFolderBtn.Importance = widget.LowImportance

	// SetSelected fires onIntentChanged, which needs formatRow
	ui.intentSelect.SetSelected(intentLabels[0])

	ui.status = NewStatusView(ui.loc.GetText(KeyReady))

	ui.taskList = widget.NewList(
		func() int { return len(ui.tasks) },
		func() fyne.CanvasObject { return NewTaskRow(ui.loc, ui.onReveal) },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ui.tasks) {
				obj.(*TaskRow).SetState(ui.tasks[id])
			}
		},
	)

	sourceRow := container.NewBorder(nil, nil, nil, container.NewHBox(ui.browseBtn, ui.startBtn), ui.sourceEntry)
	optionsRow := container.NewHBox(ui.intentSelect, ui.formatRow)
	dirRow := container.NewBorder(nil, nil, ui.folderBtn, ui.openFolderBtn, ui.dirLabel)
	top := container.NewVBox(sourceRow, optionsRow, dirRow, ui.status.Container(), widget.NewSeparator())

	ui.window.SetContent(container.NewBorder(top, nil, nil, nil, ui.taskList))
	ui.logger.Debug("UI setup completed")
}

// OutputDir returns the directory new tasks will write into
func (ui *RootUI) OutputDir() string {
	return ui.outputDir
}

// SetOutputDir changes the directory for tasks started from now on.
// Running tasks keep the directory they were started with.
func (ui *RootUI) SetOutputDir(dir string) {
	ui.outputDir = dir
	ui.dirLabel.SetText(dir)
	ui.logger.WithField("dir", dir).Info("output directory changed")
}

// Status returns the status view
func (ui *RootUI) Status() *StatusView {
	return ui.status
}

// onIntentChanged shows the format picker only for single video downloads
func (ui *RootUI) onIntentChanged(label string) {
	if ui.intentByLabel[label] == model.IntentDownload {
		ui.formatRow.Show()
	} else {
		ui.formatRow.Hide()
	}
}

// buildTask turns the current form state into a task
func (ui *RootUI) buildTask() model.Task {
	source := singleLine(ui.sourceEntry.Text)
	intent := ui.intentByLabel[ui.intentSelect.Selected]

	if intent == model.IntentDownload && isPlaylistURL(source) {
		intent = model.IntentDownloadPlaylist
	}

	t := model.Task{
		Source:      source,
		Intent:      intent,
		Destination: ui.outputDir,
	}
	if intent == model.IntentDownload {
		if id, ok := model.FormatIDForLabel(ui.formatSelect.Selected); ok {
			t.FormatID = id
		}
	}
	return t
}

// onStartClick hands the form to the runner. Validation errors are shown in
// the status line; nothing blocks the Fyne goroutine.
func (ui *RootUI) onStartClick() {
	t := ui.buildTask()

	id, err := ui.runner.Run(t)
	if err != nil {
		ui.logger.WithError(err).WithField("intent", t.Intent).Warn("task rejected")
		ui.status.ShowError(model.UserMessage(err))
		return
	}

	ui.logger.WithFields(logrus.Fields{
		"task_id": id,
		"intent":  t.Intent,
		"dest":    t.Destination,
	}).Info("task started")

	ui.sourceEntry.SetText("")
	ui.refreshTasks()
}

// HandleUpdate applies a status update. It must run on the Fyne goroutine.
func (ui *RootUI) HandleUpdate(u model.StatusUpdate) {
	ui.status.Apply(u)

	if !u.Final {
		if time.Since(ui.lastRefresh) >= TaskListRefreshDebounce {
			ui.refreshTasks()
		}
		return
	}

	if !u.Failed() {
		if state, ok := ui.runner.GetTask(u.TaskID); ok && state.OutputPath != "" {
			ui.lastOutput = state.OutputPath
		}
		ui.sendCompletionNotification(u)
	}
	ui.refreshTasks()
}

func (ui *RootUI) refreshTasks() {
	ui.tasks = ui.runner.GetAllTasks()
	ui.lastRefresh = time.Now()
	ui.taskList.Refresh()
}

// sendCompletionNotification sends a system notification for finished tasks
func (ui *RootUI) sendCompletionNotification(u model.StatusUpdate) {
	app := fyne.CurrentApp()
	if app == nil {
		return
	}
	app.SendNotification(&fyne.Notification{
		Title:   ui.loc.GetText(KeyTaskCompleted),
		Content: u.Message,
	})
}

// onBrowseFile lets the user pick a local media file as the source
func (ui *RootUI) onBrowseFile() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			ui.status.ShowError(model.UserMessage(err))
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()
		ui.sourceEntry.SetText(reader.URI().Path())
	}, ui.window)
	fileDialog.SetFilter(storage.NewExtensionFileFilter(platform.MediaExtensions))
	fileDialog.Show()
}

// onChooseFolder lets the user pick the output directory
func (ui *RootUI) onChooseFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			ui.status.ShowError(model.UserMessage(err))
			return
		}
		if uri == nil {
			return
		}
		ui.SetOutputDir(uri.Path())
	}, ui.window)
}

// onOpenFolder reveals the last produced file, or the output directory
func (ui *RootUI) onOpenFolder() {
	target := ui.lastOutput
	if target == "" {
		target = ui.outputDir
	}
	ui.onReveal(target)
}

// onReveal opens path in the file manager off the Fyne goroutine
func (ui *RootUI) onReveal(path string) {
	if path == "" {
		return
	}
	go func() {
		if err := ui.reveal(path); err != nil {
			ui.logger.WithError(err).WithField("path", path).Warn("failed to reveal path")
			fyne.Do(func() {
				ui.status.ShowError(ui.loc.GetText(KeyErrorOpeningFolder) + ": " + err.Error())
			})
		}
	}()
}

// isPlaylistURL reports whether raw points at a playlist rather than a video
// inside one
func isPlaylistURL(raw string) bool {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	q := u.Query()
	return q.Get(PlaylistQueryParam) != "" && q.Get(VideoQueryParam) == ""
}
