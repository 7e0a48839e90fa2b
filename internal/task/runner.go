package task

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/progress"
	"github.com/ytget/video-downloader/internal/status"
)

// TaskIDPrefix is prepended to every generated task ID
const TaskIDPrefix = "task-"

// Validation errors returned by Run before any worker is started
var (
	ErrInvalidSource     = errors.New("please enter a valid URL or select a file")
	ErrNoDestination     = errors.New("output directory is not set")
	ErrUnsupportedIntent = errors.New("unsupported task intent")
)

// Config configures a Runner
type Config struct {
	Pipelines map[model.Intent]Pipeline
	Updates   *status.Channel
	Logger    *logrus.Logger
}

// Runner starts one worker goroutine per task
type Runner struct {
	cfg        Config
	tasks      map[string]*model.TaskState
	tasksMutex sync.RWMutex
	wg         sync.WaitGroup
}

// NewRunner creates a runner. A nil Updates channel gets a default one.
func NewRunner(cfg Config) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Updates == nil {
		cfg.Updates = status.NewChannel(status.DefaultBufferSize)
	}
	if cfg.Pipelines == nil {
		cfg.Pipelines = make(map[model.Intent]Pipeline)
	}
	return &Runner{
		cfg:   cfg,
		tasks: make(map[string]*model.TaskState),
	}
}

// Updates returns the channel the runner publishes to
func (r *Runner) Updates() *status.Channel {
	return r.cfg.Updates
}

// Run validates t and starts it on a new goroutine. It never blocks on the
// task itself and returns the assigned task ID.
func (r *Runner) Run(t model.Task) (string, error) {
	if err := r.validate(t); err != nil {
		return "", err
	}

	t.ID = generateTaskID()
	state := r.register(t)

	r.logger(t).Info("task accepted")
	start := model.StatusUpdate{TaskID: t.ID, Intent: t.Intent, Message: state.Message}

	// the start update is published by the worker so a full channel never
	// stalls the caller
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.publish(start)
		_ = r.Execute(context.Background(), t)
	}()

	return t.ID, nil
}

// Execute runs t on the calling goroutine and publishes its progress and its
// terminal update. The returned error has already been reported.
func (r *Runner) Execute(ctx context.Context, t model.Task) error {
	if t.ID == "" {
		t.ID = generateTaskID()
	}
	if _, ok := r.GetTask(t.ID); !ok {
		r.register(t)
	}
	logger := r.logger(t)

	pipeline, ok := r.cfg.Pipelines[t.Intent]
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnsupportedIntent, t.Intent)
		r.fail(t, err, logger)
		return err
	}

	r.tasksMutex.Lock()
	state := r.tasks[t.ID]
	state.Status = model.TaskStatusRunning
	message := state.Message
	r.tasksMutex.Unlock()

	logger.Info("task started")

	var (
		tracker  progress.Tracker
		reportMu sync.Mutex
		closed   bool
		lastPct  = -1.0
	)

	report := func(ev model.ProgressEvent) {
		reportMu.Lock()
		defer reportMu.Unlock()
		if closed {
			return
		}

		percent, ok := progress.Parse(ev)
		if !ok && ev.Message == "" {
			return
		}
		if ok {
			percent = tracker.Observe(percent)
		} else {
			percent = tracker.Last()
		}
		if ev.Message != "" {
			message = ev.Message
		} else if percent == lastPct {
			return
		}
		lastPct = percent

		r.setProgress(t.ID, percent, message)
		r.publish(model.StatusUpdate{TaskID: t.ID, Intent: t.Intent, Percent: percent, Message: message})
	}

	outcome, err := runPipeline(ctx, pipeline, t, report)

	reportMu.Lock()
	closed = true
	reportMu.Unlock()

	if err != nil {
		r.fail(t, err, logger)
		return err
	}

	r.complete(t, outcome, logger)
	return nil
}

// GetTask returns a snapshot of a task by ID
func (r *Runner) GetTask(id string) (model.TaskState, bool) {
	r.tasksMutex.RLock()
	defer r.tasksMutex.RUnlock()
	state, exists := r.tasks[id]
	if !exists {
		return model.TaskState{}, false
	}
	return *state, true
}

// GetAllTasks returns snapshots of all tasks, oldest first
func (r *Runner) GetAllTasks() []model.TaskState {
	r.tasksMutex.RLock()
	tasks := make([]model.TaskState, 0, len(r.tasks))
	for _, state := range r.tasks {
		tasks = append(tasks, *state)
	}
	r.tasksMutex.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].StartedAt.Before(tasks[j].StartedAt)
	})
	return tasks
}

// Wait blocks until every worker started by Run has returned
func (r *Runner) Wait() {
	r.wg.Wait()
}

// validate checks a task before a worker is spawned for it
func (r *Runner) validate(t model.Task) error {
	if !t.Intent.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedIntent, t.Intent)
	}
	if _, ok := r.cfg.Pipelines[t.Intent]; !ok {
		return fmt.Errorf("%w: no pipeline for %s", ErrUnsupportedIntent, t.Intent)
	}
	if strings.TrimSpace(t.Destination) == "" {
		return ErrNoDestination
	}

	source := strings.TrimSpace(t.Source)
	if source == "" {
		return ErrInvalidSource
	}
	if t.IsRemote() {
		return nil
	}

	switch t.Intent {
	case model.IntentDownload, model.IntentDownloadPlaylist:
		return fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}

	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return fmt.Errorf("%w: %s", ErrInvalidSource, source)
	}
	return nil
}

// register stores a pending state for t
func (r *Runner) register(t model.Task) *model.TaskState {
	state := &model.TaskState{
		Task:      t,
		Status:    model.TaskStatusPending,
		Message:   StartMessage(t),
		StartedAt: time.Now(),
	}

	r.tasksMutex.Lock()
	r.tasks[t.ID] = state
	r.tasksMutex.Unlock()
	return state
}

// setProgress records the latest published progress
func (r *Runner) setProgress(id string, percent float64, message string) {
	r.tasksMutex.Lock()
	defer r.tasksMutex.Unlock()
	if state, ok := r.tasks[id]; ok {
		state.Percent = percent
		state.Message = message
	}
}

// fail records the error and publishes the terminal failure update
func (r *Runner) fail(t model.Task, err error, logger *logrus.Entry) {
	message := model.UserMessage(err)

	r.tasksMutex.Lock()
	if state, ok := r.tasks[t.ID]; ok {
		state.Status = model.TaskStatusFailed
		state.Percent = 0
		state.Message = message
		state.LastError = err.Error()
		state.FinishedAt = time.Now()
	}
	r.tasksMutex.Unlock()

	logger.WithError(err).Error("task failed")
	r.publish(model.StatusUpdate{
		TaskID:  t.ID,
		Intent:  t.Intent,
		Percent: 0,
		Message: message,
		Final:   true,
		Err:     err,
	})
}

// complete records the outcome and publishes the terminal success update
func (r *Runner) complete(t model.Task, outcome Outcome, logger *logrus.Entry) {
	message := outcome.Message
	if message == "" {
		message = CompletionMessage(t.Intent)
	}

	r.tasksMutex.Lock()
	if state, ok := r.tasks[t.ID]; ok {
		state.Status = model.TaskStatusCompleted
		state.Percent = progress.MaxPercent
		state.Message = message
		state.OutputPath = outcome.OutputPath
		state.FinishedAt = time.Now()
	}
	r.tasksMutex.Unlock()

	logger.WithField("output", outcome.OutputPath).Info("task completed")
	r.publish(model.StatusUpdate{
		TaskID:  t.ID,
		Intent:  t.Intent,
		Percent: progress.MaxPercent,
		Message: message,
		Final:   true,
	})
}

// publish hands u to the status channel
func (r *Runner) publish(u model.StatusUpdate) {
	if !r.cfg.Updates.Publish(u) {
		r.cfg.Logger.WithField("task_id", u.TaskID).Debug("status channel closed, update dropped")
	}
}

func (r *Runner) logger(t model.Task) *logrus.Entry {
	return r.cfg.Logger.WithFields(logrus.Fields{
		"task_id": t.ID,
		"intent":  t.Intent.String(),
	})
}

// runPipeline calls the pipeline and turns a panic into an error
func runPipeline(ctx context.Context, p Pipeline, t model.Task, report Reporter) (outcome Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()
	return p.Execute(ctx, t, report)
}

// generateTaskID generates a unique, time-ordered task ID
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
