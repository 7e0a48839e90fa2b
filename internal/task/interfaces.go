package task

import (
	"context"

	"github.com/ytget/video-downloader/internal/model"
)

// Reporter receives raw progress events from a pipeline. Pipelines call it
// from the worker goroutine only.
type Reporter func(model.ProgressEvent)

// Outcome describes a successfully finished task
type Outcome struct {
	Message    string // completion text shown in the status line
	OutputPath string
}

// Pipeline performs the media work for one or more intents
type Pipeline interface {
	Execute(ctx context.Context, t model.Task, report Reporter) (Outcome, error)
}

// PipelineFunc adapts a function to the Pipeline interface
type PipelineFunc func(ctx context.Context, t model.Task, report Reporter) (Outcome, error)

// Execute calls f
func (f PipelineFunc) Execute(ctx context.Context, t model.Task, report Reporter) (Outcome, error) {
	return f(ctx, t, report)
}

// BySource sends remote sources to remote and local paths to local
func BySource(remote, local Pipeline) Pipeline {
	return PipelineFunc(func(ctx context.Context, t model.Task, report Reporter) (Outcome, error) {
		if t.IsRemote() {
			return remote.Execute(ctx, t, report)
		}
		return local.Execute(ctx, t, report)
	})
}
