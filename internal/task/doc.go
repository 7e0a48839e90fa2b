package task

// Package task runs media tasks on background goroutines, one goroutine per
// task and no queue. It owns the worker boundary: progress from pipelines is
// normalized and published to the status channel, and every error or panic
// becomes a single terminal update instead of reaching the UI goroutine.
