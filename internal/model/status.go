package model

// TaskStatus represents the lifecycle state of a media task
type TaskStatus string

const (
	// TaskStatusPending means the task was accepted but its worker has not started
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusRunning means the worker is executing the pipeline
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusCompleted means the task finished successfully
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusFailed means the task failed with an error
	TaskStatusFailed TaskStatus = "Failed"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task has a live worker or is about to get one
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusPending || ts == TaskStatusRunning
}

// IsFinished returns true if the task is in a finished state (completed or failed)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusFailed
}
