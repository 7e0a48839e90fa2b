package model

import (
	"fmt"
	"strings"
	"time"
)

// Intent tells the runner what to do with a task source
type Intent int

const (
	IntentDownload Intent = iota
	IntentExtractAudio
	IntentTranscribe
	IntentDownloadPlaylist
)

var intentNames = map[Intent]string{
	IntentDownload:         "download",
	IntentExtractAudio:     "extract-audio",
	IntentTranscribe:       "transcribe",
	IntentDownloadPlaylist: "download-playlist",
}

// String returns the stable name of the intent
func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// Valid reports whether i is one of the known intents
func (i Intent) Valid() bool {
	_, ok := intentNames[i]
	return ok
}

// Intents returns all known intents in display order
func Intents() []Intent {
	return []Intent{IntentDownload, IntentExtractAudio, IntentTranscribe, IntentDownloadPlaylist}
}

// ParseIntent converts a name produced by Intent.String back to an Intent
func ParseIntent(name string) (Intent, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for intent, n := range intentNames {
		if n == name {
			return intent, nil
		}
	}
	return 0, fmt.Errorf("unknown intent: %q", name)
}

// Task is a single unit of media work. It is copied into the worker when
// started and never modified afterwards.
type Task struct {
	ID          string
	Source      string // URL or local path
	Intent      Intent
	Destination string // output directory, captured at creation time
	FormatID    string // optional yt-dlp format identifier
}

// IsRemote returns true when the source is an http(s) URL
func (t Task) IsRemote() bool {
	s := strings.ToLower(strings.TrimSpace(t.Source))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// TaskState is the runner's bookkeeping for a task
type TaskState struct {
	Task       Task
	Status     TaskStatus
	Percent    float64 // 0 to 100
	Message    string  // last status message
	LastError  string  // last error message if any
	OutputPath string  // path to the produced file or directory
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed returns how long the task has been running, or ran in total once finished
func (ts *TaskState) Elapsed() time.Duration {
	if ts.StartedAt.IsZero() {
		return 0
	}
	if ts.FinishedAt.IsZero() {
		return time.Since(ts.StartedAt)
	}
	return ts.FinishedAt.Sub(ts.StartedAt)
}

// VideoFormat is a selectable YouTube format preset
type VideoFormat struct {
	Label    string
	FormatID string
}

// VideoFormats lists the format presets offered for YouTube downloads
var VideoFormats = []VideoFormat{
	{Label: "240p", FormatID: "18"},
	{Label: "360p", FormatID: "18"},
	{Label: "480p", FormatID: "135"},
	{Label: "720p", FormatID: "136"},
	{Label: "1080p", FormatID: "137"},
	{Label: "1440p", FormatID: "271"},
}

// FormatIDForLabel returns the format ID for a preset label
func FormatIDForLabel(label string) (string, bool) {
	for _, f := range VideoFormats {
		if f.Label == label {
			return f.FormatID, true
		}
	}
	return "", false
}
