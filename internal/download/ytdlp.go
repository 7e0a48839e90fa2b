package download

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
)

// ToolName is the name used in errors and logs
const ToolName = "yt-dlp"

// DefaultProgressInterval is how often yt-dlp progress is sampled
const DefaultProgressInterval = 500 * time.Millisecond

// MaxDiagnosticLines caps the stderr tail kept in a ToolError
const MaxDiagnosticLines = 20

// YTDLP is the production Extractor
type YTDLP struct {
	Executable       string // path or name; empty means "yt-dlp" on PATH
	AutoInstall      bool   // download yt-dlp when it is not found
	ProgressInterval time.Duration
	Logger           *logrus.Logger

	mu       sync.Mutex
	resolved string
}

// Extract runs yt-dlp for req and forwards its progress hooks to onHook
func (y *YTDLP) Extract(ctx context.Context, req Request, onHook func(Hook)) (*Result, error) {
	exe, err := y.executable(ctx)
	if err != nil {
		return nil, err
	}

	dl := ytdlp.New().
		SetExecutable(exe).
		ForceOverwrites().
		RestrictFilenames().
		Output(req.OutputTemplate)

	if req.Format != "" {
		dl.Format(req.Format)
	}
	if req.Playlist {
		dl.YesPlaylist()
	} else {
		dl.NoPlaylist()
	}
	if req.ExtractAudio {
		dl.ExtractAudio().
			AudioFormat(req.AudioFormat).
			AudioQuality(req.AudioQuality)
	}

	interval := y.ProgressInterval
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	var (
		filesMu sync.Mutex
		files   []string
	)

	dl.ProgressFunc(interval, func(update ytdlp.ProgressUpdate) {
		h := hookFromUpdate(update)
		if h.Status == HookFinished && h.Filename != "" {
			filesMu.Lock()
			files = append(files, h.Filename)
			filesMu.Unlock()
		}
		if onHook != nil {
			onHook(h)
		}
	})

	y.logger().WithFields(logrus.Fields{
		"url":    req.URL,
		"format": req.Format,
		"output": req.OutputTemplate,
	}).Debug("running yt-dlp")

	res, runErr := dl.Run(ctx, req.URL)

	filesMu.Lock()
	result := &Result{Files: append([]string(nil), files...)}
	filesMu.Unlock()
	if res != nil {
		result.Stderr = res.Stderr
	}

	if runErr != nil {
		return result, classifyRunError(res, runErr)
	}
	return result, nil
}

// executable resolves the yt-dlp binary once, installing it if allowed
func (y *YTDLP) executable(ctx context.Context) (string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	if y.resolved != "" {
		return y.resolved, nil
	}

	name := y.Executable
	if name == "" {
		name = ToolName
	}

	path, err := exec.LookPath(name)
	if err == nil {
		y.resolved = path
		return path, nil
	}
	if !y.AutoInstall {
		return "", &model.LaunchError{Tool: ToolName, Err: err}
	}

	y.logger().WithField("lookup_error", err.Error()).Info("yt-dlp not found, installing")
	installed, installErr := ytdlp.Install(ctx, nil)
	if installErr != nil {
		return "", &model.LaunchError{Tool: ToolName, Err: fmt.Errorf("install failed: %w", installErr)}
	}

	y.resolved = installed.Executable
	return y.resolved, nil
}

// logger never writes to y, so concurrent Extract calls can share it
func (y *YTDLP) logger() *logrus.Logger {
	if y.Logger == nil {
		return logrus.StandardLogger()
	}
	return y.Logger
}

// hookFromUpdate copies the fields the pipelines use out of a progress update.
// The file name comes from the progress dict; the info dict is a fallback.
func hookFromUpdate(update ytdlp.ProgressUpdate) Hook {
	h := Hook{
		Status:          string(update.Status),
		DownloadedBytes: int64(update.DownloadedBytes),
		TotalBytes:      int64(update.TotalBytes),
		Filename:        update.Filename,
	}
	if update.Info != nil {
		if h.Filename == "" && update.Info.Filename != nil {
			h.Filename = *update.Info.Filename
		}
		if update.Info.Title != nil {
			h.Title = *update.Info.Title
		}
	}
	return h
}

// classifyRunError maps a failed run onto the model error kinds
func classifyRunError(res *ytdlp.Result, err error) error {
	var execErr *exec.Error
	var pathErr *fs.PathError
	if errors.As(err, &execErr) || errors.As(err, &pathErr) {
		return &model.LaunchError{Tool: ToolName, Err: err}
	}

	if res != nil && res.ExitCode != 0 {
		return &model.ToolError{
			Tool:        ToolName,
			ExitCode:    res.ExitCode,
			Diagnostics: lastLines(res.Stderr, MaxDiagnosticLines),
		}
	}
	return fmt.Errorf("%s: %w", ToolName, err)
}

// lastLines returns at most n trailing non-empty lines of s
func lastLines(s string, n int) string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
