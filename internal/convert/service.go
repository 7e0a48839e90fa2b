package convert

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/platform"
	"github.com/ytget/video-downloader/internal/progress"
	"github.com/ytget/video-downloader/internal/task"
)

// FFmpeg constants for conversion settings
const (
	// MP3 settings
	MP3Codec   = "libmp3lame"
	MP3Quality = "2"

	// WAV settings for speech recognition
	WAVCodec      = "pcm_s16le"
	WAVSampleRate = "16000"
	WAVChannels   = "1"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "default=noprint_wrappers=1:nokey=1"
	ProgressPipeTarget  = "pipe:2"
	OutputExtensionMP3  = ".mp3"
	OutputExtensionWAV  = ".wav"
)

// MaxDiagnosticLines caps the stderr tail kept in a ToolError
const MaxDiagnosticLines = 20

// ErrSameFile is returned when a conversion would overwrite its own input
var ErrSameFile = errors.New("input and output are the same file")

// progressKeyPattern matches the key=value lines of ffmpeg -progress output
var progressKeyPattern = regexp.MustCompile(`^[a-z_0-9]+=\S*$`)

// Config configures a Service
type Config struct {
	FFmpegPath  string
	FFprobePath string
	Logger      *logrus.Logger
}

// Service converts local media with ffmpeg
type Service struct {
	ffmpeg  string
	ffprobe string
	logger  *logrus.Logger
}

// NewService creates a new conversion service
func NewService(cfg Config) *Service {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = FFmpegCommand
	}
	if cfg.FFprobePath == "" {
		cfg.FFprobePath = FFprobeCommand
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Service{
		ffmpeg:  cfg.FFmpegPath,
		ffprobe: cfg.FFprobePath,
		logger:  cfg.Logger,
	}
}

// Execute converts a local media file to mp3 in the task destination
func (s *Service) Execute(ctx context.Context, t model.Task, report task.Reporter) (task.Outcome, error) {
	if t.Intent != model.IntentExtractAudio {
		return task.Outcome{}, fmt.Errorf("convert: unsupported intent %s", t.Intent)
	}

	output, err := s.ExtractAudio(ctx, t.Source, t.Destination, model.Span{}, report)
	if err != nil {
		return task.Outcome{}, err
	}

	outcome := task.Outcome{OutputPath: output}
	if seconds, err := MP3Duration(output); err != nil {
		s.logger.WithError(err).WithField("output", output).Warn("could not decode converted mp3")
	} else {
		outcome.Message = fmt.Sprintf("%s (%s)", task.CompletionMessage(t.Intent), progress.Clock(seconds))
	}
	return outcome, nil
}

// ExtractAudio converts input to <destDir>/<base>.mp3 and returns the path
func (s *Service) ExtractAudio(ctx context.Context, input, destDir string, span model.Span, report task.Reporter) (string, error) {
	if err := platform.CreateDirectoryIfNotExists(destDir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	output := filepath.Join(destDir, platform.BaseName(input)+OutputExtensionMP3)
	if samePath(input, output) {
		return "", fmt.Errorf("%w: %s", ErrSameFile, output)
	}
	duration := s.durationOrZero(ctx, input)

	if err := s.run(ctx, input, output, BuildMP3Args, duration, span, report); err != nil {
		return "", err
	}
	return output, nil
}

// ToWAV converts input to a 16 kHz mono PCM WAV file at output
func (s *Service) ToWAV(ctx context.Context, input, output string, span model.Span, report task.Reporter) error {
	if samePath(input, output) {
		return fmt.Errorf("%w: %s", ErrSameFile, output)
	}
	duration := s.durationOrZero(ctx, input)
	return s.run(ctx, input, output, BuildWAVArgs, duration, span, report)
}

// ProbeDuration returns the media duration of path in seconds using ffprobe
func (s *Service) ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, s.ffprobe, "-v", FFprobeLogLevel, "-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return 0, &model.ToolError{
				Tool:        FFprobeCommand,
				ExitCode:    exitErr.ExitCode(),
				Diagnostics: strings.TrimSpace(string(exitErr.Stderr)),
			}
		}
		return 0, &model.LaunchError{Tool: FFprobeCommand, Err: err}
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", durationStr, err)
	}

	return duration, nil
}

// durationOrZero probes input and treats any failure as an unknown duration
func (s *Service) durationOrZero(ctx context.Context, input string) float64 {
	duration, err := s.ProbeDuration(ctx, input)
	if err != nil {
		s.logger.WithError(err).WithField("input", input).Warn("failed to probe duration, progress will not be reported")
		return 0
	}
	return duration
}

// run executes ffmpeg and reports time-based progress until it exits.
// ffmpeg writes to a temporary file next to output that is renamed over
// output only on success, so a failed run never touches existing files.
func (s *Service) run(ctx context.Context, input, output string, buildArgs func(in, out string) []string, duration float64, span model.Span, report task.Reporter) error {
	partial, err := createPartial(output)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			os.Remove(partial)
		}
	}()

	args := buildArgs(input, partial)
	cmd := exec.CommandContext(ctx, s.ffmpeg, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	s.logger.WithField("args", strings.Join(args, " ")).Debug("running ffmpeg")
	if err := cmd.Start(); err != nil {
		return &model.LaunchError{Tool: FFmpegCommand, Err: err}
	}

	// stderr must be drained before Wait closes the pipe
	var diag diagnostics
	scanner := bufio.NewScanner(stderr)
	scanner.Split(ScanLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		elapsed, ok := progress.ParseElapsed(line)
		if ok {
			if report != nil {
				report(model.ProgressEvent{
					Kind:     model.ProgressTimeRatio,
					Elapsed:  elapsed,
					Duration: duration,
					Span:     span,
				})
			}
			continue
		}
		if !progressKeyPattern.MatchString(line) {
			diag.add(line)
		}
	}
	if err := scanner.Err(); err != nil {
		s.logger.WithError(err).Debug("stopped reading ffmpeg output")
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &model.ToolError{
				Tool:        FFmpegCommand,
				ExitCode:    exitErr.ExitCode(),
				Diagnostics: diag.String(),
			}
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	if err := os.Rename(partial, output); err != nil {
		return fmt.Errorf("failed to move converted file into place: %w", err)
	}
	committed = true
	return nil
}

// createPartial reserves a hidden temporary file beside output that keeps
// output's extension, which ffmpeg uses to pick the container
func createPartial(output string) (string, error) {
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(filepath.Base(output), ext)
	file, err := os.CreateTemp(filepath.Dir(output), "."+base+".*.part"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary output: %w", err)
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to create temporary output: %w", err)
	}
	return name, nil
}

// samePath reports whether a and b name the same file
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
	infoA, errA := os.Stat(a)
	infoB, errB := os.Stat(b)
	return errA == nil && errB == nil && os.SameFile(infoA, infoB)
}

// BuildMP3Args builds the ffmpeg arguments for audio extraction to mp3
func BuildMP3Args(inputPath, outputPath string) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-vn",                // Drop video
		"-acodec", MP3Codec, // Audio codec
		"-q:a", MP3Quality, // VBR quality
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats", // No stats output
		outputPath, // Output file
	}
}

// BuildWAVArgs builds the ffmpeg arguments for speech-ready WAV output
func BuildWAVArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", WAVCodec,
		"-ar", WAVSampleRate,
		"-ac", WAVChannels,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// ScanLines is a bufio.SplitFunc that ends lines at either '\r' or '\n'.
// ffmpeg rewrites its stats line with carriage returns.
func ScanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// diagnostics keeps the last MaxDiagnosticLines non-progress lines
type diagnostics struct {
	lines []string
}

func (d *diagnostics) add(line string) {
	d.lines = append(d.lines, line)
	if len(d.lines) > MaxDiagnosticLines {
		d.lines = d.lines[len(d.lines)-MaxDiagnosticLines:]
	}
}

func (d *diagnostics) String() string {
	return strings.Join(d.lines, "\n")
}
