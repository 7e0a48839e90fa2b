package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-audio/wav"
	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/platform"
	"github.com/ytget/video-downloader/internal/task"
)

// Progress windows of the transcription stages
var (
	FetchSpan      = model.Span{From: 0, To: 40}
	ConvertSpan    = model.Span{From: 40, To: 80}
	LocalSpan      = model.Span{From: 0, To: 80}
	RecognizeStart = 80.0
)

// Output settings
const (
	TranscriptExtension = ".txt"
	WAVExtension        = ".wav"
	TempDirPattern      = "video-downloader-*"
	PreviewLength       = 60
)

// Errors returned before any external work starts
var (
	ErrNotConfigured     = errors.New("speech recognition is not configured (set VIDEODL_SPEECH_API_KEY or OPENAI_API_KEY)")
	ErrUnsupportedFormat = errors.New("unsupported file format, please provide a video, mp3, or wav file")
)

// AudioFetcher downloads the audio of a URL into dir
type AudioFetcher interface {
	FetchAudio(ctx context.Context, url, dir string, span model.Span, report task.Reporter) (string, error)
}

// WAVConverter converts media into speech-ready WAV
type WAVConverter interface {
	ToWAV(ctx context.Context, input, output string, span model.Span, report task.Reporter) error
}

// Config configures a Service
type Config struct {
	Fetcher    AudioFetcher
	Converter  WAVConverter
	Recognizer Recognizer // nil disables transcription
	TempDir    string     // parent of per-task work directories; empty means os.TempDir
	Logger     *logrus.Logger
}

// Service implements the transcription pipeline
type Service struct {
	cfg Config
}

// NewService creates a new transcription service
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Service{cfg: cfg}
}

// Execute transcribes t's source and writes <dest>/<base>.txt
func (s *Service) Execute(ctx context.Context, t model.Task, report task.Reporter) (task.Outcome, error) {
	if t.Intent != model.IntentTranscribe {
		return task.Outcome{}, fmt.Errorf("transcribe: unsupported intent %s", t.Intent)
	}
	if s.cfg.Recognizer == nil {
		return task.Outcome{}, ErrNotConfigured
	}
	if !t.IsRemote() && !platform.IsMediaFile(t.Source) {
		return task.Outcome{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(t.Source))
	}

	logger := s.cfg.Logger.WithField("task_id", t.ID)

	work, err := os.MkdirTemp(s.cfg.TempDir, TempDirPattern)
	if err != nil {
		return task.Outcome{}, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(work); err != nil {
			logger.WithError(err).Warn("failed to remove work directory")
		}
	}()

	source := t.Source
	convertSpan := LocalSpan
	if t.IsRemote() {
		report(model.ProgressEvent{Message: "Fetching audio..."})
		source, err = s.cfg.Fetcher.FetchAudio(ctx, t.Source, work, FetchSpan, report)
		if err != nil {
			return task.Outcome{}, err
		}
		convertSpan = ConvertSpan
	}

	wavPath := source
	if !strings.EqualFold(filepath.Ext(source), WAVExtension) {
		report(model.ProgressEvent{Message: "Converting audio..."})
		wavPath = filepath.Join(work, "audio"+WAVExtension)
		if err := s.cfg.Converter.ToWAV(ctx, source, wavPath, convertSpan, report); err != nil {
			return task.Outcome{}, err
		}
	}

	seconds, err := WAVDuration(wavPath)
	if err != nil {
		return task.Outcome{}, err
	}
	if seconds <= 0 {
		return task.Outcome{}, model.RecognitionError(errors.New("audio is empty"))
	}
	logger.WithField("seconds", seconds).Info("recognizing speech")

	report(model.ProgressEvent{
		Kind:    model.ProgressByteRatio,
		Total:   1,
		Span:    model.Span{From: RecognizeStart, To: model.FullSpan.To},
		Message: "Recognizing speech...",
	})

	text, err := s.cfg.Recognizer.Recognize(ctx, wavPath)
	if err != nil {
		return task.Outcome{}, err
	}

	output, err := WriteTranscript(t.Destination, platform.BaseName(source), text)
	if err != nil {
		return task.Outcome{}, err
	}

	return task.Outcome{
		OutputPath: output,
		Message:    fmt.Sprintf("%s %q", task.CompletionMessage(t.Intent), Preview(text, PreviewLength)),
	}, nil
}

// WAVDuration validates a WAV file and returns its length in seconds
func WAVDuration(path string) (float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return 0, model.RecognitionError(fmt.Errorf("invalid WAV file: %s", filepath.Base(path)))
	}

	duration, err := decoder.Duration()
	if err != nil {
		return 0, fmt.Errorf("failed to read WAV duration: %w", err)
	}
	return duration.Seconds(), nil
}

// WriteTranscript writes text to <dir>/<base>.txt and returns the path
func WriteTranscript(dir, base, text string) (string, error) {
	if err := platform.CreateDirectoryIfNotExists(dir); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, base+TranscriptExtension)
	if err := os.WriteFile(path, []byte(strings.TrimSpace(text)+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to write transcript: %w", err)
	}
	return path, nil
}

// Preview returns the first n runes of text on a single line
func Preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
