package download

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/platform"
	"github.com/ytget/video-downloader/internal/task"
)

// Output templates, relative to the task destination
const (
	VideoTemplate    = "%(title)s.%(ext)s"
	PlaylistTemplate = "%(playlist_title)s"
)

// yt-dlp selectors and audio settings
const (
	BestAudioSuffix  = "+bestaudio/best"
	AudioFormat      = "bestaudio/best"
	AudioCodec       = "mp3"
	AudioBitrateKbps = "192"
)

// Config configures a Service
type Config struct {
	Extractor Extractor
	Playlists PlaylistResolver // optional
	// ArchivePlaylists zips each downloaded playlist folder next to itself
	ArchivePlaylists bool
	Logger           *logrus.Logger
}

// Service implements the download pipelines
type Service struct {
	extractor Extractor
	playlists PlaylistResolver
	archive   bool
	logger    *logrus.Logger
}

// NewService creates a new download service
func NewService(cfg Config) *Service {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Extractor == nil {
		cfg.Extractor = &YTDLP{Logger: cfg.Logger}
	}
	return &Service{
		extractor: cfg.Extractor,
		playlists: cfg.Playlists,
		archive:   cfg.ArchivePlaylists,
		logger:    cfg.Logger,
	}
}

// Execute runs the download pipeline for t's intent
func (s *Service) Execute(ctx context.Context, t model.Task, report task.Reporter) (task.Outcome, error) {
	switch t.Intent {
	case model.IntentDownload:
		return s.downloadVideo(ctx, t, report)
	case model.IntentExtractAudio:
		return s.downloadAudio(ctx, t, report)
	case model.IntentDownloadPlaylist:
		return s.downloadPlaylist(ctx, t, report)
	default:
		return task.Outcome{}, fmt.Errorf("download: unsupported intent %s", t.Intent)
	}
}

// FetchAudio downloads the best audio stream of url into dir without
// transcoding and returns the file path. Progress is mapped into span.
func (s *Service) FetchAudio(ctx context.Context, url, dir string, span model.Span, report task.Reporter) (string, error) {
	req := Request{
		URL:            url,
		Format:         AudioFormat,
		OutputTemplate: filepath.Join(dir, VideoTemplate),
	}

	res, err := s.extractor.Extract(ctx, req, byteProgress(span, report))
	if err != nil {
		return "", err
	}

	path := res.LastFile()
	if path == "" {
		return "", fmt.Errorf("%s reported no output file for %s", ToolName, url)
	}
	return path, nil
}

// downloadVideo downloads a single video into the destination
func (s *Service) downloadVideo(ctx context.Context, t model.Task, report task.Reporter) (task.Outcome, error) {
	req := Request{
		URL:            t.Source,
		Format:         VideoFormatSelector(t),
		OutputTemplate: filepath.Join(t.Destination, VideoTemplate),
	}

	res, err := s.extractor.Extract(ctx, req, byteProgress(model.Span{}, report))
	if err != nil {
		return task.Outcome{}, err
	}
	return task.Outcome{OutputPath: res.LastFile()}, nil
}

// downloadAudio downloads a URL and converts it to mp3 with yt-dlp
func (s *Service) downloadAudio(ctx context.Context, t model.Task, report task.Reporter) (task.Outcome, error) {
	if !t.IsRemote() {
		return task.Outcome{}, fmt.Errorf("download: %q is not a URL", t.Source)
	}

	req := Request{
		URL:            t.Source,
		Format:         AudioFormat,
		OutputTemplate: filepath.Join(t.Destination, VideoTemplate),
		ExtractAudio:   true,
		AudioFormat:    AudioCodec,
		AudioQuality:   AudioBitrateKbps,
	}

	res, err := s.extractor.Extract(ctx, req, byteProgress(model.Span{}, report))
	if err != nil {
		return task.Outcome{}, err
	}

	output := res.LastFile()
	if output != "" {
		// the hook reports the pre-conversion file
		output = strings.TrimSuffix(output, filepath.Ext(output)) + "." + AudioCodec
	}
	return task.Outcome{OutputPath: output}, nil
}

// downloadPlaylist downloads every item of a playlist into a directory named
// after it. When the item count is known, each item gets an equal share of
// the progress bar.
func (s *Service) downloadPlaylist(ctx context.Context, t model.Task, report task.Reporter) (task.Outcome, error) {
	logger := s.logger.WithField("task_id", t.ID)

	var playlist *model.Playlist
	if s.playlists != nil {
		p, err := s.playlists.Resolve(ctx, t.Source)
		if err != nil {
			logger.WithError(err).Warn("playlist listing failed, progress will not be weighted per item")
		} else {
			playlist = p
			logger.WithField("items", p.Count()).Info("playlist resolved")
		}
	}

	req := Request{
		URL:            t.Source,
		OutputTemplate: filepath.Join(t.Destination, PlaylistTemplate, VideoTemplate),
		Playlist:       true,
	}

	var (
		index     int
		seen      int
		announced = -1
		title     string
		advance   bool
	)
	onHook := func(h Hook) {
		// merged formats finish more than once per item, so a new item
		// starts at the first hook after a finish that carries another title
		if advance && (h.Title == "" || h.Title != title) {
			index++
			advance = false
		}
		if h.Title != "" {
			title = h.Title
		}
		seen = index + 1

		ev := model.ProgressEvent{
			Kind:       model.ProgressByteRatio,
			Downloaded: h.DownloadedBytes,
			Total:      h.TotalBytes,
			Span:       playlist.ItemSpan(index),
		}
		if n := playlist.Count(); n > 0 && index != announced && index < n {
			name := playlist.EntryTitle(index)
			if name == "" {
				name = h.Title
			}
			ev.Message = fmt.Sprintf("Downloading %d/%d: %s", index+1, n, name)
			announced = index
		}
		report(ev)

		if h.Status == HookFinished {
			advance = true
		}
	}

	res, err := s.extractor.Extract(ctx, req, onHook)
	if err != nil {
		return task.Outcome{}, err
	}

	outcome := task.Outcome{OutputPath: t.Destination}
	last := res.LastFile()
	if last != "" {
		outcome.OutputPath = filepath.Dir(last)
	}
	if seen > 0 {
		outcome.Message = fmt.Sprintf("%s (%d videos)", task.CompletionMessage(t.Intent), seen)
		if playlist != nil && playlist.Title != "" {
			outcome.Message = fmt.Sprintf("%s %q (%d videos)", task.CompletionMessage(t.Intent), playlist.Title, seen)
		}
	}

	// only a folder yt-dlp reported is archived, never the destination itself
	if s.archive && last != "" {
		report(model.ProgressEvent{Message: "Archiving playlist..."})
		archive, err := platform.ZipDir(ctx, outcome.OutputPath)
		if err != nil {
			return task.Outcome{}, fmt.Errorf("failed to archive playlist: %w", err)
		}
		logger.WithField("archive", archive).Info("playlist archived")
		outcome.OutputPath = archive
		if outcome.Message != "" {
			outcome.Message += ", archived to " + filepath.Base(archive)
		}
	}
	return outcome, nil
}

// VideoFormatSelector returns the yt-dlp format expression for t. YouTube
// URLs with a chosen format get the best audio merged in; anything else uses
// the tool default.
func VideoFormatSelector(t model.Task) string {
	if t.FormatID == "" || !platform.IsYouTubeURL(t.Source) {
		return ""
	}
	return t.FormatID + BestAudioSuffix
}

// byteProgress forwards hook byte counters to report within span
func byteProgress(span model.Span, report task.Reporter) func(Hook) {
	return func(h Hook) {
		report(model.ProgressEvent{
			Kind:       model.ProgressByteRatio,
			Downloaded: h.DownloadedBytes,
			Total:      h.TotalBytes,
			Span:       span,
		})
	}
}
