package main

import (
	"context"
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/config"
	"github.com/ytget/video-downloader/internal/convert"
	"github.com/ytget/video-downloader/internal/download"
	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/platform"
	"github.com/ytget/video-downloader/internal/status"
	"github.com/ytget/video-downloader/internal/task"
	"github.com/ytget/video-downloader/internal/transcribe"
	"github.com/ytget/video-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.video-downloader"
	AppName = "Video Downloader"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(cfg.LogLevel())
	logger.WithField("version", version).Infof("%s starting", AppName)

	if err := platform.CreateDirectoryIfNotExists(cfg.Output.Dir); err != nil {
		logger.WithError(err).WithField("dir", cfg.Output.Dir).Warn("failed to ensure output directory")
	}

	updates := status.NewChannel(cfg.Status.Buffer)
	runner := task.NewRunner(task.Config{
		Pipelines: buildPipelines(cfg, logger),
		Updates:   updates,
		Logger:    logger,
	})

	myApp := app.NewWithID(AppID)
	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(ui.WindowWidth, ui.WindowHeight))

	root := ui.NewRootUI(myWindow, runner, ui.Options{
		OutputDir: cfg.Output.Dir,
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	ui.Listen(ctx, updates, root.HandleUpdate)

	myWindow.SetOnClosed(func() {
		cancel()
		updates.Close()
	})

	myWindow.ShowAndRun()
}

// buildPipelines wires one media pipeline per intent
func buildPipelines(cfg config.Config, logger *logrus.Logger) map[model.Intent]task.Pipeline {
	downloadCfg := download.Config{
		Extractor: &download.YTDLP{
			Executable:  cfg.Tools.YTDLP,
			AutoInstall: cfg.Tools.AutoInstall,
			Logger:      logger,
		},
		ArchivePlaylists: cfg.Playlist.Archive,
		Logger:           logger,
	}
	if cfg.Playlist.Resolve {
		downloadCfg.Playlists = platform.NewPlaylistResolver()
	}
	downloader := download.NewService(downloadCfg)

	converter := convert.NewService(convert.Config{
		FFmpegPath:  cfg.Tools.FFmpeg,
		FFprobePath: cfg.Tools.FFprobe,
		Logger:      logger,
	})

	var recognizer transcribe.Recognizer
	if cfg.SpeechEnabled() {
		r, err := transcribe.NewOpenAIRecognizer(transcribe.RecognizerConfig{
			APIKey:   cfg.Speech.APIKey,
			BaseURL:  cfg.Speech.BaseURL,
			Model:    cfg.Speech.Model,
			Language: cfg.Speech.Language,
		})
		if err != nil {
			logger.WithError(err).Warn("speech recognition disabled")
		} else {
			recognizer = r
		}
	} else {
		logger.Info("speech recognition disabled: no API key configured")
	}

	transcriber := transcribe.NewService(transcribe.Config{
		Fetcher:    downloader,
		Converter:  converter,
		Recognizer: recognizer,
		Logger:     logger,
	})

	return map[model.Intent]task.Pipeline{
		model.IntentDownload:         downloader,
		model.IntentDownloadPlaylist: downloader,
		model.IntentExtractAudio:     task.BySource(downloader, converter),
		model.IntentTranscribe:       transcriber,
	}
}
