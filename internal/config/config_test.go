package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

// isolate points HOME and the config dirs at a temp dir and clears overrides
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, key := range []string{
		"OPENAI_API_KEY",
		"VIDEODL_OUTPUT_DIR",
		"VIDEODL_SPEECH_API_KEY",
		"VIDEODL_STATUS_BUFFER",
		"VIDEODL_LOG_LEVEL",
		"VIDEODL_TOOLS_AUTO_INSTALL",
		"VIDEODL_PLAYLIST_RESOLVE",
		"VIDEODL_PLAYLIST_ARCHIVE",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Output.Dir != filepath.Join(home, "Downloads") {
		t.Errorf("Expected output dir in home Downloads, got %s", cfg.Output.Dir)
	}
	if cfg.Tools.FFmpeg != "ffmpeg" || cfg.Tools.FFprobe != "ffprobe" {
		t.Errorf("Expected default tool names, got %q and %q", cfg.Tools.FFmpeg, cfg.Tools.FFprobe)
	}
	if cfg.Tools.AutoInstall {
		t.Error("Expected auto install to be off by default")
	}
	if cfg.Status.Buffer != DefaultStatusBuffer {
		t.Errorf("Expected buffer %d, got %d", DefaultStatusBuffer, cfg.Status.Buffer)
	}
	if !cfg.Playlist.Resolve {
		t.Error("Expected playlist resolve to be on by default")
	}
	if cfg.Playlist.Archive {
		t.Error("Expected playlist archive to be off by default")
	}
	if cfg.Speech.Model != DefaultSpeechModel {
		t.Errorf("Expected speech model %s, got %s", DefaultSpeechModel, cfg.Speech.Model)
	}
	if cfg.SpeechEnabled() {
		t.Error("Expected speech to be disabled without a key")
	}
	if cfg.LogLevel() != logrus.InfoLevel {
		t.Errorf("Expected info level, got %v", cfg.LogLevel())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("VIDEODL_OUTPUT_DIR", "/data/videos")
	t.Setenv("VIDEODL_TOOLS_AUTO_INSTALL", "true")
	t.Setenv("VIDEODL_STATUS_BUFFER", "8")
	t.Setenv("VIDEODL_LOG_LEVEL", "debug")
	t.Setenv("VIDEODL_PLAYLIST_RESOLVE", "false")
	t.Setenv("VIDEODL_PLAYLIST_ARCHIVE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Output.Dir != "/data/videos" {
		t.Errorf("Expected /data/videos, got %s", cfg.Output.Dir)
	}
	if !cfg.Tools.AutoInstall {
		t.Error("Expected auto install from env")
	}
	if cfg.Status.Buffer != 8 {
		t.Errorf("Expected buffer 8, got %d", cfg.Status.Buffer)
	}
	if cfg.LogLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %v", cfg.LogLevel())
	}
	if cfg.Playlist.Resolve {
		t.Error("Expected playlist resolve disabled from env")
	}
	if !cfg.Playlist.Archive {
		t.Error("Expected playlist archive enabled from env")
	}
}

func TestSpeechKeyFallback(t *testing.T) {
	tests := []struct {
		name     string
		prefixed string
		openai   string
		expected string
	}{
		{"openai only", "", "sk-openai", "sk-openai"},
		{"prefixed wins", "sk-prefixed", "sk-openai", "sk-prefixed"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv("VIDEODL_SPEECH_API_KEY", tt.prefixed)
			t.Setenv("OPENAI_API_KEY", tt.openai)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if cfg.Speech.APIKey != tt.expected {
				t.Errorf("Expected key %q, got %q", tt.expected, cfg.Speech.APIKey)
			}
			if cfg.SpeechEnabled() != (tt.expected != "") {
				t.Errorf("Unexpected SpeechEnabled %v", cfg.SpeechEnabled())
			}
		})
	}
}

func TestLoadNonPositiveBuffer(t *testing.T) {
	isolate(t)
	t.Setenv("VIDEODL_STATUS_BUFFER", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Status.Buffer != DefaultStatusBuffer {
		t.Errorf("Expected buffer reset to %d, got %d", DefaultStatusBuffer, cfg.Status.Buffer)
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	isolate(t)
	t.Setenv("VIDEODL_LOG_LEVEL", "chatty")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid log level")
	}
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `output:
  dir: /srv/media
tools:
  ytdlp: /opt/bin/yt-dlp
  ffmpeg: /opt/bin/ffmpeg
speech:
  model: whisper-large
  language: en
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Output.Dir != "/srv/media" {
		t.Errorf("Expected /srv/media, got %s", cfg.Output.Dir)
	}
	if cfg.Tools.YTDLP != "/opt/bin/yt-dlp" {
		t.Errorf("Expected yt-dlp path from file, got %s", cfg.Tools.YTDLP)
	}
	if cfg.Tools.FFprobe != "ffprobe" {
		t.Errorf("Expected default ffprobe, got %s", cfg.Tools.FFprobe)
	}
	if cfg.Speech.Model != "whisper-large" || cfg.Speech.Language != "en" {
		t.Errorf("Unexpected speech settings %+v", cfg.Speech)
	}

	t.Setenv("VIDEODL_OUTPUT_DIR", "/env/wins")
	cfg, err = LoadFile(path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Output.Dir != "/env/wins" {
		t.Errorf("Expected environment to override file, got %s", cfg.Output.Dir)
	}
}

func TestLoadFileMissing(t *testing.T) {
	isolate(t)
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing config file")
	}
}
