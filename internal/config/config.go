package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ytget/video-downloader/internal/platform"
)

// EnvPrefix is prepended to every environment variable, e.g. VIDEODL_OUTPUT_DIR
const EnvPrefix = "VIDEODL"

// AppDirName is the directory searched under the user config dir
const AppDirName = "video-downloader"

// Default values
const (
	DefaultStatusBuffer = 64
	DefaultSpeechModel  = "whisper-1"
	DefaultLogLevel     = "info"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Output struct {
		Dir string
	}
	Tools struct {
		YTDLP       string `mapstructure:"ytdlp"`
		FFmpeg      string
		FFprobe     string
		AutoInstall bool `mapstructure:"auto_install"`
	}
	Speech struct {
		APIKey   string `mapstructure:"api_key"`
		BaseURL  string `mapstructure:"base_url"`
		Model    string
		Language string
	}
	Status struct {
		Buffer int
	}
	Playlist struct {
		Resolve bool
		Archive bool
	}
	Log struct {
		Level string
	}
}

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory or the user config directory.
func Load() (Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, AppDirName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

// LoadFile reads configuration from an explicit file plus the environment
func LoadFile(path string) (Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return decode(v)
}

// LogLevel returns the parsed log level
func (c Config) LogLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// SpeechEnabled reports whether a speech recognition key is configured
func (c Config) SpeechEnabled() bool {
	return c.Speech.APIKey != ""
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// OPENAI_API_KEY is honored when no prefixed key is set
	_ = v.BindEnv("speech.api_key", EnvPrefix+"_SPEECH_API_KEY", "OPENAI_API_KEY")

	v.SetDefault("output.dir", defaultOutputDir())
	v.SetDefault("tools.ytdlp", "")
	v.SetDefault("tools.ffmpeg", "ffmpeg")
	v.SetDefault("tools.ffprobe", "ffprobe")
	v.SetDefault("tools.auto_install", false)
	v.SetDefault("speech.api_key", "")
	v.SetDefault("speech.base_url", "")
	v.SetDefault("speech.model", DefaultSpeechModel)
	v.SetDefault("speech.language", "")
	v.SetDefault("status.buffer", DefaultStatusBuffer)
	v.SetDefault("playlist.resolve", true)
	v.SetDefault("playlist.archive", false)
	v.SetDefault("log.level", DefaultLogLevel)
	return v
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Status.Buffer <= 0 {
		cfg.Status.Buffer = DefaultStatusBuffer
	}
	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q: %w", cfg.Log.Level, err)
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = defaultOutputDir()
	}

	return cfg, nil
}

func defaultOutputDir() string {
	dir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "downloads")
	}
	return dir
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
