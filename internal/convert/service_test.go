package convert

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ytget/video-downloader/internal/model"
	"github.com/ytget/video-downloader/internal/progress"
)

const fakeFFprobe = `#!/bin/sh
echo 600
`

const fakeFFmpegOK = `#!/bin/sh
for last; do :; done
printf 'Input #0, mov,mp4, from input:\n' >&2
printf 'out_time_us=150000000\nprogress=continue\n' >&2
printf 'frame=  10 fps=0.0 q=-0.0 size=N/A time=00:05:00.00 bitrate=N/A\r' >&2
printf 'out_time_us=600000000\nprogress=end\n' >&2
echo data > "$last"
exit 0
`

const fakeFFmpegFail = `#!/bin/sh
for last; do :; done
echo partial > "$last"
printf 'out_time_us=60000000\n' >&2
printf '[mov,mp4 @ 0x1] moov atom not found\n' >&2
printf 'input.mp4: Invalid data found when processing input\n' >&2
exit 1
`

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func skipOnWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a POSIX shell")
	}
}

func newFakeService(t *testing.T, ffmpegBody string) (*Service, string) {
	t.Helper()
	skipOnWindows(t)
	bin := t.TempDir()
	return NewService(Config{
		FFmpegPath:  writeScript(t, bin, "ffmpeg", ffmpegBody),
		FFprobePath: writeScript(t, bin, "ffprobe", fakeFFprobe),
		Logger:      quietLogger(),
	}), bin
}

func TestNewServiceDefaults(t *testing.T) {
	service := NewService(Config{})

	if service.ffmpeg != FFmpegCommand {
		t.Errorf("Expected ffmpeg %q, got %q", FFmpegCommand, service.ffmpeg)
	}
	if service.ffprobe != FFprobeCommand {
		t.Errorf("Expected ffprobe %q, got %q", FFprobeCommand, service.ffprobe)
	}
}

func TestBuildMP3Args(t *testing.T) {
	args := BuildMP3Args("/input.mp4", "/output.mp3")

	expectedArgs := []string{
		"-y",
		"-i", "/input.mp4",
		"-vn",
		"-acodec", "libmp3lame",
		"-q:a", "2",
		"-progress", "pipe:2",
		"-nostats",
		"/output.mp3",
	}

	if len(args) != len(expectedArgs) {
		t.Fatalf("Expected %d args, got %d", len(expectedArgs), len(args))
	}

	for i, expected := range expectedArgs {
		if args[i] != expected {
			t.Errorf("Arg %d: expected %s, got %s", i, expected, args[i])
		}
	}
}

func TestBuildWAVArgs(t *testing.T) {
	args := strings.Join(BuildWAVArgs("/in.mp3", "/out.wav"), " ")

	for _, want := range []string{"-acodec pcm_s16le", "-ar 16000", "-ac 1", "-i /in.mp3"} {
		if !strings.Contains(args, want) {
			t.Errorf("Expected args to contain %q, got %q", want, args)
		}
	}
	if !strings.HasSuffix(args, "/out.wav") {
		t.Errorf("Expected output path last, got %q", args)
	}
}

func TestScanLines(t *testing.T) {
	input := "first\rsecond\r\nthird\nlast"
	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Split(ScanLines)

	var lines []string
	for scanner.Scan() {
		if scanner.Text() != "" {
			lines = append(lines, scanner.Text())
		}
	}

	expected := []string{"first", "second", "third", "last"}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, lines)
	}
	for i := range expected {
		if lines[i] != expected[i] {
			t.Errorf("Line %d: expected %q, got %q", i, expected[i], lines[i])
		}
	}
}

func TestDiagnosticsKeepsTail(t *testing.T) {
	var d diagnostics
	for i := 0; i < MaxDiagnosticLines+5; i++ {
		d.add(string(rune('a' + i)))
	}

	if len(d.lines) != MaxDiagnosticLines {
		t.Fatalf("Expected %d lines, got %d", MaxDiagnosticLines, len(d.lines))
	}
	if d.lines[0] != "f" {
		t.Errorf("Expected oldest kept line 'f', got %q", d.lines[0])
	}
}

func TestProbeDuration(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegOK)

	duration, err := service.ProbeDuration(context.Background(), "/any/input.mp4")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if duration != 600 {
		t.Errorf("Expected 600, got %v", duration)
	}
}

func TestProbeDurationMissingTool(t *testing.T) {
	service := NewService(Config{FFprobePath: filepath.Join(t.TempDir(), "missing-ffprobe"), Logger: quietLogger()})

	_, err := service.ProbeDuration(context.Background(), "/any/input.mp4")

	var launchErr *model.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("Expected LaunchError, got %v", err)
	}
}

func TestExtractAudioReportsProgress(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegOK)
	dest := filepath.Join(t.TempDir(), "out")

	var percents []float64
	output, err := service.ExtractAudio(context.Background(), "/videos/My Clip.mp4", dest, model.Span{}, func(ev model.ProgressEvent) {
		if p, ok := progress.Parse(ev); ok {
			percents = append(percents, p)
		}
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if output != filepath.Join(dest, "My Clip.mp3") {
		t.Errorf("Expected output %q, got %q", filepath.Join(dest, "My Clip.mp3"), output)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("Expected output file to exist: %v", err)
	}

	expected := []float64{25, 50, 100}
	if len(percents) != len(expected) {
		t.Fatalf("Expected percents %v, got %v", expected, percents)
	}
	for i := range expected {
		if percents[i] != expected[i] {
			t.Errorf("Event %d: expected %v, got %v", i, expected[i], percents[i])
		}
	}
}

func TestExtractAudioFailure(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegFail)
	dest := t.TempDir()

	_, err := service.ExtractAudio(context.Background(), "/videos/input.mp4", dest, model.Span{}, func(model.ProgressEvent) {})

	var toolErr *model.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("Expected ToolError, got %v", err)
	}
	if toolErr.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", toolErr.ExitCode)
	}
	if !strings.Contains(toolErr.Diagnostics, "Invalid data found") {
		t.Errorf("Expected diagnostics to carry the ffmpeg error, got %q", toolErr.Diagnostics)
	}
	if strings.Contains(toolErr.Diagnostics, "out_time_us") {
		t.Errorf("Expected progress lines to be excluded, got %q", toolErr.Diagnostics)
	}
	if _, err := os.Stat(filepath.Join(dest, "input.mp3")); !os.IsNotExist(err) {
		t.Error("Expected partial output to be removed")
	}
}

const fakeFFmpegSameFile = `#!/bin/sh
printf 'Output #0 same as Input #0 - exiting\n' >&2
exit 1
`

func TestExtractAudioRefusesToOverwriteSource(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegSameFile)
	dir := t.TempDir()
	source := filepath.Join(dir, "song.mp3")
	if err := os.WriteFile(source, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := service.ExtractAudio(context.Background(), source, dir, model.Span{}, nil)
	if !errors.Is(err, ErrSameFile) {
		t.Fatalf("Expected ErrSameFile, got %v", err)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		t.Fatalf("Expected source to survive, got %v", err)
	}
	if string(data) != "original" {
		t.Errorf("Expected source content to be unchanged, got %q", data)
	}

	// a relative spelling of the same directory is the same file too
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if rel, err := filepath.Rel(wd, dir); err == nil {
		if _, err := service.ExtractAudio(context.Background(), source, rel, model.Span{}, nil); !errors.Is(err, ErrSameFile) {
			t.Errorf("Expected ErrSameFile for relative destination, got %v", err)
		}
	}
}

func TestExtractAudioFailureKeepsExistingOutput(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegFail)
	dest := t.TempDir()
	existing := filepath.Join(dest, "input.mp3")
	if err := os.WriteFile(existing, []byte("earlier conversion"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := service.ExtractAudio(context.Background(), "/videos/input.mp4", dest, model.Span{}, nil); err == nil {
		t.Fatal("Expected conversion to fail")
	}

	data, err := os.ReadFile(existing)
	if err != nil {
		t.Fatalf("Expected existing output to survive, got %v", err)
	}
	if string(data) != "earlier conversion" {
		t.Errorf("Expected existing output to be unchanged, got %q", data)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected no temporary files left behind, got %v", names)
	}
}

func TestExtractAudioReplacesOutputOnSuccess(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegOK)
	dest := t.TempDir()
	existing := filepath.Join(dest, "clip.mp3")
	if err := os.WriteFile(existing, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := service.ExtractAudio(context.Background(), "/videos/clip.mp4", dest, model.Span{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "data" {
		t.Errorf("Expected new conversion to replace the stale file, got %q", data)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the converted file in %s, got %d entries", dest, len(entries))
	}
}

func TestExtractAudioUnknownDuration(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	service := NewService(Config{
		FFmpegPath:  writeScript(t, bin, "ffmpeg", fakeFFmpegOK),
		FFprobePath: filepath.Join(bin, "missing-ffprobe"),
		Logger:      quietLogger(),
	})

	reported := 0
	_, err := service.ExtractAudio(context.Background(), "/videos/a.mp4", t.TempDir(), model.Span{}, func(ev model.ProgressEvent) {
		if _, ok := progress.Parse(ev); ok {
			reported++
		}
	})
	if err != nil {
		t.Fatalf("Expected conversion to continue without duration, got %v", err)
	}
	if reported != 0 {
		t.Errorf("Expected no percentages without a duration, got %d", reported)
	}
}

func TestExtractAudioMissingFFmpeg(t *testing.T) {
	skipOnWindows(t)
	bin := t.TempDir()
	service := NewService(Config{
		FFmpegPath:  filepath.Join(bin, "missing-ffmpeg"),
		FFprobePath: writeScript(t, bin, "ffprobe", fakeFFprobe),
		Logger:      quietLogger(),
	})

	_, err := service.ExtractAudio(context.Background(), "/videos/a.mp4", t.TempDir(), model.Span{}, nil)

	var launchErr *model.LaunchError
	if !errors.As(err, &launchErr) {
		t.Fatalf("Expected LaunchError, got %v", err)
	}
	if !strings.Contains(model.UserMessage(err), "ffmpeg is not available") {
		t.Errorf("Unexpected user message %q", model.UserMessage(err))
	}
}

func TestToWAVWithSpan(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegOK)
	output := filepath.Join(t.TempDir(), "audio.wav")

	var last float64
	err := service.ToWAV(context.Background(), "/in.mp3", output, model.Span{From: 40, To: 80}, func(ev model.ProgressEvent) {
		if p, ok := progress.Parse(ev); ok {
			last = p
		}
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if last != 80 {
		t.Errorf("Expected progress to end at span top 80, got %v", last)
	}
}

func TestExecuteLocalFile(t *testing.T) {
	service, _ := newFakeService(t, fakeFFmpegOK)
	dest := t.TempDir()

	outcome, err := service.Execute(context.Background(), model.Task{
		Source:      "/videos/song.mkv",
		Intent:      model.IntentExtractAudio,
		Destination: dest,
	}, func(model.ProgressEvent) {})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome.OutputPath != filepath.Join(dest, "song.mp3") {
		t.Errorf("Unexpected output %q", outcome.OutputPath)
	}
	// the fake output is not a decodable mp3, so the default message is used
	if outcome.Message != "" {
		t.Errorf("Expected empty message, got %q", outcome.Message)
	}

	if _, err := service.Execute(context.Background(), model.Task{Intent: model.IntentTranscribe}, nil); err == nil {
		t.Error("Expected error for unsupported intent")
	}
}

func TestMP3DurationRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mp3")
	if err := os.WriteFile(path, []byte("not an mp3 file"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := MP3Duration(path); err == nil {
		t.Error("Expected error for invalid mp3")
	}
	if _, err := MP3Duration(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("Expected error for missing file")
	}
}
