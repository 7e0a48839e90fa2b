package model

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIntent_StringRoundTrip(t *testing.T) {
	for _, intent := range Intents() {
		parsed, err := ParseIntent(intent.String())
		if err != nil {
			t.Fatalf("ParseIntent(%q) returned error: %v", intent.String(), err)
		}
		if parsed != intent {
			t.Errorf("ParseIntent(%q) = %v, expected %v", intent.String(), parsed, intent)
		}
	}

	if _, err := ParseIntent("rip-dvd"); err == nil {
		t.Error("Expected error for unknown intent, got nil")
	}
	if Intent(42).Valid() {
		t.Error("Expected Intent(42) to be invalid")
	}
}

func TestTask_IsRemote(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"https://youtube.com/watch?v=123", true},
		{"HTTP://example.com/video.mp4", true},
		{"  https://youtu.be/abc", true},
		{"/home/user/video.mp4", false},
		{"C:\\Videos\\clip.mkv", false},
		{"httpfile.mp4", false},
		{"", false},
	}

	for _, test := range tests {
		task := Task{Source: test.source}
		if result := task.IsRemote(); result != test.expected {
			t.Errorf("IsRemote() with source=%q = %v, expected %v", test.source, result, test.expected)
		}
	}
}

func TestTaskState_Elapsed(t *testing.T) {
	state := &TaskState{}
	if state.Elapsed() != 0 {
		t.Errorf("Expected zero elapsed for unstarted task, got %v", state.Elapsed())
	}

	start := time.Now().Add(-3 * time.Second)
	state.StartedAt = start
	state.FinishedAt = start.Add(2 * time.Second)
	if state.Elapsed() != 2*time.Second {
		t.Errorf("Expected 2s elapsed, got %v", state.Elapsed())
	}
}

func TestFormatIDForLabel(t *testing.T) {
	id, ok := FormatIDForLabel("720p")
	if !ok || id != "136" {
		t.Errorf("FormatIDForLabel(720p) = %q, %v, expected 136, true", id, ok)
	}
	if _, ok := FormatIDForLabel("8k"); ok {
		t.Error("Expected unknown label to be rejected")
	}
}

func TestSpan_Map(t *testing.T) {
	tests := []struct {
		span     Span
		percent  float64
		expected float64
	}{
		{Span{}, 42, 42},
		{Span{From: 0, To: 50}, 100, 50},
		{Span{From: 40, To: 80}, 50, 60},
		{Span{From: 25, To: 50}, 0, 25},
	}

	for _, test := range tests {
		if result := test.span.Map(test.percent); result != test.expected {
			t.Errorf("Span%+v.Map(%v) = %v, expected %v", test.span, test.percent, result, test.expected)
		}
	}

	sub := Span{From: 40, To: 80}.Sub(0, 50)
	if sub.From != 40 || sub.To != 60 {
		t.Errorf("Sub(0, 50) = %+v, expected {40 60}", sub)
	}
}

func TestPlaylist_ItemSpan(t *testing.T) {
	p := &Playlist{Entries: make([]PlaylistEntry, 4)}

	last := -1.0
	for i := 0; i < p.Count(); i++ {
		span := p.ItemSpan(i)
		if span.From < last {
			t.Errorf("Item %d span %+v starts before previous end %v", i, span, last)
		}
		last = span.To
	}
	if last != 100 {
		t.Errorf("Expected last item to end at 100, got %v", last)
	}

	var empty *Playlist
	if !empty.ItemSpan(0).IsZero() {
		t.Error("Expected zero span for nil playlist")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains string
	}{
		{"launch", &LaunchError{Tool: "ffmpeg", Err: errors.New("executable file not found")}, "ffmpeg is not available"},
		{"tool", &ToolError{Tool: "ffmpeg", ExitCode: 1, Diagnostics: "Invalid data found"}, "Invalid data found"},
		{"recognition", RecognitionError(nil), "Could not understand the audio."},
		{"network", NetworkError(errors.New("dial tcp: timeout")), "service unreachable"},
		{"plain", errors.New("boom"), "Error: boom"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			msg := UserMessage(test.err)
			if !strings.HasPrefix(msg, "Error: ") {
				t.Errorf("Expected message to start with 'Error: ', got %q", msg)
			}
			if !strings.Contains(msg, test.contains) {
				t.Errorf("Expected message to contain %q, got %q", test.contains, msg)
			}
		})
	}

	if UserMessage(nil) != "" {
		t.Error("Expected empty message for nil error")
	}
}

func TestErrorKinds_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := error(&LaunchError{Tool: "yt-dlp", Err: cause})
	if !errors.Is(err, cause) {
		t.Error("Expected LaunchError to unwrap to its cause")
	}

	if !errors.Is(NetworkError(cause), ErrNetwork) {
		t.Error("Expected NetworkError to match ErrNetwork")
	}
	if !errors.Is(RecognitionError(cause), ErrRecognition) {
		t.Error("Expected RecognitionError to match ErrRecognition")
	}
}
