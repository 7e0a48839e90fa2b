// Package progress turns raw progress reports of external media tools into
// bounded percentages. Parsing is best-effort: malformed input yields "no
// update" and never an error for the caller to handle.
package progress

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ytget/video-downloader/internal/model"
)

// Markers found in ffmpeg diagnostic output
const (
	TimeMarker      = "time="
	OutTimeUSMarker = "out_time_us="
)

// MaxPercent is the upper clamp for every computed percentage
const MaxPercent = 100.0

// ByteRatio converts byte counters into a percentage.
// Unknown or non-positive totals yield no update.
func ByteRatio(downloaded, total int64) (float64, bool) {
	if total <= 0 || downloaded < 0 {
		return 0, false
	}
	return clamp(float64(downloaded) / float64(total) * 100), true
}

// TimeRatio converts elapsed media time into a percentage of duration.
// A zero or unknown duration yields no update.
func TimeRatio(elapsed, duration float64) (float64, bool) {
	if duration <= 0 || math.IsNaN(duration) || math.IsInf(duration, 0) {
		return 0, false
	}
	if elapsed < 0 || math.IsNaN(elapsed) {
		return 0, false
	}
	return clamp(elapsed / duration * 100), true
}

// ParseClock parses an ffmpeg timestamp such as "01:02:03.45" into seconds.
func ParseClock(value string) (float64, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 3 || strings.HasPrefix(value, "-") {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid hours in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minutes in %q", value)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 || math.IsNaN(seconds) {
		return 0, fmt.Errorf("invalid seconds in %q", value)
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, nil
}

// ParseElapsed extracts the elapsed media time in seconds from an ffmpeg
// diagnostic line. Both the stats form ("time=00:01:02.50") and the
// -progress form ("out_time_us=62500000") are understood.
func ParseElapsed(line string) (float64, bool) {
	if idx := strings.Index(line, OutTimeUSMarker); idx >= 0 {
		field := firstField(line[idx+len(OutTimeUSMarker):])
		us, err := strconv.ParseInt(field, 10, 64)
		if err != nil || us < 0 {
			return 0, false
		}
		return float64(us) / 1e6, true
	}

	idx := strings.Index(line, TimeMarker)
	if idx < 0 {
		return 0, false
	}
	// out_time= in -progress output also contains "time="; it carries the same clock
	seconds, err := ParseClock(firstField(line[idx+len(TimeMarker):]))
	if err != nil {
		return 0, false
	}
	return seconds, true
}

// ParseTimeLine extracts a percentage from an ffmpeg diagnostic line given
// the probed total duration in seconds.
func ParseTimeLine(line string, duration float64) (float64, bool) {
	elapsed, ok := ParseElapsed(line)
	if !ok {
		return 0, false
	}
	return TimeRatio(elapsed, duration)
}

// Parse normalizes a pipeline event into the task-wide percentage
func Parse(ev model.ProgressEvent) (float64, bool) {
	var (
		percent float64
		ok      bool
	)

	switch ev.Kind {
	case model.ProgressByteRatio:
		percent, ok = ByteRatio(ev.Downloaded, ev.Total)
	case model.ProgressTimeRatio:
		percent, ok = TimeRatio(ev.Elapsed, ev.Duration)
	}
	if !ok {
		return 0, false
	}
	return clamp(ev.Span.Map(percent)), true
}

// Clock formats seconds as HH:MM:SS, or MM:SS below one hour
func Clock(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

func firstField(s string) string {
	s = strings.TrimLeft(s, " ")
	if end := strings.IndexAny(s, " \t\r\n"); end >= 0 {
		return s[:end]
	}
	return s
}

func clamp(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > MaxPercent {
		return MaxPercent
	}
	return p
}
