package download

import (
	"context"

	"github.com/ytget/video-downloader/internal/model"
)

// Hook statuses reported by yt-dlp
const (
	HookDownloading = "downloading"
	HookFinished    = "finished"
)

// Hook mirrors a yt-dlp progress hook payload
type Hook struct {
	Status          string
	DownloadedBytes int64
	TotalBytes      int64
	Filename        string
	Title           string
}

// Request describes one yt-dlp invocation
type Request struct {
	URL            string
	Format         string // empty means the tool default
	OutputTemplate string
	ExtractAudio   bool
	AudioFormat    string
	AudioQuality   string
	Playlist       bool
}

// Result lists what an invocation produced
type Result struct {
	Files  []string // files reported as finished, in order
	Stderr string
}

// LastFile returns the last finished file, or ""
func (r *Result) LastFile() string {
	if r == nil || len(r.Files) == 0 {
		return ""
	}
	return r.Files[len(r.Files)-1]
}

// Extractor runs the download tool
type Extractor interface {
	Extract(ctx context.Context, req Request, onHook func(Hook)) (*Result, error)
}

// PlaylistResolver lists playlist entries before a playlist download
type PlaylistResolver interface {
	Resolve(ctx context.Context, url string) (*model.Playlist, error)
}
