package platform

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ytget/ytdlp/v2"

	"github.com/ytget/video-downloader/internal/model"
)

// Timeout constants
const (
	DefaultPlaylistParseTimeout = 30 * time.Second
)

// URL parameters
const (
	PlaylistURLParam       = "list="
	PlaylistParamSeparator = "&"
)

// URL templates
const (
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// Playlist title constants
const (
	DefaultPlaylistTitle = "Untitled Playlist"
	PlaylistSuffix       = " Playlist"
	MinPrefixLength      = 10
)

// ListFunc fetches the entries of a playlist by its ID
type ListFunc func(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error)

// PlaylistResolver lists playlist entries so that download progress can be
// weighted per item
type PlaylistResolver struct {
	timeout time.Duration
	list    ListFunc
}

// NewPlaylistResolver creates a resolver backed by the ytdlp library
func NewPlaylistResolver() *PlaylistResolver {
	return &PlaylistResolver{
		timeout: DefaultPlaylistParseTimeout,
		list:    listWithLibrary,
	}
}

// SetTimeout sets the timeout for playlist listing
func (p *PlaylistResolver) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Resolve lists the playlist behind url
func (p *PlaylistResolver) Resolve(ctx context.Context, url string) (*model.Playlist, error) {
	playlistID, err := ExtractPlaylistID(url)
	if err != nil {
		return nil, err
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	entries, err := p.list(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	return &model.Playlist{
		ID:      playlistID,
		Title:   playlistTitle(entries),
		URL:     url,
		Entries: entries,
	}, nil
}

// ExtractPlaylistID extracts the playlist ID from a YouTube playlist URL.
// Supported forms:
// - https://www.youtube.com/watch?v=VIDEO_ID&list=PLAYLIST_ID&start_radio=1
// - https://www.youtube.com/playlist?list=PLAYLIST_ID
func ExtractPlaylistID(url string) (string, error) {
	if !strings.Contains(url, PlaylistURLParam) {
		return "", fmt.Errorf("URL does not contain playlist parameter: %s", url)
	}

	// Extract everything after list=
	playlistID := strings.SplitN(url, PlaylistURLParam, 2)[1]

	// Remove any additional parameters (everything after &)
	if idx := strings.Index(playlistID, PlaylistParamSeparator); idx >= 0 {
		playlistID = playlistID[:idx]
	}

	if playlistID == "" {
		return "", fmt.Errorf("empty playlist ID")
	}

	return playlistID, nil
}

// listWithLibrary fetches all playlist items through the ytdlp library
func listWithLibrary(ctx context.Context, playlistID string) ([]model.PlaylistEntry, error) {
	d := ytdlp.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]model.PlaylistEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, model.PlaylistEntry{
			VideoID: it.VideoID,
			Title:   it.Title,
			URL:     fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}
	return entries, nil
}

// playlistTitle derives a display title from the entry titles
func playlistTitle(entries []model.PlaylistEntry) string {
	if len(entries) == 0 {
		return DefaultPlaylistTitle
	}
	if len(entries) > 1 {
		prefix := commonPrefix(entries[0].Title, entries[1].Title)
		if utf8.RuneCountInString(prefix) > MinPrefixLength {
			return strings.TrimSpace(prefix) + PlaylistSuffix
		}
	}
	return entries[0].Title + PlaylistSuffix
}

// commonPrefix finds the common prefix between two strings, rune by rune
func commonPrefix(s1, s2 string) string {
	r1, r2 := []rune(s1), []rune(s2)
	minLen := min(len(r1), len(r2))
	for i := 0; i < minLen; i++ {
		if r1[i] != r2[i] {
			return string(r1[:i])
		}
	}
	return string(r1[:minLen])
}
