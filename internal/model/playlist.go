package model

// PlaylistEntry is a single video listed in a playlist
type PlaylistEntry struct {
	VideoID string
	Title   string
	URL     string
}

// Playlist is the resolved listing of a playlist URL. The runner only uses it
// to weight per-item progress; yt-dlp still performs the actual download.
type Playlist struct {
	ID      string
	Title   string
	URL     string
	Entries []PlaylistEntry
}

// Count returns the number of entries
func (p *Playlist) Count() int {
	if p == nil {
		return 0
	}
	return len(p.Entries)
}

// EntryTitle returns the title of the entry at index, or "" if out of range
func (p *Playlist) EntryTitle(index int) string {
	if p == nil || index < 0 || index >= len(p.Entries) {
		return ""
	}
	return p.Entries[index].Title
}

// ItemSpan returns the percentage window of the index-th item
func (p *Playlist) ItemSpan(index int) Span {
	n := p.Count()
	if n == 0 {
		return Span{}
	}
	if index >= n {
		index = n - 1
	}
	if index < 0 {
		index = 0
	}
	step := 100 / float64(n)
	return Span{From: float64(index) * step, To: float64(index+1) * step}
}
