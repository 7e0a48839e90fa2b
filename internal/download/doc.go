package download

// Package download runs yt-dlp (via github.com/lrstanley/go-ytdlp) for video,
// audio-from-URL and playlist tasks, and turns its progress hooks into
// byte-ratio progress events for the task runner.
