package task

import (
	"fmt"

	"github.com/ytget/video-downloader/internal/model"
)

// StartMessage is the status text shown when t is accepted
func StartMessage(t model.Task) string {
	switch t.Intent {
	case model.IntentDownload:
		if t.FormatID != "" {
			return fmt.Sprintf("Starting download for format %s...", t.FormatID)
		}
		return "Downloading video..."
	case model.IntentExtractAudio:
		if t.IsRemote() {
			return "Converting from URL..."
		}
		return "Converting from file..."
	case model.IntentTranscribe:
		return "Extracting text..."
	case model.IntentDownloadPlaylist:
		return "Downloading playlist..."
	default:
		return "Starting..."
	}
}

// CompletionMessage is the status text shown when a task of the given intent
// succeeds and its pipeline did not supply one
func CompletionMessage(intent model.Intent) string {
	switch intent {
	case model.IntentDownload:
		return "Download complete!"
	case model.IntentExtractAudio:
		return "MP3 Conversion complete!"
	case model.IntentTranscribe:
		return "Transcription complete!"
	case model.IntentDownloadPlaylist:
		return "Playlist download complete!"
	default:
		return "Done!"
	}
}
