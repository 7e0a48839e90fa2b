package transcribe

// Package transcribe extracts spoken text from local media or URLs. Audio is
// fetched with yt-dlp when needed, converted to 16 kHz mono WAV with ffmpeg,
// and sent to a speech recognizer. The transcript is written next to the
// other task outputs as <base>.txt.
