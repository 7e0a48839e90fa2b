package convert

// Package convert runs ffprobe and ffmpeg on local media: mp3 extraction for
// the audio intent and 16 kHz mono WAV output for text extraction. ffmpeg
// stderr is scanned for elapsed-time markers and reported as progress.
