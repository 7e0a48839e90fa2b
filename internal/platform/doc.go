package platform

// Package platform contains OS integration and read-only YouTube lookups:
// filesystem helpers, URL classification, reveal-in-file-manager, and
// playlist listing through github.com/ytget/ytdlp/v2.
