package model

// ProgressKind distinguishes byte counters from timestamp markers
type ProgressKind int

const (
	// ProgressByteRatio carries downloaded/total byte counters
	ProgressByteRatio ProgressKind = iota

	// ProgressTimeRatio carries elapsed/total media seconds
	ProgressTimeRatio
)

// Span is the percentage window a stage of a task maps into.
// The zero Span means the full 0..100 range.
type Span struct {
	From float64
	To   float64
}

// FullSpan covers the whole task
var FullSpan = Span{From: 0, To: 100}

// IsZero reports whether the span was left unset
func (s Span) IsZero() bool {
	return s.From == 0 && s.To == 0
}

// Map projects a 0..100 stage percentage into the span
func (s Span) Map(percent float64) float64 {
	if s.IsZero() {
		return percent
	}
	return s.From + percent*(s.To-s.From)/100
}

// Sub returns the part of s covering the given fraction window of it
func (s Span) Sub(from, to float64) Span {
	if s.IsZero() {
		s = FullSpan
	}
	return Span{From: s.Map(from), To: s.Map(to)}
}

// ProgressEvent is a raw progress report emitted by a media pipeline
type ProgressEvent struct {
	Kind ProgressKind

	// ProgressByteRatio
	Downloaded int64
	Total      int64

	// ProgressTimeRatio, in seconds
	Elapsed  float64
	Duration float64

	Span    Span
	Message string // optional status text to show with the update
}

// StatusUpdate is the UI-facing progress report for a task
type StatusUpdate struct {
	TaskID  string
	Intent  Intent
	Percent float64 // 0 to 100
	Message string
	Final   bool  // last update of the task
	Err     error // set on the final update of a failed task
}

// Failed returns true for the terminal update of a failed task
func (u StatusUpdate) Failed() bool {
	return u.Final && u.Err != nil
}
