package progress

import "sync"

// Tracker keeps the published percentage of one task non-decreasing
type Tracker struct {
	mu   sync.Mutex
	last float64
}

// Observe records p and returns the high-water mark
func (t *Tracker) Observe(p float64) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	p = clamp(p)
	if p > t.last {
		t.last = p
	}
	return t.last
}

// Last returns the highest percentage observed so far
func (t *Tracker) Last() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.last
}

// Reset starts over from zero
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.last = 0
	t.mu.Unlock()
}
