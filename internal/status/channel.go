// Package status carries StatusUpdate values from worker goroutines to the
// single goroutine that renders them. Any UI toolkit can drain it, either by
// polling with Drain or by running Dispatch.
package status

import (
	"context"
	"sync"

	"github.com/ytget/video-downloader/internal/model"
)

// DefaultBufferSize is used when NewChannel is given a non-positive size
const DefaultBufferSize = 64

// Channel is a bounded, goroutine-safe queue of status updates
type Channel struct {
	updates chan model.StatusUpdate
	done    chan struct{}
	once    sync.Once
}

// NewChannel creates a channel holding at most size pending updates
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Channel{
		updates: make(chan model.StatusUpdate, size),
		done:    make(chan struct{}),
	}
}

// Publish queues u. It may be called from any goroutine and blocks while the
// queue is full. It returns false if the channel has been closed.
func (c *Channel) Publish(u model.StatusUpdate) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.updates <- u:
		return true
	case <-c.done:
		return false
	}
}

// Updates exposes the receive side for callers with their own select loop
func (c *Channel) Updates() <-chan model.StatusUpdate {
	return c.updates
}

// Drain delivers every update queued right now to fn and returns how many
// were delivered. It never blocks waiting for new updates.
func (c *Channel) Drain(fn func(model.StatusUpdate)) int {
	n := 0
	for {
		select {
		case u := <-c.updates:
			fn(u)
			n++
		default:
			return n
		}
	}
}

// Dispatch delivers updates to fn until ctx is done or the channel is closed.
// Updates still queued at close time are delivered before returning.
func (c *Channel) Dispatch(ctx context.Context, fn func(model.StatusUpdate)) {
	for {
		select {
		case u := <-c.updates:
			fn(u)
		case <-c.done:
			c.Drain(fn)
			return
		case <-ctx.Done():
			return
		}
	}
}

// Close stops accepting updates. It is safe to call more than once.
func (c *Channel) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Closed reports whether Close has been called
func (c *Channel) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
