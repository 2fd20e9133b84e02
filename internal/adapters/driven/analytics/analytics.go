// Package analytics provides a fire-and-forget event capturer.
//
// Events are queued on a buffered channel and drained by a single goroutine,
// so capture never blocks a request. When the buffer is full the event is
// dropped rather than applying backpressure.
package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oswaldlabs/sitechat/internal/core/ports/driven"
	"github.com/oswaldlabs/sitechat/internal/logger"
)

// Ensure Capturer implements the interface.
var _ driven.Analytics = (*Capturer)(nil)

// DefaultBufferSize is the event queue capacity when none is configured.
const DefaultBufferSize = 256

// Event is a single captured analytics event.
type Event struct {
	ID         string
	Name       string
	Properties map[string]any
	DistinctID string
	Timestamp  time.Time
}

// Sink receives drained events. The default sink writes through the logger.
type Sink func(Event)

// Capturer queues events and drains them asynchronously.
type Capturer struct {
	events chan Event
	sink   Sink

	mu     sync.Mutex
	closed bool

	closeOnce sync.Once
	done      chan struct{}
}

// NewCapturer creates a capturer with the given buffer size. A size of zero
// uses DefaultBufferSize. A nil sink logs each event at debug level.
func NewCapturer(bufferSize int, sink Sink) *Capturer {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if sink == nil {
		sink = logSink
	}

	c := &Capturer{
		events: make(chan Event, bufferSize),
		sink:   sink,
		done:   make(chan struct{}),
	}
	go c.drain()
	return c
}

// Capture queues an event. It never blocks and never fails the caller: a
// full buffer or a closed capturer drops the event.
func (c *Capturer) Capture(event string, properties map[string]any, distinctID string) {
	ev := Event{
		ID:         uuid.NewString(),
		Name:       event,
		Properties: properties,
		DistinctID: distinctID,
		Timestamp:  time.Now().UTC(),
	}

	// The send must happen under the same mutex that Close uses to close
	// the channel: a send on a closed channel panics, and a request
	// handler can outlive the server's shutdown grace.
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		logger.Debug("analytics: capturer closed, dropping event %s", event)
		return
	}

	select {
	case c.events <- ev:
	default:
		logger.Debug("analytics: buffer full, dropping event %s", event)
	}
}

// Close stops accepting events and flushes the queue.
func (c *Capturer) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.events)
		c.mu.Unlock()
		<-c.done
	})
}

func (c *Capturer) drain() {
	defer close(c.done)
	for ev := range c.events {
		c.sink(ev)
	}
}

func logSink(ev Event) {
	logger.Debug("analytics: %s id=%s distinct=%s props=%v", ev.Name, ev.ID, ev.DistinctID, ev.Properties)
}
