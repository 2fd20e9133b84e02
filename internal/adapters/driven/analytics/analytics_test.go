package analytics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapturer_CloseFlushesQueuedEvents(t *testing.T) {
	var mu sync.Mutex
	var seen []Event
	c := NewCapturer(16, func(ev Event) {
		mu.Lock()
		seen = append(seen, ev)
		mu.Unlock()
	})

	c.Capture("chat_request", map[string]any{"query_tokens": 3}, "visitor-1")
	c.Capture("chat_request", nil, "visitor-2")
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "chat_request", seen[0].Name)
	assert.Equal(t, "visitor-1", seen[0].DistinctID)
	assert.NotEmpty(t, seen[0].ID)
	assert.NotEqual(t, seen[0].ID, seen[1].ID)
}

func TestCapturer_DropsWhenBufferFull(t *testing.T) {
	block := make(chan struct{})
	var mu sync.Mutex
	drained := 0
	c := NewCapturer(1, func(Event) {
		<-block
		mu.Lock()
		drained++
		mu.Unlock()
	})

	// One event occupies the drain goroutine, one fills the buffer, the
	// rest must be dropped without blocking.
	for i := 0; i < 10; i++ {
		c.Capture("burst", nil, "")
	}
	close(block)
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, drained, 3)
	assert.GreaterOrEqual(t, drained, 1)
}

func TestCapturer_CloseIsIdempotent(t *testing.T) {
	c := NewCapturer(0, nil)
	c.Capture("one", nil, "")
	c.Close()
	assert.NotPanics(t, func() { c.Close() })
}

func TestCapturer_CaptureAfterCloseIsDropped(t *testing.T) {
	var mu sync.Mutex
	var seen []Event
	c := NewCapturer(4, func(ev Event) {
		mu.Lock()
		seen = append(seen, ev)
		mu.Unlock()
	})

	c.Capture("before", nil, "")
	c.Close()

	// A request handler outliving shutdown may still capture; it must be
	// a silent drop, never a panic.
	assert.NotPanics(t, func() { c.Capture("after", nil, "") })

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "before", seen[0].Name)
}
