package driven

// Analytics captures product events. Calls are one-way: they never
// block the request path and never surface their own failures into the
// caller's error path.
type Analytics interface {
	// Capture records an event with a property map and an optional
	// caller identifier. Safe to call from any goroutine.
	Capture(event string, properties map[string]any, distinctID string)

	// Close flushes buffered events and stops the capturer.
	Close()
}
