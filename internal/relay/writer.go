package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// flushWriter is the subset of the HTTP response the writer needs; gin's
// ResponseWriter satisfies it, and tests use an httptest recorder.
type flushWriter interface {
	io.Writer
	http.Flusher
}

// EventWriter serializes SSE frames onto an open response. The terminal
// frame (done or error) is written at most once; every write checks for a
// disconnected client first, so nothing is written after the stream ends.
type EventWriter struct {
	w   flushWriter
	ctx context.Context

	mu     sync.Mutex
	closed bool
}

func NewEventWriter(ctx context.Context, w flushWriter) *EventWriter {
	return &EventWriter{w: w, ctx: ctx}
}

// SetHeaders prepares the response for event streaming. Call before the
// first frame.
func SetHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// Response writes one incremental text frame.
func (w *EventWriter) Response(text string) {
	w.write(map[string]interface{}{"response": text}, false)
}

// Error writes the terminal error frame and closes the stream.
func (w *EventWriter) Error(reason string) {
	w.write(map[string]interface{}{"error": reason, "done": true}, true)
}

// Done writes the terminal success frame and closes the stream.
func (w *EventWriter) Done() {
	w.write(map[string]interface{}{"done": true}, true)
}

// Closed reports whether a terminal frame has been written.
func (w *EventWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *EventWriter) write(payload map[string]interface{}, terminal bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	select {
	case <-w.ctx.Done():
		// Client is gone; stop writing entirely.
		w.closed = true
		return
	default:
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w.w, "data: %s\n\n", data)
	w.w.Flush()

	if terminal {
		w.closed = true
	}
}
