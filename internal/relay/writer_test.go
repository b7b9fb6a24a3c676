package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventWriterFrames(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewEventWriter(context.Background(), rec)

	w.Response("hel")
	w.Response("lo")
	w.Done()

	want := "data: {\"response\":\"hel\"}\n\n" +
		"data: {\"response\":\"lo\"}\n\n" +
		"data: {\"done\":true}\n\n"
	assert.Equal(t, want, rec.Body.String())
}

func TestEventWriterTerminalOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewEventWriter(context.Background(), rec)

	w.Done()
	w.Done()
	w.Error("too late")
	w.Response("too late")

	frames := parseFrames(t, rec.Body.String())
	assert.Len(t, frames, 1)
	assert.Equal(t, true, frames[0]["done"])
	assert.True(t, w.Closed())
}

func TestEventWriterErrorClosesStream(t *testing.T) {
	rec := httptest.NewRecorder()
	w := NewEventWriter(context.Background(), rec)

	w.Response("partial")
	w.Error("backend gone")
	w.Response("after close")
	w.Done()

	frames := parseFrames(t, rec.Body.String())
	assert.Len(t, frames, 2)
	assert.Equal(t, "partial", frames[0]["response"])
	assert.Equal(t, "backend gone", frames[1]["error"])
	assert.Equal(t, true, frames[1]["done"])
}

func TestEventWriterClientGone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := httptest.NewRecorder()
	w := NewEventWriter(ctx, rec)

	w.Response("nobody listening")
	assert.Empty(t, rec.Body.String())
	assert.True(t, w.Closed())
}

func TestSetHeaders(t *testing.T) {
	h := http.Header{}
	SetHeaders(h)
	assert.Equal(t, "text/event-stream", h.Get("Content-Type"))
	assert.Equal(t, "no-cache", h.Get("Cache-Control"))
	assert.Equal(t, "no", h.Get("X-Accel-Buffering"))
}
