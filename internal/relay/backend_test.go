package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, lines []string, onRequest func(r *http.Request, body []byte)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if onRequest != nil {
			onRequest(r, body)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, line := range lines {
			fmt.Fprintf(w, "%s\n\n", line)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collect(t *testing.T, ch <-chan Chunk) []Chunk {
	t.Helper()
	var out []Chunk
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, c)
		case <-time.After(5 * time.Second):
			t.Fatal("stream did not finish")
		}
	}
}

func TestHTTPBackendContentStream(t *testing.T) {
	var gotAuth string
	var gotBody completionBody
	srv := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		`data: [DONE]`,
	}, func(r *http.Request, body []byte) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.Unmarshal(body, &gotBody))
	})

	b := NewHTTPBackend(srv.URL, "sk-test", "test-model", 5*time.Second)
	ch, err := b.Stream(context.Background(), Request{Messages: []Message{{Role: "user", Content: "hi"}}})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 3)
	assert.Equal(t, ChunkResponse, chunks[0].Type)
	assert.Equal(t, "Hel", chunks[0].Text)
	assert.Equal(t, "lo", chunks[1].Text)
	assert.Equal(t, ChunkDone, chunks[2].Type)

	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "test-model", gotBody.Model)
	assert.True(t, gotBody.Stream)
}

func TestHTTPBackendToolCallAccumulation(t *testing.T) {
	srv := sseServer(t, []string{
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"id":"call_1","function":{"name":"weather","arguments":"{\"ci"}}]}}]}`,
		`data: {"choices":[{"delta":{"tool_calls":[{"index":0,"function":{"arguments":"ty\":\"sf\"}"}}]}}]}`,
		`data: {"choices":[{"delta":{},"finish_reason":"tool_calls"}]}`,
		`data: [DONE]`,
	}, nil)

	b := NewHTTPBackend(srv.URL, "", "test-model", 5*time.Second)
	ch, err := b.Stream(context.Background(), Request{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 2)
	assert.Equal(t, ChunkFunctionCall, chunks[0].Type)
	assert.Equal(t, "weather", chunks[0].Name)
	assert.JSONEq(t, `{"city":"sf"}`, string(chunks[0].Args))
	assert.Equal(t, ChunkDone, chunks[1].Type)
}

func TestHTTPBackendErrorPayload(t *testing.T) {
	srv := sseServer(t, []string{
		`data: {"error":{"message":"model overloaded"}}`,
	}, nil)

	b := NewHTTPBackend(srv.URL, "", "test-model", 5*time.Second)
	ch, err := b.Stream(context.Background(), Request{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 1)
	assert.Equal(t, ChunkError, chunks[0].Type)
	assert.Equal(t, "model overloaded", chunks[0].Err)
}

func TestHTTPBackendNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	b := NewHTTPBackend(srv.URL, "bad", "test-model", 5*time.Second)
	_, err := b.Stream(context.Background(), Request{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestHTTPBackendTruncatedStream(t *testing.T) {
	srv := sseServer(t, []string{
		`data: {"choices":[{"delta":{"content":"partial"}}]}`,
	}, nil)

	b := NewHTTPBackend(srv.URL, "", "test-model", 5*time.Second)
	ch, err := b.Stream(context.Background(), Request{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 2)
	assert.Equal(t, "partial", chunks[0].Text)
	assert.Equal(t, ChunkDone, chunks[1].Type)
}

func TestToWireTool(t *testing.T) {
	wt := toWireTool(ToolSpec{
		Name: "weather",
		Parameters: model.ParameterSchema{
			Query:  map[string]model.TypeTag{"city": model.TypeString},
			Header: map[string]model.TypeTag{"x-units": model.TypeString},
		},
	})

	assert.Equal(t, "function", wt.Type)
	assert.Equal(t, "weather", wt.Function.Name)
	props := wt.Function.Parameters["properties"].(map[string]interface{})
	assert.Len(t, props, 2)
	assert.Contains(t, props, "city")
	assert.Contains(t, props, "x-units")
}
