package relay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/model"
)

// Message is one turn handed to the completion backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolSpec describes a registered function exposed to the model.
type ToolSpec struct {
	Name       string
	Parameters model.ParameterSchema
}

// Request is a single completion call.
type Request struct {
	Messages []Message
	Tools    []ToolSpec
}

// Backend streams completion chunks. Implementations must send exactly one
// terminal chunk (Error or Done) and then close the channel.
type Backend interface {
	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}

// HTTPBackend talks to an OpenAI-compatible /chat/completions endpoint,
// either the configured upstream or a pooled GPU host.
type HTTPBackend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewHTTPBackend(baseURL, apiKey, model string, timeout time.Duration) *HTTPBackend {
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name       string                 `json:"name"`
		Parameters map[string]interface{} `json:"parameters"`
	} `json:"function"`
}

type completionBody struct {
	Model    string     `json:"model"`
	Messages []Message  `json:"messages"`
	Stream   bool       `json:"stream"`
	Tools    []wireTool `json:"tools,omitempty"`
}

// streamLine matches one "data: {...}" line of an OpenAI-compatible stream.
type streamLine struct {
	Choices []struct {
		Delta struct {
			Content   string `json:"content"`
			ToolCalls []struct {
				Index    int    `json:"index"`
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (b *HTTPBackend) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	body := completionBody{
		Model:    b.model,
		Messages: req.Messages,
		Stream:   true,
	}
	for _, t := range req.Tools {
		body.Tools = append(body.Tools, toWireTool(t))
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call backend: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("backend returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	ch := make(chan Chunk, 16)
	go b.consume(resp.Body, ch)
	return ch, nil
}

// consume reads the event stream and forwards typed chunks. Partial tool
// calls are accumulated across deltas until the finish reason arrives.
func (b *HTTPBackend) consume(body io.ReadCloser, ch chan<- Chunk) {
	defer close(ch)
	defer body.Close()

	var toolName string
	var toolArgs strings.Builder
	terminal := false

	emit := func(c Chunk) {
		if !terminal {
			ch <- c
			if c.Type == ChunkError || c.Type == ChunkDone {
				terminal = true
			}
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			emit(Chunk{Type: ChunkDone})
			return
		}

		var parsed streamLine
		if err := json.Unmarshal([]byte(data), &parsed); err != nil {
			emit(Chunk{Type: ChunkError, Err: fmt.Sprintf("malformed chunk: %v", err)})
			return
		}
		if parsed.Error != nil {
			emit(Chunk{Type: ChunkError, Err: parsed.Error.Message})
			return
		}
		if len(parsed.Choices) == 0 {
			continue
		}

		choice := parsed.Choices[0]
		if choice.Delta.Content != "" {
			emit(Chunk{Type: ChunkResponse, Text: choice.Delta.Content})
		}
		for _, tc := range choice.Delta.ToolCalls {
			if tc.Function.Name != "" {
				toolName = tc.Function.Name
			}
			toolArgs.WriteString(tc.Function.Arguments)
		}

		if choice.FinishReason != nil {
			switch *choice.FinishReason {
			case "tool_calls":
				args := toolArgs.String()
				if args == "" {
					args = "{}"
				}
				emit(Chunk{Type: ChunkFunctionCall, Name: toolName, Args: json.RawMessage(args)})
				toolName = ""
				toolArgs.Reset()
			case "stop":
				emit(Chunk{Type: ChunkDone})
				return
			}
		}
	}

	if err := scanner.Err(); err != nil {
		emit(Chunk{Type: ChunkError, Err: fmt.Sprintf("read stream: %v", err)})
		return
	}
	// Stream ended without a terminal marker; treat as done.
	emit(Chunk{Type: ChunkDone})
}

func toWireTool(t ToolSpec) wireTool {
	props := map[string]interface{}{}
	for name, tag := range t.Parameters.Query {
		props[name] = map[string]interface{}{"type": string(tag)}
	}
	for name, tag := range t.Parameters.Header {
		props[name] = map[string]interface{}{"type": string(tag)}
	}

	var wt wireTool
	wt.Type = "function"
	wt.Function.Name = t.Name
	wt.Function.Parameters = map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	return wt
}
