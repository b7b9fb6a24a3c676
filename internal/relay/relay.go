// Package relay proxies chat completions to an inference backend and streams
// the response back to the client as server-sent events.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/biswacs/lmscale-backend-sub000/internal/config"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/internal/worker"
	"github.com/biswacs/lmscale-backend-sub000/pkg/tokens"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rounds of mid-stream function calling before the relay gives up; guards
// against a model that keeps requesting tools.
const maxFunctionRounds = 3

// Invoker performs the live call to a registered function endpoint.
type Invoker interface {
	Invoke(ctx context.Context, fn *model.Function, args map[string]interface{}) (int, string, error)
}

// UsageRecorder increments the per-assistant per-day token counters.
type UsageRecorder interface {
	Record(assistantID uint, inputTokens, outputTokens int) error
}

// BackendFactory builds the streaming backend for a resolved base URL.
// Tests substitute a fake producing scripted chunk sequences.
type BackendFactory func(baseURL, apiKey string) Backend

type Relay struct {
	db         *gorm.DB
	cfg        config.ChatConfig
	invoker    Invoker
	usage      UsageRecorder
	pool       *worker.Pool
	newBackend BackendFactory
}

func New(db *gorm.DB, cfg config.ChatConfig, invoker Invoker, usage UsageRecorder, pool *worker.Pool) *Relay {
	r := &Relay{db: db, cfg: cfg, invoker: invoker, usage: usage, pool: pool}
	r.newBackend = func(baseURL, apiKey string) Backend {
		return NewHTTPBackend(baseURL, apiKey, cfg.Model, time.Duration(cfg.TimeoutSeconds)*time.Second)
	}
	return r
}

// SetBackendFactory overrides backend construction.
func (r *Relay) SetBackendFactory(f BackendFactory) { r.newBackend = f }

// Run relays one chat completion. The SSE response must already be open;
// every failure from here on is reported as a terminal error frame, never a
// second HTTP status.
func (r *Relay) Run(ctx context.Context, w *EventWriter, assistant *model.Assistant, userMessage, sessionID string) {
	instructions, functions, err := r.resolveConfig(assistant.ID)
	if err != nil {
		w.Error("Failed to resolve assistant configuration")
		return
	}

	baseURL, apiKey, err := r.selectBackend()
	if err != nil {
		w.Error(err.Error())
		return
	}

	conv, aiMsg, err := r.openConversation(assistant.ID, sessionID, userMessage)
	if err != nil {
		w.Error("Failed to open conversation")
		return
	}

	messages := composeMessages(assistant.Prompt, instructions, conv, userMessage)
	tools := make([]ToolSpec, 0, len(functions))
	for _, fn := range functions {
		tools = append(tools, ToolSpec{Name: fn.Name, Parameters: fn.Parameters})
	}

	inputText := userMessage
	for _, m := range messages[:len(messages)-1] {
		inputText += " " + m.Content
	}

	backend := r.newBackend(baseURL, apiKey)

	var full strings.Builder
	appended := 0
	for round := 0; ; round++ {
		ch, err := backend.Stream(ctx, Request{Messages: messages, Tools: tools})
		if err != nil {
			w.Error("Inference backend unreachable")
			r.finishMessage(aiMsg, full.String(), model.MessageError)
			return
		}

		call, failed := r.pump(ch, w, &full)
		if failed {
			r.finishMessage(aiMsg, full.String(), model.MessageError)
			return
		}
		if call == nil {
			break
		}
		if round >= maxFunctionRounds {
			w.Error("Function call limit exceeded")
			r.finishMessage(aiMsg, full.String(), model.MessageError)
			return
		}

		result, err := r.callFunction(ctx, functions, call)
		if err != nil {
			w.Error(err.Error())
			r.finishMessage(aiMsg, full.String(), model.MessageError)
			return
		}
		// Only the text streamed since the last round joins the context.
		if text := full.String()[appended:]; text != "" {
			messages = append(messages, Message{Role: "assistant", Content: text})
		}
		appended = full.Len()
		messages = append(messages, Message{
			Role:    "system",
			Content: fmt.Sprintf("Result of function %q: %s", call.Name, result),
		})
	}

	w.Done()
	r.finishMessage(aiMsg, full.String(), model.MessageCompleted)

	inputCount := tokens.Count(inputText)
	outputCount := tokens.Count(full.String())
	assistantID := assistant.ID
	r.pool.Submit(func() {
		if err := r.usage.Record(assistantID, inputCount, outputCount); err != nil {
			log.Printf("record usage for assistant %d: %v", assistantID, err)
		}
	})
}

// pump consumes chunks until the stream yields a function call or ends.
// It returns the pending call, or (nil, false) on normal end; on an error
// chunk it writes the terminal frame and returns failed.
func (r *Relay) pump(ch <-chan Chunk, w *EventWriter, full *strings.Builder) (*Chunk, bool) {
	for chunk := range ch {
		switch chunk.Type {
		case ChunkResponse:
			w.Response(chunk.Text)
			full.WriteString(chunk.Text)
		case ChunkFunctionCall:
			c := chunk
			return &c, false
		case ChunkError:
			w.Error(chunk.Err)
			return nil, true
		case ChunkDone:
			return nil, false
		}
	}
	// Channel closed without a terminal chunk; treat as done.
	return nil, false
}

func (r *Relay) callFunction(ctx context.Context, functions []model.Function, call *Chunk) (string, error) {
	var fn *model.Function
	for i := range functions {
		if functions[i].Name == call.Name {
			fn = &functions[i]
			break
		}
	}
	if fn == nil {
		return "", fmt.Errorf("Unknown function %q requested by backend", call.Name)
	}

	var args map[string]interface{}
	if err := json.Unmarshal(call.Args, &args); err != nil {
		return "", fmt.Errorf("Malformed arguments for function %q", call.Name)
	}

	status, body, err := r.invoker.Invoke(ctx, fn, args)
	if err != nil {
		return "", fmt.Errorf("Function %q call failed", call.Name)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("Function %q returned status %d", call.Name, status)
	}
	return body, nil
}

func (r *Relay) resolveConfig(assistantID uint) ([]model.Instruction, []model.Function, error) {
	var instructions []model.Instruction
	err := r.db.Where("assistant_id = ? AND is_active = ? AND deleted_at IS NULL", assistantID, true).
		Order("created_at ASC").Find(&instructions).Error
	if err != nil {
		return nil, nil, err
	}

	var functions []model.Function
	err = r.db.Where("assistant_id = ? AND is_active = ? AND is_verified = ? AND deleted_at IS NULL", assistantID, true, true).
		Find(&functions).Error
	if err != nil {
		return nil, nil, err
	}
	return instructions, functions, nil
}

// selectBackend returns the upstream, or the first available GPU host when
// the pool is enabled. No load balancing beyond first match.
func (r *Relay) selectBackend() (baseURL, apiKey string, err error) {
	if !r.cfg.UseGpuPool {
		return r.cfg.UpstreamURL, r.cfg.UpstreamAPIKey, nil
	}
	var gpu model.Gpu
	e := r.db.Where("status = ? AND deleted_at IS NULL", model.GpuAvailable).
		Order("id ASC").First(&gpu).Error
	if e != nil {
		return "", "", fmt.Errorf("No inference backend available")
	}
	return gpu.HostURL, "", nil
}

func (r *Relay) openConversation(assistantID uint, sessionID, userMessage string) (*model.Conversation, *model.Message, error) {
	var conv model.Conversation
	if sessionID != "" {
		err := r.db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).Where("assistant_id = ? AND session_id = ? AND deleted_at IS NULL", assistantID, sessionID).
			First(&conv).Error
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, nil, err
		}
	}
	if conv.ID == 0 {
		conv = model.Conversation{AssistantID: assistantID, SessionID: sessionID}
		if conv.SessionID == "" {
			conv.SessionID = uuid.NewString()
		}
		if err := r.db.Create(&conv).Error; err != nil {
			return nil, nil, err
		}
	}

	userMsg := model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleUser,
		Content:        userMessage,
		Tokens:         tokens.Count(userMessage),
		Status:         model.MessageCompleted,
	}
	if err := r.db.Create(&userMsg).Error; err != nil {
		return nil, nil, err
	}

	aiMsg := model.Message{
		ConversationID: conv.ID,
		Role:           model.RoleAI,
		Status:         model.MessagePending,
	}
	if err := r.db.Create(&aiMsg).Error; err != nil {
		return nil, nil, err
	}
	return &conv, &aiMsg, nil
}

func (r *Relay) finishMessage(msg *model.Message, content, status string) {
	updates := map[string]interface{}{
		"content": content,
		"tokens":  tokens.Count(content),
		"status":  status,
	}
	if err := r.db.Model(msg).Updates(updates).Error; err != nil {
		log.Printf("update message %d: %v", msg.ID, err)
	}
}

// composeMessages builds the backend prompt: system prompt, active
// instructions as additional system text, prior turns, then the new message.
func composeMessages(prompt string, instructions []model.Instruction, conv *model.Conversation, userMessage string) []Message {
	system := prompt
	for _, ins := range instructions {
		system += "\n\n" + ins.Content
	}

	messages := []Message{{Role: "system", Content: system}}
	for _, m := range conv.Messages {
		role := "user"
		if m.Role == model.RoleAI {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: m.Content})
	}
	messages = append(messages, Message{Role: "user", Content: userMessage})
	return messages
}
