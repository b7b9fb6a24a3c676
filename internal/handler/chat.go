package handler

import (
	"fmt"

	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/biswacs/lmscale-backend-sub000/internal/relay"
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	relay            *relay.Relay
	assistantService *service.AssistantService
}

func NewChatHandler(r *relay.Relay, assistantService *service.AssistantService) *ChatHandler {
	return &ChatHandler{relay: r, assistantService: assistantService}
}

type chatBody struct {
	Message      string `json:"message" binding:"required"`
	Conversation string `json:"conversation"`
	AssistantID  uint   `json:"assistant_id"`
}

// Completion handles POST /chat/completion for API-key authed services.
// The SSE stream is opened before any backend work; from that point every
// failure is a terminal error frame instead of an HTTP status.
func (h *ChatHandler) Completion(c *gin.Context) {
	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "message is required")
		return
	}

	h.stream(c, body)
}

// SessionCompletion handles the session-authed variant; the caller names an
// owned assistant instead of presenting its API key.
func (h *ChatHandler) SessionCompletion(c *gin.Context) {
	var body chatBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "message is required")
		return
	}
	if body.AssistantID == 0 {
		BadRequest(c, "assistant_id is required")
		return
	}

	assistant, err := h.assistantService.GetOne(body.AssistantID, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	c.Set("assistant", assistant)
	h.stream(c, body)
}

func (h *ChatHandler) stream(c *gin.Context, body chatBody) {
	assistant := middleware.GetCurrentAssistant(c)

	relay.SetHeaders(c.Writer.Header())
	// Liveness before any backend work begins.
	fmt.Fprint(c.Writer, ": connected\n\n")
	c.Writer.Flush()

	w := relay.NewEventWriter(c.Request.Context(), c.Writer)
	h.relay.Run(c.Request.Context(), w, assistant, body.Message, body.Conversation)
}
