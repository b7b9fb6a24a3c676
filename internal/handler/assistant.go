package handler

import (
	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type AssistantHandler struct {
	assistantService *service.AssistantService
	usageService     *service.UsageService
	convService      *service.ConversationService
}

func NewAssistantHandler(
	assistantService *service.AssistantService,
	usageService *service.UsageService,
	convService *service.ConversationService,
) *AssistantHandler {
	return &AssistantHandler{
		assistantService: assistantService,
		usageService:     usageService,
		convService:      convService,
	}
}

// POST /assistant/create
func (h *AssistantHandler) Create(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Name is required")
		return
	}

	brief, err := h.assistantService.Create(body.Name, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, brief)
}

// GET /assistant/list
func (h *AssistantHandler) List(c *gin.Context) {
	assistants, err := h.assistantService.List(middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	out := make([]gin.H, 0, len(assistants))
	for _, a := range assistants {
		out = append(out, gin.H{
			"id":         a.ID,
			"name":       a.Name,
			"is_active":  a.IsActive,
			"created_at": a.CreatedAt,
		})
	}
	OK(c, out)
}

// GET /assistant/get?id=
func (h *AssistantHandler) Get(c *gin.Context) {
	id := parseID(c.Query("id"))
	if id == 0 {
		BadRequest(c, "id is required")
		return
	}
	assistant, err := h.assistantService.GetOne(id, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, assistant)
}

// POST /assistant/prompt
func (h *AssistantHandler) UpdatePrompt(c *gin.Context) {
	var body struct {
		ID     uint   `json:"id" binding:"required"`
		Prompt string `json:"prompt" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id and prompt are required")
		return
	}
	if err := h.assistantService.UpdatePrompt(body.ID, middleware.GetCurrentUserID(c), body.Prompt); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Prompt updated", nil)
}

// POST /assistant/update
func (h *AssistantHandler) Update(c *gin.Context) {
	var body struct {
		ID       uint    `json:"id" binding:"required"`
		Name     *string `json:"name"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id is required")
		return
	}
	updates := map[string]interface{}{}
	if body.Name != nil {
		updates["name"] = *body.Name
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if len(updates) == 0 {
		BadRequest(c, "Nothing to update")
		return
	}
	if err := h.assistantService.Update(body.ID, middleware.GetCurrentUserID(c), updates); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Assistant updated", nil)
}

// POST /assistant/delete
func (h *AssistantHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id is required")
		return
	}
	if err := h.assistantService.Delete(body.ID, middleware.GetCurrentUserID(c)); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Assistant deleted", nil)
}

// POST /assistant/regenerate-key
func (h *AssistantHandler) RegenerateKey(c *gin.Context) {
	var body struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id is required")
		return
	}
	key, err := h.assistantService.RegenerateKey(body.ID, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"api_key": key})
}

// GET /assistant/usage?id=
func (h *AssistantHandler) Usage(c *gin.Context) {
	id := parseID(c.Query("id"))
	if id == 0 {
		BadRequest(c, "id is required")
		return
	}
	usages, err := h.usageService.Summary(id, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, usages)
}

// GET /assistant/conversations?id=
func (h *AssistantHandler) Conversations(c *gin.Context) {
	id := parseID(c.Query("id"))
	if id == 0 {
		BadRequest(c, "id is required")
		return
	}
	conversations, err := h.convService.List(id, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, conversations)
}
