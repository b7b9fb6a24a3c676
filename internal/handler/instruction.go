package handler

import (
	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type InstructionHandler struct {
	instructionService *service.InstructionService
}

func NewInstructionHandler(instructionService *service.InstructionService) *InstructionHandler {
	return &InstructionHandler{instructionService: instructionService}
}

// POST /instruction/create
func (h *InstructionHandler) Create(c *gin.Context) {
	var body struct {
		AssistantID uint   `json:"assistant_id" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Content     string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "assistant_id, name and content are required")
		return
	}
	instruction, err := h.instructionService.Create(body.AssistantID, middleware.GetCurrentUserID(c), body.Name, body.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, instruction)
}

// GET /instruction/list?assistant_id=
func (h *InstructionHandler) List(c *gin.Context) {
	assistantID := parseID(c.Query("assistant_id"))
	if assistantID == 0 {
		BadRequest(c, "assistant_id is required")
		return
	}
	instructions, err := h.instructionService.List(assistantID, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, instructions)
}

// POST /instruction/update
func (h *InstructionHandler) Update(c *gin.Context) {
	var body struct {
		ID       uint    `json:"id" binding:"required"`
		Name     *string `json:"name"`
		Content  *string `json:"content"`
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
	if body.Content != nil {
		updates["content"] = *body.Content
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}
	if len(updates) == 0 {
		BadRequest(c, "Nothing to update")
		return
	}
	if err := h.instructionService.Update(body.ID, middleware.GetCurrentUserID(c), updates); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Instruction updated", nil)
}

// POST /instruction/delete
func (h *InstructionHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id is required")
		return
	}
	if err := h.instructionService.Delete(body.ID, middleware.GetCurrentUserID(c)); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Instruction deleted", nil)
}
