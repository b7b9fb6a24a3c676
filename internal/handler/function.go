package handler

import (
	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/biswacs/lmscale-backend-sub000/internal/model"
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type FunctionHandler struct {
	functionService *service.FunctionService
}

func NewFunctionHandler(functionService *service.FunctionService) *FunctionHandler {
	return &FunctionHandler{functionService: functionService}
}

type functionBody struct {
	ID          uint                   `json:"id"`
	AssistantID uint                   `json:"assistant_id"`
	Name        string                 `json:"name"`
	Endpoint    string                 `json:"endpoint"`
	Method      string                 `json:"method"`
	AuthType    string                 `json:"auth_type"`
	AuthSecret  string                 `json:"auth_secret"`
	Parameters  model.ParameterSchema  `json:"parameters"`
	TestArgs    map[string]interface{} `json:"test_args"`
}

func (b *functionBody) toInput() service.FunctionInput {
	return service.FunctionInput{
		AssistantID: b.AssistantID,
		Name:        b.Name,
		Endpoint:    b.Endpoint,
		Method:      b.Method,
		AuthType:    b.AuthType,
		AuthSecret:  b.AuthSecret,
		Parameters:  b.Parameters,
		TestArgs:    b.TestArgs,
	}
}

// POST /function/create
//
// The function is only persisted after the live endpoint probe succeeds.
func (h *FunctionHandler) Create(c *gin.Context) {
	var body functionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Invalid function definition")
		return
	}
	if body.AssistantID == 0 || body.Name == "" || body.Endpoint == "" {
		BadRequest(c, "assistant_id, name and endpoint are required")
		return
	}

	fn, err := h.functionService.Create(c.Request.Context(), middleware.GetCurrentUserID(c), body.toInput())
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, fn)
}

// GET /function/list?assistant_id=
func (h *FunctionHandler) List(c *gin.Context) {
	assistantID := parseID(c.Query("assistant_id"))
	if assistantID == 0 {
		BadRequest(c, "assistant_id is required")
		return
	}
	functions, err := h.functionService.List(assistantID, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, functions)
}

// GET /function/get?id=
func (h *FunctionHandler) Get(c *gin.Context) {
	id := parseID(c.Query("id"))
	if id == 0 {
		BadRequest(c, "id is required")
		return
	}
	fn, err := h.functionService.GetOne(id, middleware.GetCurrentUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, fn)
}

// POST /function/update
func (h *FunctionHandler) Update(c *gin.Context) {
	var body functionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Invalid function definition")
		return
	}
	if body.ID == 0 {
		BadRequest(c, "id is required")
		return
	}

	fn, err := h.functionService.Update(c.Request.Context(), body.ID, middleware.GetCurrentUserID(c), body.toInput())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, fn)
}

// POST /function/delete
func (h *FunctionHandler) Delete(c *gin.Context) {
	var body struct {
		ID uint `json:"id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "id is required")
		return
	}
	if err := h.functionService.Delete(body.ID, middleware.GetCurrentUserID(c)); err != nil {
		Fail(c, err)
		return
	}
	OKMessage(c, "Function deleted", nil)
}
