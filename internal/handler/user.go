package handler

import (
	"github.com/biswacs/lmscale-backend-sub000/internal/middleware"
	"github.com/biswacs/lmscale-backend-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// POST /user/register
func (h *UserHandler) Register(c *gin.Context) {
	var body struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Name, email and password are required")
		return
	}

	user, token, err := h.userService.Register(body.Name, body.Email, body.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, gin.H{"token": token, "user": user.Brief()})
}

// POST /user/login
func (h *UserHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		BadRequest(c, "Email and password are required")
		return
	}

	user, token, err := h.userService.Login(body.Email, body.Password)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, gin.H{"token": token, "user": user.Brief()})
}

// GET /user/profile
func (h *UserHandler) Profile(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	OK(c, gin.H{"user": user.Brief(), "api_key": user.APIKey})
}
