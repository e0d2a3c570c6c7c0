package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sarvuday-server/internal/app"
	"sarvuday-server/internal/model"
	"sarvuday-server/internal/transport/http/response"
)

type AuthHandler struct {
	authService *app.AuthService
	debug       bool
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=128"`
	Email    string `json:"email" binding:"required,email,max=128"`
	Password string `json:"password" binding:"required,min=6,max=64"`
	Phone    string `json:"phone" binding:"max=32"`
	City     string `json:"city" binding:"max=64"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func NewAuthHandler(authService *app.AuthService, debug bool) *AuthHandler {
	return &AuthHandler{authService: authService, debug: debug}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", "")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), app.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		City:     req.City,
	})
	if err != nil {
		writeError(c, err, "register failed", h.debug)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"token": result.Token,
		"user":  userView(result.User),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload", "")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err, "login failed", h.debug)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"token": result.Token,
		"user":  userView(result.User),
	})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "fetch current user failed", h.debug)
		return
	}
	if user == nil {
		response.Error(c, http.StatusUnauthorized, "user not found", "")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": userView(user)})
}

func userView(u *model.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"city":  u.City,
		"role":  u.Role,
	}
}
