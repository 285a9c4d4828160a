package handler

import (
	"net/http"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Role      string `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest

	// 1. Parse JSON request
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Registration request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	logger.Log.Info("User registration attempt",
		zap.String("username", req.Username),
		zap.String("role", req.Role),
		zap.String("ip", c.ClientIP()),
	)

	// 2. Call service
	user, token, err := h.authService.Register(
		req.Username, req.Email, req.Password,
		req.FirstName, req.LastName, models.Role(req.Role),
	)
	if err != nil {
		logger.Log.Warn("Registration failed",
			zap.String("username", req.Username),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	// 3. Set token in HTTP-only cookie with security flags
	isProduction := h.authService.IsProduction()

	c.SetSameSite(http.SameSiteLaxMode) // CSRF protection
	c.SetCookie(
		"token",
		token,
		7*24*60*60, // 7 days
		"/",
		"",
		isProduction, // secure (HTTPS-only in production)
		true,         // httpOnly
	)

	c.JSON(http.StatusCreated, gin.H{
		"user":  user,
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		logger.Log.Warn("Login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid credentials",
		})
		return
	}

	isProduction := h.authService.IsProduction()

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, 7*24*60*60, "/", "", isProduction, true)

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

// ListUsers backs the moderator user picker, the first step of the mute
// confirm flow.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.authService.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}
