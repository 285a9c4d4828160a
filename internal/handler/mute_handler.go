package handler

import (
	"net/http"

	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MuteHandler struct {
	muteService *service.MuteService
}

func NewMuteHandler(muteService *service.MuteService) *MuteHandler {
	return &MuteHandler{
		muteService: muteService,
	}
}

type MuteRequest struct {
	// Confirm false returns a preview of what the cascade would hide,
	// mirroring the two-step confirm dialog. Confirm true commits.
	Confirm bool `json:"confirm"`
}

// Mute handles POST /api/moderation/users/:username/mute
func (h *MuteHandler) Mute(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	username := c.Param("username")

	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !req.Confirm {
		preview, err := h.muteService.PreviewMute(username, claims.Role)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"preview": preview})
		return
	}

	logger.Log.Info("Staff muting user",
		zap.String("actor", claims.Username),
		zap.String("target", username),
	)

	result, err := h.muteService.MuteUser(username, claims.Role, claims.Username)
	if err != nil {
		logger.Log.Error("Failed to mute user",
			zap.String("target", username),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	// Affected ids let the caller refresh in-memory lists in place.
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Unmute handles POST /api/moderation/users/:username/unmute
func (h *MuteHandler) Unmute(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	username := c.Param("username")

	logger.Log.Info("Unmuting user",
		zap.String("actor", claims.Username),
		zap.String("target", username),
	)

	result, err := h.muteService.UnmuteUser(username, claims.Role, claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}
