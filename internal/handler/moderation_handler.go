package handler

import (
	"net/http"

	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ModerationHandler struct {
	moderationService *service.ModerationService
}

func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
	}
}

type FlagRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Flag handles POST /api/moderation/:entity/:id/flag
func (h *ModerationHandler) Flag(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var item any
	var err error
	switch c.Param("entity") {
	case "questions":
		item, err = h.moderationService.FlagQuestion(id, req.Reason, claims.Role, claims.Username)
	case "answers":
		item, err = h.moderationService.FlagAnswer(id, req.Reason, claims.Role, claims.Username)
	case "reviews":
		item, err = h.moderationService.FlagReview(id, req.Reason, claims.Role, claims.Username)
	case "staff-messages":
		item, err = h.moderationService.FlagStaffMessage(id, req.Reason, claims.Role, claims.Username)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown entity"})
		return
	}

	if err != nil {
		logger.Log.Warn("Flag failed",
			zap.String("entity", c.Param("entity")),
			zap.Uint64("id", id),
			zap.String("actor", claims.Username),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	// Updated item goes back for an in-place list update, no full reload.
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Unflag handles POST /api/moderation/:entity/:id/unflag
func (h *ModerationHandler) Unflag(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item any
	var err error
	switch c.Param("entity") {
	case "questions":
		item, err = h.moderationService.UnflagQuestion(id, claims.Role, claims.Username)
	case "answers":
		item, err = h.moderationService.UnflagAnswer(id, claims.Role, claims.Username)
	case "reviews":
		item, err = h.moderationService.UnflagReview(id, claims.Role, claims.Username)
	case "staff-messages":
		item, err = h.moderationService.UnflagStaffMessage(id, claims.Role, claims.Username)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown entity"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// Hide handles POST /api/moderation/:entity/:id/hide
func (h *ModerationHandler) Hide(c *gin.Context) {
	h.setHidden(c, true)
}

// Unhide handles POST /api/moderation/:entity/:id/unhide
func (h *ModerationHandler) Unhide(c *gin.Context) {
	h.setHidden(c, false)
}

func (h *ModerationHandler) setHidden(c *gin.Context, hidden bool) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var item any
	var err error
	switch c.Param("entity") {
	case "questions":
		if hidden {
			item, err = h.moderationService.HideQuestion(id, claims.Role, claims.Username)
		} else {
			item, err = h.moderationService.UnhideQuestion(id, claims.Role, claims.Username)
		}
	case "answers":
		if hidden {
			item, err = h.moderationService.HideAnswer(id, claims.Role, claims.Username)
		} else {
			item, err = h.moderationService.UnhideAnswer(id, claims.Role, claims.Username)
		}
	case "reviews":
		if hidden {
			item, err = h.moderationService.HideReview(id, claims.Role, claims.Username)
		} else {
			item, err = h.moderationService.UnhideReview(id, claims.Role, claims.Username)
		}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown entity"})
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": item})
}
