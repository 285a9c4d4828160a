package handler

import (
	"net/http"

	"github.com/campusqa/peerboard/internal/service"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageService *service.MessageService
	authService    *service.AuthService
}

func NewMessageHandler(messageService *service.MessageService, authService *service.AuthService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		authService:    authService,
	}
}

type SendMessageRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Subject   string `json:"subject" binding:"required"`
	Body      string `json:"body" binding:"required"`
}

type RenderedRequest struct {
	Rendered string `json:"rendered" binding:"required"`
}

type FlagRenderedRequest struct {
	Rendered string `json:"rendered" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// SendStudent handles POST /api/messages/student
func (h *MessageHandler) SendStudent(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	sender, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || sender == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.messageService.SendStudentMessage(sender.DisplayName(), req.Recipient, req.Subject, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// SendReviewer handles POST /api/messages/reviewer
func (h *MessageHandler) SendReviewer(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	sender, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || sender == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.messageService.SendReviewerMessage(sender.DisplayName(), req.Recipient, req.Subject, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// SendStaff handles POST /api/messages/staff
func (h *MessageHandler) SendStaff(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	msg, err := h.messageService.SendStaffMessage(claims.Username, req.Recipient, req.Subject, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// FlagRendered handles POST /api/messages/flag
// The message is identified by its rendered display block, not an id.
func (h *MessageHandler) FlagRendered(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}

	var req FlagRenderedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.messageService.FlagRendered(req.Rendered, req.Reason, claims.Role, claims.Username); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message flagged"})
}

// MarkRenderedRead handles POST /api/messages/read
func (h *MessageHandler) MarkRenderedRead(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}

	var req RenderedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.messageService.MarkRenderedRead(req.Rendered); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message marked read"})
}

// StudentInbox handles GET /api/messages/student
func (h *MessageHandler) StudentInbox(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	msgs, err := h.messageService.StudentInbox(user.DisplayName())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// ReviewerInbox handles GET /api/messages/reviewer
func (h *MessageHandler) ReviewerInbox(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	user, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	msgs, err := h.messageService.ReviewerInbox(user.DisplayName())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// StaffInbox handles GET /api/messages/staff
func (h *MessageHandler) StaffInbox(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}

	msgs, err := h.messageService.StaffInbox(claims.Username)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MarkStaffRead handles POST /api/messages/staff/:id/read
func (h *MessageHandler) MarkStaffRead(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkStaffMessageRead(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message marked read"})
}

// MarkStaffRepliedTo handles POST /api/messages/staff/:id/replied
func (h *MessageHandler) MarkStaffRepliedTo(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.messageService.MarkStaffMessageRepliedTo(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message marked replied"})
}

// DeleteStaffInbox handles DELETE /api/messages/staff/:id
func (h *MessageHandler) DeleteStaffInbox(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	if err := h.messageService.DeleteStaffInbox(id, actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "message removed from inbox"})
}
