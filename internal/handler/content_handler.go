package handler

import (
	"net/http"

	"github.com/campusqa/peerboard/internal/models"
	"github.com/campusqa/peerboard/internal/service"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	contentService    *service.ContentService
	resolutionService *service.ResolutionService
	authService       *service.AuthService
}

func NewContentHandler(
	contentService *service.ContentService,
	resolutionService *service.ResolutionService,
	authService *service.AuthService,
) *ContentHandler {
	return &ContentHandler{
		contentService:    contentService,
		resolutionService: resolutionService,
		authService:       authService,
	}
}

type SubmitQuestionRequest struct {
	Title              string  `json:"title" binding:"required"`
	Body               string  `json:"body" binding:"required"`
	PreviousQuestionID *uint64 `json:"previous_question_id"`
}

type BodyRequest struct {
	Body string `json:"body" binding:"required"`
}

type EditQuestionRequest struct {
	Title string `json:"title"`
	Body  string `json:"body" binding:"required"`
}

// loadActor fetches the full user row behind the token; ownership checks
// and author denormalization need more than the claims carry.
func (h *ContentHandler) loadActor(c *gin.Context, claims *utils.Claims) (*models.User, bool) {
	user, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return nil, false
	}
	return user, true
}

// SubmitQuestion handles POST /api/questions
func (h *ContentHandler) SubmitQuestion(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}

	var req SubmitQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	question, err := h.contentService.SubmitQuestion(actor, req.Title, req.Body, req.PreviousQuestionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"question": question})
}

// SubmitReply handles POST /api/questions/:id/replies
func (h *ContentHandler) SubmitReply(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	reply, err := h.contentService.SubmitReply(actor, questionID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// SubmitAnswer handles POST /api/questions/:id/answers
func (h *ContentHandler) SubmitAnswer(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	answer, err := h.contentService.SubmitAnswer(actor, questionID, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"answer": answer})
}

// EditQuestion handles PUT /api/questions/:id
func (h *ContentHandler) EditQuestion(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req EditQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	question, err := h.contentService.EditQuestion(id, actor, req.Title, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"question": question})
}

// EditAnswer handles PUT /api/answers/:id
func (h *ContentHandler) EditAnswer(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	answer, err := h.contentService.EditAnswer(id, actor, req.Body)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// DeleteQuestion handles DELETE /api/questions/:id
func (h *ContentHandler) DeleteQuestion(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.contentService.DeleteQuestion(id, actor); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "question deleted"})
}

// ListQuestions handles GET /api/questions
func (h *ContentHandler) ListQuestions(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}

	questions, err := h.contentService.QuestionsForRole(claims.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"count":     len(questions),
	})
}

// ListReplies handles GET /api/questions/:id/replies
func (h *ContentHandler) ListReplies(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	replies, err := h.contentService.RepliesForQuestion(questionID, claims.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"replies": replies})
}

// ListAnswers handles GET /api/questions/:id/answers
func (h *ContentHandler) ListAnswers(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	answers, err := h.contentService.AnswersForQuestion(questionID, claims.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

// ResolveAnswer handles POST /api/answers/:id/resolve
func (h *ContentHandler) ResolveAnswer(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	actor, ok := h.loadActor(c, claims)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	answer, err := h.resolutionService.MarkAnswerResolved(id, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

// MarkAnswerRead handles POST /api/answers/:id/read
func (h *ContentHandler) MarkAnswerRead(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.resolutionService.MarkAnswerRead(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "answer marked read"})
}

// UnreadCount handles GET /api/questions/:id/unread-count
func (h *ContentHandler) UnreadCount(c *gin.Context) {
	if _, ok := actorFrom(c); !ok {
		return
	}
	questionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	count, err := h.resolutionService.UnreadCount(questionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
