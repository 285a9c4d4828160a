package handler

import (
	"net/http"

	"github.com/campusqa/peerboard/internal/service"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	authService   *service.AuthService
}

func NewReviewHandler(reviewService *service.ReviewService, authService *service.AuthService) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		authService:   authService,
	}
}

// CreateReview handles POST /api/answers/:id/reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	answerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	reviewer, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || reviewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.reviewService.CreateReview(answerID, req.Body, reviewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// CreateFromPrevious handles POST /api/reviews/:id/revise
func (h *ReviewHandler) CreateFromPrevious(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	oldReviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	reviewer, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || reviewer == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.reviewService.CreateFromPrevious(oldReviewID, req.Body, reviewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"review": review})
}

// EditReview handles PUT /api/reviews/:id
func (h *ReviewHandler) EditReview(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	reviewID, ok := parseID(c, "id")
	if !ok {
		return
	}

	actor, err := h.authService.GetUserByUsername(claims.Username)
	if err != nil || actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		return
	}

	var req BodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	review, err := h.reviewService.EditReview(reviewID, req.Body, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// ListReviews handles GET /api/answers/:id/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	claims, ok := actorFrom(c)
	if !ok {
		return
	}
	answerID, ok := parseID(c, "id")
	if !ok {
		return
	}

	reviews, err := h.reviewService.ReviewsForAnswer(answerID, claims.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
