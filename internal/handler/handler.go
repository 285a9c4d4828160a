package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/utils"
	"github.com/gin-gonic/gin"
)

// actorFrom pulls the authenticated claims set by the auth middleware.
func actorFrom(c *gin.Context) (*utils.Claims, bool) {
	claims, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	return claims.(*utils.Claims), true
}

// parseID parses a numeric id path parameter.
func parseID(c *gin.Context, param string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// respondError maps domain errors to HTTP status codes. Every moderation
// error is recoverable and surfaces as an inline message.
func respondError(c *gin.Context, err error) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		status := http.StatusInternalServerError
		switch domainErr.Kind {
		case apperr.KindValidation, apperr.KindParse:
			status = http.StatusBadRequest
		case apperr.KindPermission:
			status = http.StatusForbidden
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindAmbiguousMatch, apperr.KindConflict:
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": domainErr.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
