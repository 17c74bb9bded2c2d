package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/service"
	"reviewhub/pkg/logger"
)

// respondError maps the service failure taxonomy onto HTTP statuses. Anything
// outside the taxonomy is an internal error and is logged, not echoed.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// pagination reads page/page_size query params with sane bounds.
func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// pathID parses a numeric path parameter. A segment that is not a positive
// integer cannot address any resource, so it answers as a miss rather than a
// malformed request.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": name + " not found"})
		return 0, false
	}
	return id, true
}
