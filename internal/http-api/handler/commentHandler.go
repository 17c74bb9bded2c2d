package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type CommentHandler struct {
	svc service.CommentService
}

func NewCommentHandler(svc service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// RegisterRoutes nests comments under a title's review.
func (h *CommentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	comments := rg.Group("/:title_id/reviews/:review_id/comments")
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.GET("/:comment_id", h.Get)
		comments.PATCH("/:comment_id", h.Update)
		comments.DELETE("/:comment_id", h.Delete)
	}
}

func (h *CommentHandler) pathIDs(c *gin.Context) (titleID, reviewID int64, ok bool) {
	titleID, ok = pathID(c, "title_id")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok = pathID(c, "review_id")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// List returns a review's comments; the review must belong to the path title.
// GET /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	comments, total, err := h.svc.ListByReview(c.Request.Context(), titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.CommentResponse, 0, len(comments))
	for _, item := range comments {
		resp = append(resp, dto.CommentFromModel(item))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, int(total), page, pageSize))
}

// Get retrieves one comment.
// GET /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	comment, err := h.svc.Get(c.Request.Context(), titleID, reviewID, commentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(*comment))
}

// Create posts a comment on a review.
// POST /api/v1/titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	titleID, reviewID, ok := h.pathIDs(c)
	if !ok {
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.svc.Create(c.Request.Context(), caller, titleID, reviewID, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CommentFromModel(*comment))
}

// Update patches a comment (owner, moderator or admin).
// PATCH /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Update(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	titleID, reviewID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	var req dto.UpdateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.svc.Update(c.Request.Context(), caller, titleID, reviewID, commentID, service.UpdateCommentInput{
		Text: req.Text,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CommentFromModel(*comment))
}

// Delete removes a comment (owner, moderator or admin).
// DELETE /api/v1/titles/:title_id/reviews/:review_id/comments/:comment_id
func (h *CommentHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	titleID, reviewID, ok := h.pathIDs(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, titleID, reviewID, commentID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
