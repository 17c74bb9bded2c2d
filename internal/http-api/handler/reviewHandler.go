package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type ReviewHandler struct {
	svc service.ReviewService
}

func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// RegisterRoutes nests reviews under their title.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/:title_id/reviews")
	{
		reviews.GET("", h.List)
		reviews.POST("", h.Create)
		reviews.GET("/:review_id", h.Get)
		reviews.PATCH("/:review_id", h.Update)
		reviews.DELETE("/:review_id", h.Delete)
	}
}

// List returns a title's reviews.
// GET /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	page, pageSize := pagination(c)

	reviews, total, err := h.svc.ListByTitle(c.Request.Context(), titleID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		resp = append(resp, dto.ReviewFromModel(r))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, int(total), page, pageSize))
}

// Get retrieves one review.
// GET /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	review, err := h.svc.Get(c.Request.Context(), titleID, reviewID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewFromModel(*review))
}

// Create posts a review on a title, one per user.
// POST /api/v1/titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	var req dto.CreateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.svc.Create(c.Request.Context(), caller, titleID, req.Text, req.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ReviewFromModel(*review))
}

// Update patches a review (owner, moderator or admin).
// PATCH /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Update(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	var req dto.UpdateReviewDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.svc.Update(c.Request.Context(), caller, titleID, reviewID, service.UpdateReviewInput{
		Text:  req.Text,
		Score: req.Score,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ReviewFromModel(*review))
}

// Delete removes a review (owner, moderator or admin).
// DELETE /api/v1/titles/:title_id/reviews/:review_id
func (h *ReviewHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	titleID, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, "review_id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, titleID, reviewID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
