package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/service"
)

type GenreHandler struct {
	svc service.GenreService
}

func NewGenreHandler(svc service.GenreService) *GenreHandler {
	return &GenreHandler{svc: svc}
}

func (h *GenreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:slug", h.Delete)
}

// List is public; supports name search.
// GET /api/v1/genres?search=
func (h *GenreHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)

	list, total, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.GenreResponse, 0, len(list))
	for _, item := range list {
		resp = append(resp, dto.GenreFromModel(item))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, int(total), page, pageSize))
}

// Create adds a genre (admin only).
// POST /api/v1/genres
func (h *GenreHandler) Create(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	var req dto.CreateGenreDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genre, err := h.svc.Create(c.Request.Context(), caller, req.Slug, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.GenreFromModel(*genre))
}

// Delete removes a genre by slug (admin only); its title links go with it.
// DELETE /api/v1/genres/:slug
func (h *GenreHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	if err := h.svc.Delete(c.Request.Context(), caller, c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
