package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/http-api/dto"
	"reviewhub/internal/http-api/middleware"
	"reviewhub/internal/http-api/repository"
	"reviewhub/internal/http-api/service"
)

type TitleHandler struct {
	svc service.TitleService
}

func NewTitleHandler(svc service.TitleService) *TitleHandler {
	return &TitleHandler{svc: svc}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:title_id", h.Get)
	rg.PATCH("/:title_id", h.Update)
	rg.DELETE("/:title_id", h.Delete)
}

// List is public; filterable by category, genre, name and year.
// GET /api/v1/titles?category=&genre=&name=&year=
func (h *TitleHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	year, _ := strconv.Atoi(c.Query("year"))

	filter := repository.TitleFilter{
		CategorySlug: c.Query("category"),
		GenreSlug:    c.Query("genre"),
		Name:         c.Query("name"),
		Year:         year,
	}

	infos, total, err := h.svc.List(c.Request.Context(), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]dto.TitleResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, dto.TitleFromInfo(info))
	}
	c.JSON(http.StatusOK, dto.NewPaginatedResponse(resp, int(total), page, pageSize))
}

// Get retrieves one title with its rating.
// GET /api/v1/titles/:title_id
func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	info, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromInfo(*info))
}

// Create adds a title (admin only).
// POST /api/v1/titles
func (h *TitleHandler) Create(c *gin.Context) {
	caller := middleware.CallerFromContext(c)

	var req dto.CreateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.svc.Create(c.Request.Context(), caller, service.CreateTitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genres,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.TitleFromInfo(*info))
}

// Update applies a partial update to a title (admin only).
// PATCH /api/v1/titles/:title_id
func (h *TitleHandler) Update(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	var req dto.UpdateTitleDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info, err := h.svc.Update(c.Request.Context(), caller, id, service.UpdateTitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.Category,
		GenreSlugs:   req.Genres,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TitleFromInfo(*info))
}

// Delete removes a title and, through the store, its reviews and comments.
// DELETE /api/v1/titles/:title_id
func (h *TitleHandler) Delete(c *gin.Context) {
	caller := middleware.CallerFromContext(c)
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
