package dto

import "reviewhub/internal/http-api/service"

// CreateTitleDTO used for POST /api/v1/titles
type CreateTitleDTO struct {
	Name        string   `json:"name" binding:"required"`
	Year        int      `json:"year" binding:"required"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Genres      []string `json:"genre"`
}

// UpdateTitleDTO used for PATCH /api/v1/titles/:title_id (partial updates)
type UpdateTitleDTO struct {
	Name        *string   `json:"name,omitempty"`
	Year        *int      `json:"year,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Genres      *[]string `json:"genre,omitempty"`
}

type TitleResponse struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Year        int               `json:"year"`
	Description string            `json:"description"`
	Rating      *float64          `json:"rating"`
	Category    *CategoryResponse `json:"category"`
	Genres      []GenreResponse   `json:"genre"`
}

func TitleFromInfo(info service.TitleInfo) TitleResponse {
	resp := TitleResponse{
		ID:          info.Title.ID,
		Name:        info.Title.Name,
		Year:        info.Title.Year,
		Description: info.Title.Description,
		Rating:      info.Rating,
		Genres:      make([]GenreResponse, 0, len(info.Title.Genres)),
	}
	if info.Title.Category != nil {
		c := CategoryFromModel(*info.Title.Category)
		resp.Category = &c
	}
	for _, g := range info.Title.Genres {
		resp.Genres = append(resp.Genres, GenreFromModel(g))
	}
	return resp
}
