package dto

import (
	"time"

	"reviewhub/internal/http-api/models"
)

// CreateReviewDTO for POST /api/v1/titles/:title_id/reviews
type CreateReviewDTO struct {
	Text  string `json:"text" binding:"required"`
	Score int    `json:"score" binding:"required"`
}

// UpdateReviewDTO for PATCH on a single review (partial)
type UpdateReviewDTO struct {
	Text  *string `json:"text,omitempty"`
	Score *int    `json:"score,omitempty"`
}

type ReviewResponse struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

func ReviewFromModel(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:      r.ID,
		Author:  r.Author.Username,
		Text:    r.Text,
		Score:   r.Score,
		PubDate: r.PubDate,
	}
}
