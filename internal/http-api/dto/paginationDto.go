package dto

// PaginatedResponse wraps any list endpoint's page of results.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPaginatedResponse assembles a page envelope.
func NewPaginatedResponse[T any](data []T, total, page, pageSize int) *PaginatedResponse[T] {
	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return &PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
