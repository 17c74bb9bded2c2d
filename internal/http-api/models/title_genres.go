package models

// explicit join model so the (title, genre) pair carries a unique constraint
type TitleGenre struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"uniqueIndex:idx_title_genre;not null"`
	GenreID int64 `json:"genre_id" gorm:"uniqueIndex:idx_title_genre;not null"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}
