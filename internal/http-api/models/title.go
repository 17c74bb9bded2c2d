package models

import "time"

type Title struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"size:256;not null"`
	Year        int        `json:"year" gorm:"not null"`
	Description string     `json:"description" gorm:"type:text"`
	CategoryID  *int64     `json:"category_id,omitempty" gorm:"index"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// associations; deleting a category keeps its titles but clears the reference
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
