package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClubBook struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Author    string    `gorm:"size:255;not null" json:"author"`
	CoverURL  *string   `gorm:"type:text" json:"cover_url,omitempty"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (b *ClubBook) TableName() string {
	return "club_books"
}

func (b *ClubBook) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}
