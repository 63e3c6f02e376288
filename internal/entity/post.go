package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is immutable once created. Reaction counts are never stored here;
// they are derived from reaction rows at read time.
type Post struct {
	ID         uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User       User        `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	ClubBookID *uuid.UUID  `gorm:"type:uuid;index" json:"club_book_id,omitempty"`
	ClubBook   *ClubBook   `gorm:"constraint:OnDelete:SET NULL" json:"club_book,omitempty"`
	Content    string      `gorm:"type:text;not null" json:"content"`
	Images     []PostImage `gorm:"foreignKey:PostID" json:"images,omitempty"`
	CreatedAt  time.Time   `gorm:"autoCreateTime;index" json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

type PostImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index" json:"post_id"`
	URL       string    `gorm:"type:text;not null" json:"url"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
