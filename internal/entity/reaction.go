package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reaction types form a closed vocabulary; downstream consumers and the
// toggle endpoint both validate against it.
const (
	ReactionLike  = "like"
	ReactionLove  = "love"
	ReactionLaugh = "laugh"
	ReactionWow   = "wow"
	ReactionSad   = "sad"
	ReactionClap  = "clap"
)

func IsValidReactionType(t string) bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionClap:
		return true
	}
	return false
}

// Reaction holds a user's single reaction on a post. The unique index on
// (post_id, user_id) is the invariant anchor: a user has at most one live
// row per post, and concurrent writers race on the constraint, not on
// application-level checks.
type Reaction struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_post_user,priority:1;index:idx_reactions_post" json:"post_id"`
	Post      Post      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reactions_post_user,priority:2" json:"user_id"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Type      string    `gorm:"size:10;not null" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Reaction) TableName() string {
	return "reactions"
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
