package repository

import (
	"context"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error)
	FindFeed(ctx context.Context, clubBookID *uuid.UUID, offset, limit int) ([]*entity.Post, int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and its image rows in one transaction so a
// half-written post never becomes visible.
func (r *postRepository) Create(ctx context.Context, post *entity.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(post).Error
	})
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	var post entity.Post
	if err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Images").
		Where("id = ?", id).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) FindFeed(ctx context.Context, clubBookID *uuid.UUID, offset, limit int) ([]*entity.Post, int64, error) {
	var posts []*entity.Post
	var total int64

	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Images")

	if clubBookID != nil {
		query = query.Where("club_book_id = ?", *clubBookID)
	}

	if err := query.Model(&entity.Post{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}
