package repository

import (
	"context"
	"errors"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClubBookRepository interface {
	Create(ctx context.Context, book *entity.ClubBook) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ClubBook, error)
	FindAll(ctx context.Context) ([]*entity.ClubBook, error)
}

type clubBookRepository struct {
	db *gorm.DB
}

func NewClubBookRepository(db *gorm.DB) ClubBookRepository {
	return &clubBookRepository{db: db}
}

func (r *clubBookRepository) Create(ctx context.Context, book *entity.ClubBook) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *clubBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ClubBook, error) {
	var book entity.ClubBook
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &book, nil
}

func (r *clubBookRepository) FindAll(ctx context.Context) ([]*entity.ClubBook, error) {
	var books []*entity.ClubBook
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&books).Error
	return books, err
}
