package dto

import (
	commonDto "github.com/bookcircle-app/backend/pkg/dto"
	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Content    string   `json:"content" binding:"required,max=5000"`
	ClubBookID string   `json:"club_book_id"` // Optional
	ImageURLs  []string `json:"image_urls" binding:"omitempty,max=4,dive,url"`
}

type PostResponse struct {
	ID         uuid.UUID                   `json:"id"`
	ClubBookID *uuid.UUID                  `json:"club_book_id,omitempty"`
	Content    string                      `json:"content"`
	Author     commonDto.AuthorResponse    `json:"author"`
	ImageURLs  []string                    `json:"image_urls,omitempty"`
	Reactions  commonDto.ReactionsResponse `json:"reactions"`
	CreatedAt  string                      `json:"created_at"`
}

type FeedFilter struct {
	ClubBookID string `form:"club_book_id"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type PaginatedPostResponse struct {
	Data []PostResponse           `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
