package dto

import (
	commonDto "github.com/bookcircle-app/backend/pkg/dto"
	"github.com/google/uuid"
)

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

type CommentResponse struct {
	ID        uuid.UUID                `json:"id"`
	PostID    uuid.UUID                `json:"post_id"`
	Content   string                   `json:"content"`
	Author    commonDto.AuthorResponse `json:"author"`
	CreatedAt string                   `json:"created_at"`
}

type CommentFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PaginatedCommentResponse struct {
	Data []CommentResponse        `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
