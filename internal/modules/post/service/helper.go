package post

import (
	"github.com/bookcircle-app/backend/internal/entity"
	postDto "github.com/bookcircle-app/backend/internal/modules/post/dto"
	"github.com/bookcircle-app/backend/pkg/dto"
)

func (s *postService) mapToResponse(post *entity.Post, reactions dto.ReactionsResponse) postDto.PostResponse {
	author := dto.AuthorResponse{Username: "Unknown"}
	if post.User.Username != "" {
		author.Username = post.User.Username
		author.AvatarURL = post.User.AvatarURL
	}

	var imageURLs []string
	for _, img := range post.Images {
		imageURLs = append(imageURLs, img.URL)
	}

	if reactions.Counts == nil {
		reactions.Counts = make(map[string]int64)
	}

	return postDto.PostResponse{
		ID:         post.ID,
		ClubBookID: post.ClubBookID,
		Content:    post.Content,
		Author:     author,
		ImageURLs:  imageURLs,
		Reactions:  reactions,
		CreatedAt:  post.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func emptyReactions() dto.ReactionsResponse {
	return dto.ReactionsResponse{Counts: make(map[string]int64)}
}

func paginationMeta(page, totalPages int, total int64, limit int) dto.PaginationMeta {
	return dto.PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  total,
		Limit:       limit,
	}
}
