package comment

import (
	"context"
	"fmt"
	"time"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/bookcircle-app/backend/internal/events"
	commentDto "github.com/bookcircle-app/backend/internal/modules/comment/dto"
	commentRepo "github.com/bookcircle-app/backend/internal/modules/comment/repository"
	postRepo "github.com/bookcircle-app/backend/internal/modules/post/repository"
	"github.com/bookcircle-app/backend/internal/publisher"
	"github.com/bookcircle-app/backend/pkg/apperror"
	"github.com/bookcircle-app/backend/pkg/dto"
	"github.com/bookcircle-app/backend/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
)

type CommentService interface {
	CreateComment(ctx context.Context, userID, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error)
	GetComments(ctx context.Context, postID uuid.UUID, filter commentDto.CommentFilter) (*commentDto.PaginatedCommentResponse, error)
}

type commentService struct {
	commentRepo      commentRepo.CommentRepository
	postRepo         postRepo.PostRepository
	publisher        publisher.EventPublisher
	redisClient      *redis.Client
	sanitizer        *bluemonday.Policy
	source           string
	rateLimitComment time.Duration
}

func NewCommentService(commentRepo commentRepo.CommentRepository, postRepo postRepo.PostRepository, pub publisher.EventPublisher, redisClient *redis.Client, source string, rateLimitComment time.Duration) CommentService {
	return &commentService{
		commentRepo:      commentRepo,
		postRepo:         postRepo,
		publisher:        pub,
		redisClient:      redisClient,
		sanitizer:        bluemonday.StrictPolicy(),
		source:           source,
		rateLimitComment: rateLimitComment,
	}
}

func (s *commentService) CreateComment(ctx context.Context, userID, postID uuid.UUID, req commentDto.CreateCommentRequest) (*commentDto.CommentResponse, error) {
	allowed, err := ratelimiter.CheckAndSet(ctx, s.redisClient, userID, "comment", s.rateLimitComment)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.TTL(ctx, s.redisClient, userID, "comment")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are commenting too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	// Verify the parent post exists before writing.
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil || post == nil {
		_ = ratelimiter.Clear(ctx, s.redisClient, userID, "comment")
		return nil, apperror.ErrNotFound
	}

	comment := &entity.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: s.sanitizer.Sanitize(req.Content),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		// No envelope for a write that never committed.
		_ = ratelimiter.Clear(ctx, s.redisClient, userID, "comment")
		return nil, err
	}

	s.publisher.Publish(events.New(s.source, events.TypeCommentCreated, events.CommentCreatedData{
		CommentID: comment.ID,
		PostID:    postID,
		UserID:    userID,
	}))

	resp := s.mapToResponse(comment)
	return &resp, nil
}

func (s *commentService) GetComments(ctx context.Context, postID uuid.UUID, filter commentDto.CommentFilter) (*commentDto.PaginatedCommentResponse, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 50
	}

	comments, total, err := s.commentRepo.FindByPostID(ctx, postID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	data := make([]commentDto.CommentResponse, 0, len(comments))
	for _, c := range comments {
		data = append(data, s.mapToResponse(c))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &commentDto.PaginatedCommentResponse{
		Data: data,
		Meta: dto.PaginationMeta{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (s *commentService) mapToResponse(comment *entity.Comment) commentDto.CommentResponse {
	author := dto.AuthorResponse{Username: "Unknown"}
	if comment.User.Username != "" {
		author.Username = comment.User.Username
		author.AvatarURL = comment.User.AvatarURL
	}

	return commentDto.CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Content:   comment.Content,
		Author:    author,
		CreatedAt: comment.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
