package post

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/bookcircle-app/backend/internal/events"
	clubbookRepo "github.com/bookcircle-app/backend/internal/modules/clubbook/repository"
	postDto "github.com/bookcircle-app/backend/internal/modules/post/dto"
	postRepo "github.com/bookcircle-app/backend/internal/modules/post/repository"
	reaction "github.com/bookcircle-app/backend/internal/modules/reaction/service"
	"github.com/bookcircle-app/backend/internal/publisher"
	"github.com/bookcircle-app/backend/pkg/apperror"
	"github.com/bookcircle-app/backend/pkg/ratelimiter"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error)
	GetFeed(ctx context.Context, viewerID *uuid.UUID, filter postDto.FeedFilter) (*postDto.PaginatedPostResponse, error)
	GetPostByID(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (*postDto.PostResponse, error)
}

type postService struct {
	postRepo        postRepo.PostRepository
	clubBookRepo    clubbookRepo.ClubBookRepository
	reactionService reaction.ReactionService
	publisher       publisher.EventPublisher
	redisClient     *redis.Client
	sanitizer       *bluemonday.Policy
	source          string
	rateLimitGlobal time.Duration
	rateLimitPost   time.Duration
}

func NewPostService(postRepo postRepo.PostRepository, clubBookRepo clubbookRepo.ClubBookRepository, reactionService reaction.ReactionService, pub publisher.EventPublisher, redisClient *redis.Client, source string, rateLimitGlobal, rateLimitPost time.Duration) PostService {
	return &postService{
		postRepo:        postRepo,
		clubBookRepo:    clubBookRepo,
		reactionService: reactionService,
		publisher:       pub,
		redisClient:     redisClient,
		sanitizer:       bluemonday.StrictPolicy(),
		source:          source,
		rateLimitGlobal: rateLimitGlobal,
		rateLimitPost:   rateLimitPost,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error) {
	allowed, err := ratelimiter.CheckAndSet(ctx, s.redisClient, userID, "global", s.rateLimitGlobal)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		ttl, _ := ratelimiter.TTL(ctx, s.redisClient, userID, "global")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you are doing that too fast. Please wait %.0f seconds", ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	allowed, err = ratelimiter.CheckAndSet(ctx, s.redisClient, userID, "post", s.rateLimitPost)
	if err != nil {
		_ = ratelimiter.Clear(ctx, s.redisClient, userID, "global")
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		_ = ratelimiter.Clear(ctx, s.redisClient, userID, "global")
		ttl, _ := ratelimiter.TTL(ctx, s.redisClient, userID, "post")
		return nil, &ratelimiter.RateLimitError{
			Message:    fmt.Sprintf("you can only create one post every %.0f seconds. Please wait %.0f seconds", s.rateLimitPost.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	creationFailed := true
	defer func() {
		if creationFailed {
			_ = ratelimiter.Clear(ctx, s.redisClient, userID, "global")
			_ = ratelimiter.Clear(ctx, s.redisClient, userID, "post")
		}
	}()

	var clubBookID *uuid.UUID
	if req.ClubBookID != "" {
		id, err := uuid.Parse(req.ClubBookID)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, "invalid club book id", nil)
		}
		book, err := s.clubBookRepo.FindByID(ctx, id)
		if err != nil || book == nil {
			return nil, apperror.New(http.StatusNotFound, "club book not found", nil)
		}
		clubBookID = &id
	}

	post := &entity.Post{
		UserID:     userID,
		ClubBookID: clubBookID,
		Content:    s.sanitizer.Sanitize(req.Content),
	}
	for _, url := range req.ImageURLs {
		post.Images = append(post.Images, entity.PostImage{URL: url})
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		// No envelope for a write that never committed.
		return nil, err
	}

	creationFailed = false

	// Reload for the author fields; the insert succeeded, so a reload
	// failure only degrades the response.
	if reloaded, err := s.postRepo.FindByID(ctx, post.ID); err == nil {
		post = reloaded
	}

	s.publisher.Publish(events.New(s.source, events.TypePostCreated, events.PostCreatedData{
		PostID:     post.ID,
		UserID:     userID,
		ClubBookID: clubBookID,
	}))

	resp := s.mapToResponse(post, emptyReactions())
	return &resp, nil
}

func (s *postService) GetFeed(ctx context.Context, viewerID *uuid.UUID, filter postDto.FeedFilter) (*postDto.PaginatedPostResponse, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 50 {
		limit = 20
	}

	var clubBookID *uuid.UUID
	if filter.ClubBookID != "" {
		id, err := uuid.Parse(filter.ClubBookID)
		if err != nil {
			return nil, apperror.New(http.StatusBadRequest, "invalid club book id", nil)
		}
		clubBookID = &id
	}

	posts, total, err := s.postRepo.FindFeed(ctx, clubBookID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	// One grouped query for the whole page, not one per post.
	postIDs := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}
	reactions, err := s.reactionService.GetReactionsBatch(ctx, viewerID, postIDs)
	if err != nil {
		return nil, err
	}

	data := make([]postDto.PostResponse, 0, len(posts))
	for _, p := range posts {
		data = append(data, s.mapToResponse(p, reactions[p.ID]))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &postDto.PaginatedPostResponse{
		Data: data,
		Meta: paginationMeta(page, totalPages, total, limit),
	}, nil
}

func (s *postService) GetPostByID(ctx context.Context, postID uuid.UUID, viewerID *uuid.UUID) (*postDto.PostResponse, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, err
	}

	reactions, err := s.reactionService.GetReactions(ctx, viewerID, postID)
	if err != nil {
		return nil, err
	}

	resp := s.mapToResponse(post, *reactions)
	return &resp, nil
}
