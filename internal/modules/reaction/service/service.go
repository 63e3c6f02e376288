package reaction

import (
	"context"
	"errors"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/bookcircle-app/backend/internal/events"
	reactionDto "github.com/bookcircle-app/backend/internal/modules/reaction/dto"
	reactionRepo "github.com/bookcircle-app/backend/internal/modules/reaction/repository"
	"github.com/bookcircle-app/backend/internal/publisher"
	"github.com/bookcircle-app/backend/pkg/apperror"
	"github.com/bookcircle-app/backend/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReactionService is the toggle state machine over the reaction store.
// Per (post, user) the state is Absent or Has(T); requesting T from Absent
// creates it, requesting the held T removes it, requesting T' switches.
type ReactionService interface {
	Toggle(ctx context.Context, userID, postID uuid.UUID, reactionType string) (*reactionDto.ToggleResponse, error)
	ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*reactionDto.ToggleResponse, error)
	GetReactions(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID) (*dto.ReactionsResponse, error)
	GetReactionsBatch(ctx context.Context, viewerID *uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]dto.ReactionsResponse, error)
}

type reactionService struct {
	repo      reactionRepo.ReactionRepository
	publisher publisher.EventPublisher
	source    string
}

func NewReactionService(repo reactionRepo.ReactionRepository, pub publisher.EventPublisher, source string) ReactionService {
	return &reactionService{
		repo:      repo,
		publisher: pub,
		source:    source,
	}
}

func (s *reactionService) Toggle(ctx context.Context, userID, postID uuid.UUID, reactionType string) (*reactionDto.ToggleResponse, error) {
	return s.toggle(ctx, userID, postID, reactionType, events.TypePostReacted, events.TypePostUnreacted)
}

// ToggleLike is the boolean like button: the same state machine with the
// type fixed to "like", announced under the post.liked/post.unliked tags.
func (s *reactionService) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*reactionDto.ToggleResponse, error) {
	return s.toggle(ctx, userID, postID, entity.ReactionLike, events.TypePostLiked, events.TypePostUnliked)
}

func (s *reactionService) toggle(ctx context.Context, userID, postID uuid.UUID, reactionType string, onActive, onInactive events.Type) (*reactionDto.ToggleResponse, error) {
	if !entity.IsValidReactionType(reactionType) {
		return nil, apperror.ErrInvalidInput
	}

	result, err := s.transition(ctx, userID, postID, reactionType)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race on the unique (post_id, user_id) index: another
		// request committed between our read and our write. The row exists
		// now, so one re-read settles the transition.
		result, err = s.transition(ctx, userID, postID, reactionType)
	}
	if err != nil {
		return nil, err
	}

	// Emission happens only after the committed transition and never
	// blocks the response; the publisher hands deliveries off internally.
	eventType := onActive
	if !result.Active {
		eventType = onInactive
	}
	data := events.PostReactedData{
		PostID: postID,
		UserID: userID,
		Active: result.Active,
	}
	if result.Type != nil {
		data.Type = *result.Type
	}
	s.publisher.Publish(events.New(s.source, eventType, data))

	return result, nil
}

// transition applies one step of the toggle table. The store's atomic
// upsert and the unique index carry the exclusivity invariant; this method
// only decides between delete and put.
func (s *reactionService) transition(ctx context.Context, userID, postID uuid.UUID, reactionType string) (*reactionDto.ToggleResponse, error) {
	current, err := s.repo.Get(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if current != nil && current.Type == reactionType {
		// Has(T) + T: toggle off.
		if err := s.repo.Delete(ctx, postID, userID); err != nil {
			return nil, err
		}
		return &reactionDto.ToggleResponse{Active: false, Type: nil}, nil
	}

	// Absent + T, or Has(T') + T: create or switch via one upsert.
	if _, err := s.repo.Put(ctx, postID, userID, reactionType); err != nil {
		return nil, err
	}
	t := reactionType
	return &reactionDto.ToggleResponse{Active: true, Type: &t}, nil
}

func (s *reactionService) GetReactions(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID) (*dto.ReactionsResponse, error) {
	// Counts are always computed from live rows; there is no cached
	// counter to drift from the store.
	counts, err := s.repo.CountsByType(ctx, postID)
	if err != nil {
		return nil, err
	}

	var userReacted *string
	if viewerID != nil {
		current, err := s.repo.Get(ctx, postID, *viewerID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			userReacted = &current.Type
		}
	}

	if counts == nil {
		counts = make(map[string]int64)
	}

	return &dto.ReactionsResponse{
		Counts:      counts,
		UserReacted: userReacted,
	}, nil
}

// GetReactionsBatch resolves aggregates for a whole feed page with one
// grouped query (plus one viewer lookup when an identity is present).
func (s *reactionService) GetReactionsBatch(ctx context.Context, viewerID *uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]dto.ReactionsResponse, error) {
	counts, err := s.repo.CountsByTypeBatch(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	viewer := make(map[uuid.UUID]string)
	if viewerID != nil && len(postIDs) > 0 {
		viewer, err = s.repo.ViewerReactionBatch(ctx, postIDs, *viewerID)
		if err != nil {
			return nil, err
		}
	}

	out := make(map[uuid.UUID]dto.ReactionsResponse, len(postIDs))
	for _, postID := range postIDs {
		resp := dto.ReactionsResponse{Counts: counts[postID]}
		if resp.Counts == nil {
			resp.Counts = make(map[string]int64)
		}
		if t, ok := viewer[postID]; ok {
			reacted := t
			resp.UserReacted = &reacted
		}
		out[postID] = resp
	}
	return out, nil
}
