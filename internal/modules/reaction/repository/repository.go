package repository

import (
	"context"
	"errors"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository is the reaction store plus its aggregate reads. Put and
// Delete are the only mutations; the unique (post_id, user_id) index backs
// both against concurrent callers.
type ReactionRepository interface {
	Get(ctx context.Context, postID, userID uuid.UUID) (*entity.Reaction, error)
	Put(ctx context.Context, postID, userID uuid.UUID, reactionType string) (*entity.Reaction, error)
	Delete(ctx context.Context, postID, userID uuid.UUID) error

	CountsByType(ctx context.Context, postID uuid.UUID) (map[string]int64, error)
	CountsByTypeBatch(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]map[string]int64, error)
	ViewerReactionBatch(ctx context.Context, postIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]string, error)
}

type reactionRepository struct {
	db *gorm.DB
}

func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Get(ctx context.Context, postID, userID uuid.UUID) (*entity.Reaction, error) {
	// Use Find with slice to avoid "record not found" log noise from GORM's First()
	var existing []entity.Reaction
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, nil
	}
	return &existing[0], nil
}

// Put is a create-or-replace keyed on the unique (post_id, user_id) pair.
// The ON CONFLICT clause makes it a single atomic statement, so two
// concurrent requests from the same user cannot produce divergent rows.
// The duplicate-key fallback covers drivers that surface the constraint
// instead of applying the conflict clause: the row now exists, so the
// insert is retried as an update rather than reported as an error.
func (r *reactionRepository) Put(ctx context.Context, postID, userID uuid.UUID, reactionType string) (*entity.Reaction, error) {
	reaction := &entity.Reaction{
		PostID: postID,
		UserID: userID,
		Type:   reactionType,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(reaction).Error

	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		err = r.db.WithContext(ctx).
			Model(&entity.Reaction{}).
			Where("post_id = ? AND user_id = ?", postID, userID).
			Update("type", reactionType).Error
	}
	if err != nil {
		return nil, err
	}

	return reaction, nil
}

func (r *reactionRepository) Delete(ctx context.Context, postID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&entity.Reaction{}).Error
}

func (r *reactionRepository) CountsByType(ctx context.Context, postID uuid.UUID) (map[string]int64, error) {
	type result struct {
		Type  string
		Count int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("type, count(*) as count").
		Where("post_id = ?", postID).
		Group("type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, res := range results {
		counts[res.Type] = res.Count
	}
	return counts, nil
}

// CountsByTypeBatch resolves every post in one grouped query. Feed pages
// list dozens of posts, so a query per post would scale latency with page
// size.
func (r *reactionRepository) CountsByTypeBatch(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]map[string]int64, error) {
	counts := make(map[uuid.UUID]map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	type result struct {
		PostID uuid.UUID
		Type   string
		Count  int64
	}
	var results []result

	err := r.db.WithContext(ctx).
		Model(&entity.Reaction{}).
		Select("post_id, type, count(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Group("type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		if counts[res.PostID] == nil {
			counts[res.PostID] = make(map[string]int64)
		}
		counts[res.PostID][res.Type] = res.Count
	}
	return counts, nil
}

func (r *reactionRepository) ViewerReactionBatch(ctx context.Context, postIDs []uuid.UUID, userID uuid.UUID) (map[uuid.UUID]string, error) {
	viewer := make(map[uuid.UUID]string, len(postIDs))
	if len(postIDs) == 0 {
		return viewer, nil
	}

	var rows []entity.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		viewer[row.PostID] = row.Type
	}
	return viewer, nil
}
