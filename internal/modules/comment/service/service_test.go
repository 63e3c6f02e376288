package comment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/bookcircle-app/backend/internal/events"
	commentDto "github.com/bookcircle-app/backend/internal/modules/comment/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []*entity.Comment
	failing  bool
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("insert failed")
	}
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	comment.CreatedAt = time.Now()
	copied := *comment
	r.comments = append(r.comments, &copied)
	return nil
}

func (r *fakeCommentRepo) FindByPostID(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*entity.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Comment
	for _, c := range r.comments {
		if c.PostID == postID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

type fakePostRepo struct {
	existing map[uuid.UUID]*entity.Post
}

func (r *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	r.existing[post.ID] = post
	return nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	post, ok := r.existing[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (r *fakePostRepo) FindFeed(ctx context.Context, clubBookID *uuid.UUID, offset, limit int) ([]*entity.Post, int64, error) {
	return nil, 0, nil
}

type capturePublisher struct {
	mu        sync.Mutex
	published []events.Envelope
}

func (p *capturePublisher) Publish(env events.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, env)
}

func (p *capturePublisher) all() []events.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Envelope(nil), p.published...)
}

func newTestService(post *entity.Post) (CommentService, *fakeCommentRepo, *capturePublisher) {
	comments := &fakeCommentRepo{}
	posts := &fakePostRepo{existing: make(map[uuid.UUID]*entity.Post)}
	if post != nil {
		posts.existing[post.ID] = post
	}
	pub := &capturePublisher{}
	svc := NewCommentService(comments, posts, pub, nil, "feed-test", time.Second)
	return svc, comments, pub
}

func TestCreateComment_EmitsAfterCommit(t *testing.T) {
	post := &entity.Post{ID: uuid.New(), UserID: uuid.New()}
	svc, repo, pub := newTestService(post)
	userID := uuid.New()

	resp, err := svc.CreateComment(context.Background(), userID, post.ID, commentDto.CreateCommentRequest{
		Content: "Same, the twist got me too.",
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}

	stored, _, err := repo.FindByPostID(context.Background(), post.ID, 0, 10)
	if err != nil || len(stored) != 1 {
		t.Fatalf("stored comments = %d (%v), want 1", len(stored), err)
	}

	published := pub.all()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	env := published[0]
	if env.Type != events.TypeCommentCreated {
		t.Errorf("event type = %q, want %q", env.Type, events.TypeCommentCreated)
	}
	data, ok := env.Data.(events.CommentCreatedData)
	if !ok {
		t.Fatalf("event data = %T, want CommentCreatedData", env.Data)
	}
	if data.CommentID != resp.ID || data.PostID != post.ID || data.UserID != userID {
		t.Errorf("event data = %+v, want comment %s post %s user %s", data, resp.ID, post.ID, userID)
	}
}

func TestCreateComment_NoEmissionOnFailedWrite(t *testing.T) {
	post := &entity.Post{ID: uuid.New(), UserID: uuid.New()}
	svc, repo, pub := newTestService(post)
	repo.failing = true

	_, err := svc.CreateComment(context.Background(), uuid.New(), post.ID, commentDto.CreateCommentRequest{
		Content: "never lands",
	})
	if err == nil {
		t.Fatal("expected error from failed insert")
	}
	if len(pub.all()) != 0 {
		t.Errorf("published %d events for a failed write, want 0", len(pub.all()))
	}
}

func TestCreateComment_UnknownPostRejected(t *testing.T) {
	svc, _, pub := newTestService(nil)

	_, err := svc.CreateComment(context.Background(), uuid.New(), uuid.New(), commentDto.CreateCommentRequest{
		Content: "orphan comment",
	})
	if err == nil {
		t.Fatal("expected error for unknown post")
	}
	if len(pub.all()) != 0 {
		t.Error("event emitted for rejected comment")
	}
}

func TestCreateComment_SanitizesContent(t *testing.T) {
	post := &entity.Post{ID: uuid.New(), UserID: uuid.New()}
	svc, _, _ := newTestService(post)

	resp, err := svc.CreateComment(context.Background(), uuid.New(), post.ID, commentDto.CreateCommentRequest{
		Content: `<img src=x onerror=alert(1)>great recap`,
	})
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if resp.Content != "great recap" {
		t.Errorf("content = %q, want markup stripped", resp.Content)
	}
}
