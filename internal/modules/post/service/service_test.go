package post

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bookcircle-app/backend/internal/entity"
	"github.com/bookcircle-app/backend/internal/events"
	postDto "github.com/bookcircle-app/backend/internal/modules/post/dto"
	reactionDto "github.com/bookcircle-app/backend/internal/modules/reaction/dto"
	"github.com/bookcircle-app/backend/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakePostRepo struct {
	mu      sync.Mutex
	posts   map[uuid.UUID]*entity.Post
	failing bool
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[uuid.UUID]*entity.Post)}
}

func (r *fakePostRepo) Create(ctx context.Context, post *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("insert failed")
	}
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	post.CreatedAt = time.Now()
	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *fakePostRepo) FindFeed(ctx context.Context, clubBookID *uuid.UUID, offset, limit int) ([]*entity.Post, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Post
	for _, post := range r.posts {
		if clubBookID != nil && (post.ClubBookID == nil || *post.ClubBookID != *clubBookID) {
			continue
		}
		copied := *post
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type fakeClubBookRepo struct {
	books map[uuid.UUID]*entity.ClubBook
}

func (r *fakeClubBookRepo) Create(ctx context.Context, book *entity.ClubBook) error {
	r.books[book.ID] = book
	return nil
}

func (r *fakeClubBookRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.ClubBook, error) {
	return r.books[id], nil
}

func (r *fakeClubBookRepo) FindAll(ctx context.Context) ([]*entity.ClubBook, error) {
	var out []*entity.ClubBook
	for _, b := range r.books {
		out = append(out, b)
	}
	return out, nil
}

// stubReactions returns empty aggregates; the post service only forwards
// them.
type stubReactions struct {
	batchCalls int
}

func (s *stubReactions) Toggle(ctx context.Context, userID, postID uuid.UUID, reactionType string) (*reactionDto.ToggleResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubReactions) ToggleLike(ctx context.Context, userID, postID uuid.UUID) (*reactionDto.ToggleResponse, error) {
	return nil, errors.New("not used")
}

func (s *stubReactions) GetReactions(ctx context.Context, viewerID *uuid.UUID, postID uuid.UUID) (*dto.ReactionsResponse, error) {
	return &dto.ReactionsResponse{Counts: make(map[string]int64)}, nil
}

func (s *stubReactions) GetReactionsBatch(ctx context.Context, viewerID *uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]dto.ReactionsResponse, error) {
	s.batchCalls++
	out := make(map[uuid.UUID]dto.ReactionsResponse)
	for _, id := range postIDs {
		out[id] = dto.ReactionsResponse{Counts: make(map[string]int64)}
	}
	return out, nil
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

func newTestService() (PostService, *fakePostRepo, *fakeClubBookRepo, *capturePublisher) {
	repo := newFakePostRepo()
	books := &fakeClubBookRepo{books: make(map[uuid.UUID]*entity.ClubBook)}
	pub := &capturePublisher{}
	svc := NewPostService(repo, books, &stubReactions{}, pub, nil, "feed-test", time.Second, time.Second)
	return svc, repo, books, pub
}

func TestCreatePost_EmitsAfterCommit(t *testing.T) {
	svc, repo, _, pub := newTestService()
	userID := uuid.New()

	resp, err := svc.CreatePost(context.Background(), userID, postDto.CreatePostRequest{
		Content: "Finished chapter three last night.",
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	if _, err := repo.FindByID(context.Background(), resp.ID); err != nil {
		t.Fatalf("created post not in store: %v", err)
	}

	published := pub.all()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	env := published[0]
	if env.Type != events.TypePostCreated {
		t.Errorf("event type = %q, want %q", env.Type, events.TypePostCreated)
	}
	data, ok := env.Data.(events.PostCreatedData)
	if !ok {
		t.Fatalf("event data = %T, want PostCreatedData", env.Data)
	}
	if data.PostID != resp.ID || data.UserID != userID {
		t.Errorf("event data = %+v, want post %s user %s", data, resp.ID, userID)
	}
}

func TestCreatePost_NoEmissionOnFailedWrite(t *testing.T) {
	svc, repo, _, pub := newTestService()
	repo.failing = true

	_, err := svc.CreatePost(context.Background(), uuid.New(), postDto.CreatePostRequest{
		Content: "never lands",
	})
	if err == nil {
		t.Fatal("expected error from failed insert")
	}
	if len(pub.all()) != 0 {
		t.Errorf("published %d events for a failed write, want 0", len(pub.all()))
	}
}

func TestCreatePost_UnknownClubBookRejected(t *testing.T) {
	svc, _, _, pub := newTestService()

	_, err := svc.CreatePost(context.Background(), uuid.New(), postDto.CreatePostRequest{
		Content:    "about a book that is not ours",
		ClubBookID: uuid.NewString(),
	})
	if err == nil {
		t.Fatal("expected error for unknown club book")
	}
	if len(pub.all()) != 0 {
		t.Error("event emitted for rejected post")
	}
}

func TestCreatePost_SanitizesContent(t *testing.T) {
	svc, _, _, _ := newTestService()

	resp, err := svc.CreatePost(context.Background(), uuid.New(), postDto.CreatePostRequest{
		Content: `<script>alert("x")</script>loved the ending`,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if resp.Content != "loved the ending" {
		t.Errorf("content = %q, want script tags stripped", resp.Content)
	}
}

func TestGetFeed_SingleBatchAggregateQuery(t *testing.T) {
	repo := newFakePostRepo()
	books := &fakeClubBookRepo{books: make(map[uuid.UUID]*entity.ClubBook)}
	reactions := &stubReactions{}
	pub := &capturePublisher{}
	svc := NewPostService(repo, books, reactions, pub, nil, "feed-test", time.Second, time.Second)

	for i := 0; i < 5; i++ {
		if _, err := svc.CreatePost(context.Background(), uuid.New(), postDto.CreatePostRequest{Content: "post"}); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := svc.GetFeed(context.Background(), nil, postDto.FeedFilter{})
	if err != nil {
		t.Fatalf("GetFeed: %v", err)
	}
	if len(resp.Data) != 5 {
		t.Fatalf("feed size = %d, want 5", len(resp.Data))
	}
	if reactions.batchCalls != 1 {
		t.Errorf("aggregate batch queries = %d, want exactly 1 per page", reactions.batchCalls)
	}
}
