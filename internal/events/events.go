package events

import (
	"time"

	"github.com/google/uuid"
)

// Type tags are a closed, versioned vocabulary. Downstream services
// pattern-match on the exact strings, so producers must not invent ad hoc
// values.
type Type string

const (
	TypePostCreated    Type = "post.created"
	TypePostLiked      Type = "post.liked"
	TypePostUnliked    Type = "post.unliked"
	TypePostReacted    Type = "post.reacted"
	TypePostUnreacted  Type = "post.unreacted"
	TypeCommentCreated Type = "comment.created"
)

func (t Type) IsValid() bool {
	switch t {
	case TypePostCreated, TypePostLiked, TypePostUnliked,
		TypePostReacted, TypePostUnreacted, TypeCommentCreated:
		return true
	}
	return false
}

// Envelope is the uniform wrapper around a domain fact broadcast to
// downstream listeners. Envelopes are ephemeral: the publisher never
// persists them.
type Envelope struct {
	ID         string    `json:"id"`
	Source     string    `json:"source"`
	Type       Type      `json:"type"`
	Data       any       `json:"data"`
	OccurredAt time.Time `json:"occurredAt"`
}

// New wraps a domain fact into an envelope. Pure construction: fresh id,
// current timestamp, no I/O.
func New(source string, t Type, data any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Source:     source,
		Type:       t,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Event payloads: minimal, ids only.

type PostCreatedData struct {
	PostID     uuid.UUID  `json:"post_id"`
	UserID     uuid.UUID  `json:"user_id"`
	ClubBookID *uuid.UUID `json:"club_book_id,omitempty"`
}

type PostReactedData struct {
	PostID uuid.UUID `json:"post_id"`
	UserID uuid.UUID `json:"user_id"`
	Type   string    `json:"type,omitempty"`
	Active bool      `json:"active"`
}

type CommentCreatedData struct {
	CommentID uuid.UUID `json:"comment_id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
}
