package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		eventType Type
		want      bool
	}{
		{TypePostCreated, true},
		{TypePostLiked, true},
		{TypePostUnliked, true},
		{TypePostReacted, true},
		{TypePostUnreacted, true},
		{TypeCommentCreated, true},
		{"", false},
		{"post.deleted", false},
		{"POST.CREATED", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type(%q).IsValid() = %v, want %v", tt.eventType, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	postID := uuid.New()
	userID := uuid.New()

	before := time.Now().UTC()
	env := New("bookcircle-feed", TypePostReacted, PostReactedData{
		PostID: postID,
		UserID: userID,
		Type:   "love",
		Active: true,
	})
	after := time.Now().UTC()

	if _, err := uuid.Parse(env.ID); err != nil {
		t.Errorf("envelope id %q is not a uuid: %v", env.ID, err)
	}
	if env.Source != "bookcircle-feed" {
		t.Errorf("source = %q, want %q", env.Source, "bookcircle-feed")
	}
	if env.Type != TypePostReacted {
		t.Errorf("type = %q, want %q", env.Type, TypePostReacted)
	}
	if env.OccurredAt.Before(before) || env.OccurredAt.After(after) {
		t.Errorf("occurredAt %v outside [%v, %v]", env.OccurredAt, before, after)
	}

	other := New("bookcircle-feed", TypePostReacted, nil)
	if other.ID == env.ID {
		t.Error("two envelopes share the same id")
	}
}

func TestEnvelope_WireShape(t *testing.T) {
	env := New("bookcircle-feed", TypeCommentCreated, CommentCreatedData{
		CommentID: uuid.New(),
		PostID:    uuid.New(),
		UserID:    uuid.New(),
	})

	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, field := range []string{"id", "source", "type", "data", "occurredAt"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("wire envelope missing field %q", field)
		}
	}

	var occurredAt string
	if err := json.Unmarshal(decoded["occurredAt"], &occurredAt); err != nil {
		t.Fatalf("occurredAt not a string: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, occurredAt); err != nil {
		t.Errorf("occurredAt %q is not ISO-8601: %v", occurredAt, err)
	}
}
