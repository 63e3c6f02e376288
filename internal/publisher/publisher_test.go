package publisher

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bookcircle-app/backend/internal/events"
	"github.com/google/uuid"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestPublish_DeliversToAllTargets(t *testing.T) {
	var hitsA, hitsB int64
	received := make(chan events.Envelope, 2)

	handler := func(hits *int64) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			var env events.Envelope
			if err := json.Unmarshal(body, &env); err != nil {
				t.Errorf("target received invalid envelope: %v", err)
			}
			atomic.AddInt64(hits, 1)
			received <- env
			w.WriteHeader(http.StatusAccepted)
		}
	}

	srvA := httptest.NewServer(handler(&hitsA))
	defer srvA.Close()
	srvB := httptest.NewServer(handler(&hitsB))
	defer srvB.Close()

	p := NewHTTPPublisher([]string{srvA.URL, srvB.URL}, time.Second)
	env := events.New("bookcircle-feed", events.TypePostCreated, events.PostCreatedData{
		PostID: uuid.New(),
		UserID: uuid.New(),
	})
	p.Publish(env)

	waitFor(t, func() bool {
		return atomic.LoadInt64(&hitsA) == 1 && atomic.LoadInt64(&hitsB) == 1
	})

	got := <-received
	if got.ID != env.ID || got.Type != env.Type {
		t.Errorf("delivered envelope = (%s, %s), want (%s, %s)", got.ID, got.Type, env.ID, env.Type)
	}
}

func TestPublish_FailingTargetDoesNotAffectOthers(t *testing.T) {
	var okHits int64
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&okHits, 1)
	}))
	defer ok.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	down.Close() // closed immediately: connection refused

	p := NewHTTPPublisher([]string{down.URL, ok.URL}, time.Second)
	p.Publish(events.New("bookcircle-feed", events.TypePostReacted, nil))

	waitFor(t, func() bool { return atomic.LoadInt64(&okHits) == 1 })
}

func TestPublish_ReturnsWithoutWaiting(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer slow.Close()
	defer close(release)

	p := NewHTTPPublisher([]string{slow.URL}, 5*time.Second)

	done := make(chan struct{})
	go func() {
		p.Publish(events.New("bookcircle-feed", events.TypePostCreated, nil))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow target")
	}
}

func TestPublish_NoTargetsIsNoop(t *testing.T) {
	p := NewHTTPPublisher(nil, time.Second)
	// Must not panic or block.
	p.Publish(events.New("bookcircle-feed", events.TypeCommentCreated, nil))
}
