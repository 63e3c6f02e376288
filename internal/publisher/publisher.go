package publisher

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/bookcircle-app/backend/internal/events"
)

// EventPublisher is what the write-path services depend on; tests swap in a
// capturing fake.
type EventPublisher interface {
	Publish(env events.Envelope)
}

// HTTPPublisher fans an envelope out to every configured target with
// at-most-once, best-effort semantics: one POST per target, short timeout,
// no retries, no persistence. A dead target only costs a log line.
type HTTPPublisher struct {
	targets []string
	client  *http.Client
}

func NewHTTPPublisher(targets []string, timeout time.Duration) *HTTPPublisher {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HTTPPublisher{
		targets: targets,
		client:  &http.Client{Timeout: timeout},
	}
}

// Publish returns as soon as the deliveries are handed off. Each target gets
// its own goroutine so one slow or dead target cannot delay the others, and
// nothing here can propagate back into the request path.
func (p *HTTPPublisher) Publish(env events.Envelope) {
	if len(p.targets) == 0 {
		return
	}

	body, err := json.Marshal(env)
	if err != nil {
		log.Printf("event %s (%s): marshal failed: %v", env.Type, env.ID, err)
		return
	}

	for _, target := range p.targets {
		go p.deliver(target, body, env)
	}
}

func (p *HTTPPublisher) deliver(target string, body []byte, env events.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event %s (%s): delivery to %s panicked: %v", env.Type, env.ID, target, r)
		}
	}()

	resp, err := p.client.Post(target, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("event %s (%s): delivery to %s failed: %v", env.Type, env.ID, target, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("event %s (%s): target %s responded %d", env.Type, env.ID, target, resp.StatusCode)
	}
}
