package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
)

// PushMessage is the payload published to the admin notification topic.
type PushMessage struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Message    string         `json:"message"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Recipients int            `json:"recipients"`
	SentAt     time.Time      `json:"sent_at"`
}

// Pusher delivers a best-effort remote notification.
type Pusher interface {
	Push(ctx context.Context, msg PushMessage) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) (string, error)
}

// PubSubPusher publishes push messages to a Pub/Sub topic.
type PubSubPusher struct {
	publisher messagePublisher
	stop      func()
}

// NewPubSubPusher wraps a v2 publisher. A nil publisher yields a nil pusher,
// which the fan-out treats as push disabled.
func NewPubSubPusher(publisher *pubsub.Publisher) *PubSubPusher {
	if publisher == nil {
		return nil
	}
	return &PubSubPusher{
		publisher: publisherAdapter{p: publisher},
		stop:      publisher.Stop,
	}
}

func (p *PubSubPusher) Push(ctx context.Context, msg PushMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal push message: %w", err)
	}
	_, err = p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"type":   msg.Type,
			"source": "andalib",
		},
	})
	if err != nil {
		return fmt.Errorf("publish push message: %w", err)
	}
	return nil
}

// Close flushes pending publishes.
func (p *PubSubPusher) Close() {
	if p == nil || p.stop == nil {
		return
	}
	p.stop()
}

type publisherAdapter struct {
	p *pubsub.Publisher
}

func (a publisherAdapter) Publish(ctx context.Context, msg *pubsub.Message) (string, error) {
	return a.p.Publish(ctx, msg).Get(ctx)
}
