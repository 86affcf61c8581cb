package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

var _ messaging.Publisher = (*Publisher)(nil)

// Publisher publishes messaging events to JetStream.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// Publish sends the event payload to its subject and waits for the stream ack.
func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
