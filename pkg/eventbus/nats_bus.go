package eventbus

import (
	"context"
	"fmt"

	"leadflow-be/pkg/events"
	pktNats "leadflow-be/pkg/nats"
)

// NatsBus publishes to JetStream so every API instance feeds one durable worker queue.
type NatsBus struct {
	stream *pktNats.Stream
}

// NewNatsBus dials the stream. The caller falls back to GoChannelBus on error.
func NewNatsBus(url string) (*NatsBus, error) {
	stream, err := pktNats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NatsBus{stream: stream}, nil
}

func (b *NatsBus) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.stream.Publish(ctx, event.EventType().Subject(), event.EventId(), data)
}

func (b *NatsBus) Subscribe(ctx context.Context, name string, h Handler) error {
	return b.stream.Consume(ctx, pktNats.StreamSubjects, name, func(ctx context.Context, subject string, data []byte) error {
		event, err := events.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("subject %s: %w", subject, err)
		}
		return h(ctx, event)
	})
}

func (b *NatsBus) Close() error {
	b.stream.Close()
	return nil
}
