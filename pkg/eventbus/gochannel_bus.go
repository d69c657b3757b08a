package eventbus

import (
	"context"
	"fmt"
	"log"

	"leadflow-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const Topic = "lead_events"

// GoChannelBus keeps events inside the process. Used when NATS is not
// reachable and in tests.
type GoChannelBus struct {
	pubSub *gochannel.GoChannel
}

func NewGoChannelBus(logger watermill.LoggerAdapter) *GoChannelBus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &GoChannelBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger),
	}
}

func (b *GoChannelBus) Publish(_ context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	msg := message.NewMessage(event.EventId(), data)
	msg.Metadata.Set("type", string(event.EventType()))
	return b.pubSub.Publish(Topic, msg)
}

func (b *GoChannelBus) Subscribe(ctx context.Context, name string, h Handler) error {
	messages, err := b.pubSub.Subscribe(ctx, Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			event, err := events.Unmarshal(msg.Payload)
			if err != nil {
				log.Printf("[ERROR] %s: dropping undecodable message %s: %v", name, msg.UUID, err)
				msg.Ack()
				continue
			}
			// Nack would redeliver in-process forever.
			if err := h(msg.Context(), event); err != nil {
				log.Printf("[ERROR] %s: handler failed for %s: %v", name, event.EventType(), err)
			}
			msg.Ack()
		}
	}()

	return nil
}

func (b *GoChannelBus) Close() error {
	return b.pubSub.Close()
}
