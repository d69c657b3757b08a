package nats

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName     = "LEAD_EVENTS"
	StreamSubjects = "events.>"

	// duplicateWindow bounds how long a message id is remembered for dedupe.
	duplicateWindow = 2 * time.Minute
)

// MessageHandler processes one raw message. A returned error is logged and
// the message is terminated; redelivering a poison event never helps.
type MessageHandler func(ctx context.Context, subject string, data []byte) error

// Stream is one connection to the lead event stream, used both to publish
// and to run durable consumers.
type Stream struct {
	nc *nats.Conn
	js jetstream.JetStream

	mu        sync.Mutex
	consumers []jetstream.ConsumeContext
}

// Connect dials url and makes sure the lead event stream exists.
func Connect(url string) (*Stream, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(false),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(3*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{StreamSubjects},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.WorkQueuePolicy,
		MaxAge:     24 * time.Hour,
		Duplicates: duplicateWindow,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}

	return &Stream{nc: nc, js: js}, nil
}

// Publish waits for the JetStream ack. A non-empty msgId makes a retried
// publish of the same event land once.
func (s *Stream) Publish(ctx context.Context, subject, msgId string, data []byte) error {
	var opts []jetstream.PublishOpt
	if msgId != "" {
		opts = append(opts, jetstream.WithMsgID(msgId))
	}
	if _, err := s.js.Publish(ctx, subject, data, opts...); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

// Consume registers a durable consumer for subject. Handlers run with a
// background context since the message outlives the caller's.
func (s *Stream) Consume(ctx context.Context, subject, durableName string, handler MessageHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(context.Background(), msg.Subject(), msg.Data()); err != nil {
			log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
			_ = msg.Term()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.mu.Lock()
	s.consumers = append(s.consumers, cc)
	s.mu.Unlock()

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

func (s *Stream) Close() {
	s.mu.Lock()
	for _, cc := range s.consumers {
		cc.Stop()
	}
	s.consumers = nil
	s.mu.Unlock()

	if s.nc != nil {
		s.nc.Close()
	}
}
