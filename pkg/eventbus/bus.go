// Package eventbus moves lead events between the services that produce them
// and the notification worker that fans them out.
package eventbus

import (
	"context"
	"errors"

	"leadflow-be/pkg/events"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event events.Event) error

type Bus interface {
	Publish(ctx context.Context, event events.Event) error
	// Subscribe starts delivering every lead event to h under the consumer name.
	Subscribe(ctx context.Context, name string, h Handler) error
	Close() error
}

var ErrClosed = errors.New("eventbus: closed")
