package contract

import (
	"context"
	"time"

	"leadflow-be/internal/entity"
)

type NotificationFilter struct {
	Recipient  entity.Recipient
	UnreadOnly bool
	Limit      int
	Offset     int
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	// FindByRecipient returns newest first.
	FindByRecipient(ctx context.Context, filter NotificationFilter) ([]*entity.Notification, error)
	CountByRecipient(ctx context.Context, filter NotificationFilter) (int64, error)
	// MarkAsRead sets read_at once. changed is false when the notification was already read.
	MarkAsRead(ctx context.Context, id string, recipient entity.Recipient, at time.Time) (changed bool, err error)
	MarkAllAsRead(ctx context.Context, recipient entity.Recipient, at time.Time) (int64, error)
}
