// Package notify keeps a dashboard's notification list and unread counter
// consistent across realtime events and the unread-count poll.
package notify

import (
	"context"
	"sync"
	"time"

	"leadflow-be/pkg/client"
	"leadflow-be/pkg/client/realtime"
	"leadflow-be/pkg/events"

	"go.uber.org/zap"
)

// DefaultPollInterval is how often the unread count is refreshed whether
// or not realtime is connected.
const DefaultPollInterval = 30 * time.Second

// API is the part of the client the center calls.
type API interface {
	UnreadCount(ctx context.Context) (int64, error)
	ListNotifications(ctx context.Context, perPage int) ([]client.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) (int64, error)
}

// Subscriber is satisfied by *realtime.Subscriber.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, event events.Type, h realtime.Handler) (realtime.Unsubscribe, error)
}

type Toast struct {
	Type    events.Type
	LeadId  uint
	Message string
}

// Center is safe for concurrent use by the poller and realtime handlers.
type Center struct {
	api      API
	interval time.Duration
	logger   *zap.Logger
	toast    func(Toast)
	refetch  func(events.Event)
	now      func() time.Time

	mu            sync.Mutex
	notifications []client.Notification
	unread        int64
	seen          map[string]struct{}
}

type Option func(*Center)

func WithPollInterval(d time.Duration) Option {
	return func(c *Center) { c.interval = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Center) { c.logger = l }
}

// WithToaster receives one toast per distinct event.
func WithToaster(f func(Toast)) Option {
	return func(c *Center) { c.toast = f }
}

// WithRefetch is called once per distinct event so the view showing the
// affected lead can reload it.
func WithRefetch(f func(events.Event)) Option {
	return func(c *Center) { c.refetch = f }
}

func NewCenter(api API, opts ...Option) *Center {
	c := &Center{
		api:      api,
		interval: DefaultPollInterval,
		logger:   zap.NewNop(),
		toast:    func(Toast) {},
		refetch:  func(events.Event) {},
		now:      time.Now,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run polls the unread count immediately and then every interval until ctx
// ends. Poll errors are logged and retried on the next tick.
func (c *Center) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		if err := c.PollUnread(ctx); err != nil && ctx.Err() == nil {
			c.logger.Warn("unread poll failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Center) PollUnread(ctx context.Context) error {
	count, err := c.api.UnreadCount(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.unread = count
	c.mu.Unlock()
	return nil
}

// Refresh replaces the local list with the server's, dropping synthesized
// entries.
func (c *Center) Refresh(ctx context.Context) error {
	list, err := c.api.ListNotifications(ctx, 0)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifications = append([]client.Notification(nil), list...)
	for _, n := range list {
		if n.Data.EventId != "" {
			c.seen[n.Data.EventId] = struct{}{}
		}
	}
	return nil
}

// HandleEvent applies one realtime event. Redelivered events are ignored.
func (c *Center) HandleEvent(e events.Event) {
	c.mu.Lock()
	if _, dup := c.seen[e.EventId()]; dup {
		c.mu.Unlock()
		return
	}
	c.seen[e.EventId()] = struct{}{}

	lead := e.Lead()
	n := client.Notification{
		Id:   "rt-" + e.EventId(),
		Type: string(e.EventType()),
		Data: client.NotificationData{
			Message:   e.Message(),
			LeadId:    lead.Id,
			LeadName:  lead.Name,
			Status:    lead.Status,
			OldStatus: lead.OldStatus,
			EventId:   e.EventId(),
		},
		CreatedAt: c.now(),
	}
	if note, ok := e.(*events.LeadNoteCreatedEvent); ok {
		n.Data.NoteId = note.Note.Id
	}
	c.notifications = append([]client.Notification{n}, c.notifications...)
	c.unread++
	c.mu.Unlock()

	c.toast(Toast{Type: e.EventType(), LeadId: lead.Id, Message: e.Message()})
	c.refetch(e)
}

// Bind routes the three lead events on channel into the center and returns
// a func that unbinds them all.
func (c *Center) Bind(ctx context.Context, sub Subscriber, channel string) (func(), error) {
	var unsubs []realtime.Unsubscribe
	release := func() {
		for _, u := range unsubs {
			u()
		}
	}
	for _, t := range []events.Type{events.LeadAssigned, events.LeadStatusUpdated, events.LeadNoteCreated} {
		u, err := sub.Subscribe(ctx, channel, t, c.HandleEvent)
		if err != nil {
			release()
			return nil, err
		}
		unsubs = append(unsubs, u)
	}
	return release, nil
}

func (c *Center) find(id string) int {
	for i := range c.notifications {
		if c.notifications[i].Id == id {
			return i
		}
	}
	return -1
}

// MarkRead marks one notification read. Repeated calls on the same id
// change nothing and the counter never drops below zero.
func (c *Center) MarkRead(ctx context.Context, id string) error {
	c.mu.Lock()
	i := c.find(id)
	if i >= 0 && c.notifications[i].IsRead() {
		c.mu.Unlock()
		return nil
	}
	synthetic := i >= 0 && c.notifications[i].Id == "rt-"+c.notifications[i].Data.EventId
	c.mu.Unlock()

	if !synthetic {
		if err := c.api.MarkRead(ctx, id); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Only a local unread to read transition moves the counter; the next
	// poll corrects it for ids the list has not loaded.
	if i = c.find(id); i < 0 || c.notifications[i].IsRead() {
		return nil
	}
	at := c.now()
	c.notifications[i].ReadAt = &at
	if c.unread > 0 {
		c.unread--
	}
	return nil
}

func (c *Center) MarkAllRead(ctx context.Context) error {
	if _, err := c.api.MarkAllRead(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	at := c.now()
	for i := range c.notifications {
		if !c.notifications[i].IsRead() {
			t := at
			c.notifications[i].ReadAt = &t
		}
	}
	c.unread = 0
	return nil
}

// Notifications returns a copy of the list, newest first.
func (c *Center) Notifications() []client.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]client.Notification(nil), c.notifications...)
}

func (c *Center) Unread() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}
