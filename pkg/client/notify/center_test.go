package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"leadflow-be/pkg/client"
	"leadflow-be/pkg/client/realtime"
	"leadflow-be/pkg/events"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeAPI struct {
	mu        sync.Mutex
	unread    int64
	polls     int
	list      []client.Notification
	markCalls []string
	markErr   error
}

func (f *fakeAPI) UnreadCount(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	return f.unread, nil
}

func (f *fakeAPI) ListNotifications(context.Context, int) ([]client.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.Notification(nil), f.list...), nil
}

func (f *fakeAPI) MarkRead(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls = append(f.markCalls, id)
	return f.markErr
}

func (f *fakeAPI) MarkAllRead(context.Context) (int64, error) {
	return int64(len(f.list)), nil
}

func (f *fakeAPI) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestCenter(api API, opts ...Option) *Center {
	c := NewCenter(api, opts...)
	c.now = func() time.Time { return fixedNow }
	return c
}

func assigned(id uint, name string) events.Event {
	return events.NewLeadAssigned(events.LeadRef{Id: id, Name: name, Status: "new"}, 7, "Acme", false, events.Actor{})
}

func TestHandleEventSynthesizesOnce(t *testing.T) {
	var toasts []Toast
	var refetched []uint
	c := newTestCenter(&fakeAPI{},
		WithToaster(func(t Toast) { toasts = append(toasts, t) }),
		WithRefetch(func(e events.Event) { refetched = append(refetched, e.Lead().Id) }),
	)

	e := assigned(42, "Jane")
	c.HandleEvent(e)
	c.HandleEvent(e)

	want := []client.Notification{{
		Id:   "rt-" + e.EventId(),
		Type: "lead.assigned",
		Data: client.NotificationData{
			Message:  "New lead assigned: Jane",
			LeadId:   42,
			LeadName: "Jane",
			Status:   "new",
			EventId:  e.EventId(),
		},
		CreatedAt: fixedNow,
	}}
	if diff := cmp.Diff(want, c.Notifications()); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int64(1), c.Unread())
	assert.Equal(t, []Toast{{Type: events.LeadAssigned, LeadId: 42, Message: "New lead assigned: Jane"}}, toasts)
	assert.Equal(t, []uint{42}, refetched)
}

func TestStatusEventTriggersOneRefetch(t *testing.T) {
	refetches := 0
	c := newTestCenter(&fakeAPI{}, WithRefetch(func(events.Event) { refetches++ }))

	e := events.NewLeadStatusUpdated(events.LeadRef{Id: 3, Name: "Bob", Status: "contacted", OldStatus: "new"}, events.Actor{Role: "provider", Id: 7})
	c.HandleEvent(e)
	assert.Equal(t, 1, refetches)

	c.HandleEvent(events.NewLeadStatusUpdated(e.Lead(), e.Actor()))
	assert.Equal(t, 2, refetches)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	api := &fakeAPI{
		unread: 2,
		list: []client.Notification{
			{Id: "n1", Type: "lead.assigned", Data: client.NotificationData{EventId: "e1"}},
			{Id: "n2", Type: "lead.assigned", Data: client.NotificationData{EventId: "e2"}},
		},
	}
	c := newTestCenter(api)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.PollUnread(ctx))

	require.NoError(t, c.MarkRead(ctx, "n1"))
	require.NoError(t, c.MarkRead(ctx, "n1"))
	assert.Equal(t, int64(1), c.Unread())
	assert.Equal(t, []string{"n1"}, api.markCalls)

	// A server event already loaded through Refresh is not duplicated.
	c.HandleEvent(&redelivered{Event: assigned(1, "x"), id: "e2"})
	assert.Len(t, c.Notifications(), 2)

	c.unread = 0
	require.NoError(t, c.MarkRead(ctx, "n2"))
	assert.Equal(t, int64(0), c.Unread())
}

func TestMarkReadFailureLeavesState(t *testing.T) {
	api := &fakeAPI{unread: 1, list: []client.Notification{{Id: "n1"}}, markErr: errors.New("boom")}
	c := newTestCenter(api)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	require.NoError(t, c.PollUnread(ctx))

	assert.Error(t, c.MarkRead(ctx, "n1"))
	assert.Equal(t, int64(1), c.Unread())
	assert.False(t, c.Notifications()[0].IsRead())
}

func TestSyntheticNotificationsReadLocally(t *testing.T) {
	api := &fakeAPI{}
	c := newTestCenter(api)
	e := assigned(5, "Ann")
	c.HandleEvent(e)

	require.NoError(t, c.MarkRead(context.Background(), "rt-"+e.EventId()))
	assert.Empty(t, api.markCalls)
	assert.Equal(t, int64(0), c.Unread())
}

func TestMarkAllRead(t *testing.T) {
	api := &fakeAPI{unread: 2, list: []client.Notification{{Id: "n1"}, {Id: "n2"}}}
	c := newTestCenter(api)
	ctx := context.Background()
	require.NoError(t, c.Refresh(ctx))
	c.HandleEvent(assigned(9, "Zed"))

	require.NoError(t, c.MarkAllRead(ctx))
	assert.Equal(t, int64(0), c.Unread())
	for _, n := range c.Notifications() {
		require.NotNil(t, n.ReadAt, n.Id)
		assert.Equal(t, fixedNow, *n.ReadAt)
	}

	var ids []string
	for _, n := range c.Notifications() {
		if strings.HasPrefix(n.Id, "rt-") {
			ids = append(ids, "rt")
			continue
		}
		ids = append(ids, n.Id)
	}
	if diff := cmp.Diff([]string{"rt", "n1", "n2"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestRunPollsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{unread: 3}
	c := newTestCenter(api, WithPollInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return api.pollCount() >= 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(3), c.Unread())

	cancel()
	<-done
}

type fakeSubscriber struct {
	bound    []string
	released int
	failOn   events.Type
}

func (f *fakeSubscriber) Subscribe(_ context.Context, channel string, event events.Type, _ realtime.Handler) (realtime.Unsubscribe, error) {
	if event == f.failOn {
		return nil, realtime.ErrAlreadyBound
	}
	f.bound = append(f.bound, channel+"/"+string(event))
	return func() { f.released++ }, nil
}

func TestBind(t *testing.T) {
	c := newTestCenter(&fakeAPI{})
	sub := &fakeSubscriber{}

	release, err := c.Bind(context.Background(), sub, "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"admin/lead.assigned", "admin/lead.status.updated", "admin/lead.note.created"}, sub.bound)
	release()
	assert.Equal(t, 3, sub.released)

	sub = &fakeSubscriber{failOn: events.LeadNoteCreated}
	_, err = c.Bind(context.Background(), sub, "admin")
	assert.ErrorIs(t, err, realtime.ErrAlreadyBound)
	assert.Equal(t, 2, sub.released)
}

// redelivered overrides the event id of a wrapped event.
type redelivered struct {
	events.Event
	id string
}

func (r *redelivered) EventId() string { return r.id }
