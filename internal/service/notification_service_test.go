package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/assignment"
	"leadflow-be/pkg/eventbus"
	"leadflow-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_HandleNotifiesAdminsAndProvider(t *testing.T) {
	f := newFixture(t)
	admin1 := f.admin("First Admin")
	admin2 := f.admin("Second Admin")
	p := f.provider("Acme Roofing", true)
	hub := &fakeBroadcaster{}
	svc := NewNotificationService(f.uow, f.bus, hub, f.metrics, f.log)

	e := events.NewLeadAssigned(events.LeadRef{Id: 5, Name: "Ann", Status: "new", ServiceProviderId: uintPtr(p.Id)}, p.Id, p.Name, false, events.Actor{})
	require.NoError(t, svc.Handle(f.ctx, e))

	for _, pr := range []entity.Principal{admin1.Principal(), admin2.Principal(), p.Principal()} {
		count, err := svc.UnreadCount(f.ctx, pr)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count.Count, pr.Role)
	}
	assert.Equal(t, []string{entity.AdminChannel, entity.ProviderChannel(p.Id)}, hub.Channels())

	// Redelivery of the same event stores nothing new but still reaches
	// both channels.
	require.NoError(t, svc.Handle(f.ctx, e))
	count, err := svc.UnreadCount(f.ctx, p.Principal())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count.Count)
	assert.Equal(t, []string{
		entity.AdminChannel, entity.ProviderChannel(p.Id),
		entity.AdminChannel, entity.ProviderChannel(p.Id),
	}, hub.Channels())
}

func TestNotificationService_ActingProviderIsNotNotified(t *testing.T) {
	f := newFixture(t)
	admin := f.admin("Root Admin")
	p := f.provider("Acme Roofing", true)
	hub := &fakeBroadcaster{}
	svc := NewNotificationService(f.uow, f.bus, hub, f.metrics, f.log)

	e := events.NewLeadStatusUpdated(events.LeadRef{Id: 5, Name: "Ann", Status: "contacted", OldStatus: "new", ServiceProviderId: uintPtr(p.Id)}, p.Principal().Actor())
	require.NoError(t, svc.Handle(f.ctx, e))

	count, err := svc.UnreadCount(f.ctx, p.Principal())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count.Count)

	page, err := svc.List(f.ctx, admin.Principal(), &dto.NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	var data entity.NotificationData
	require.NoError(t, json.Unmarshal(page.Data[0].Data, &data))
	assert.Equal(t, "Lead 'Ann' status changed from new to contacted", data.Message)
	assert.Equal(t, "new", data.OldStatus)
	assert.Equal(t, []string{entity.AdminChannel}, hub.Channels())
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	f := newFixture(t)
	admin := f.admin("Root Admin")
	other := f.admin("Other Admin")
	svc := NewNotificationService(f.uow, f.bus, nil, f.metrics, f.log)

	for i := uint(1); i <= 3; i++ {
		require.NoError(t, svc.Handle(f.ctx, events.NewLeadAssigned(events.LeadRef{Id: i, Name: "Lead"}, 1, "Acme", false, events.Actor{})))
	}

	page, err := svc.List(f.ctx, admin.Principal(), &dto.NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	id := page.Data[0].Id

	err = svc.MarkAsRead(f.ctx, admin.Principal(), "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// Another admin's notification id is not visible.
	otherPage, err := svc.List(f.ctx, other.Principal(), &dto.NotificationListRequest{})
	require.NoError(t, err)
	err = svc.MarkAsRead(f.ctx, admin.Principal(), otherPage.Data[0].Id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, svc.MarkAsRead(f.ctx, admin.Principal(), id))
	require.NoError(t, svc.MarkAsRead(f.ctx, admin.Principal(), id))

	unread, err := svc.List(f.ctx, admin.Principal(), &dto.NotificationListRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread.Total)

	res, err := svc.MarkAllAsRead(f.ctx, admin.Principal())
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Updated)

	count, err := svc.UnreadCount(f.ctx, admin.Principal())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count.Count)
}

func TestNotificationService_ConsumesLeadEventsFromBus(t *testing.T) {
	f := newFixture(t)
	admin := f.admin("Root Admin")
	p := f.provider("Acme Roofing", true)
	f.location("austin", assignment.RoundRobin, p)

	bus := eventbus.NewGoChannelBus(nil)
	defer bus.Close()
	ctx, cancel := context.WithCancel(f.ctx)
	defer cancel()

	hub := &fakeBroadcaster{}
	notifications := NewNotificationService(f.uow, bus, hub, f.metrics, f.log)
	require.NoError(t, notifications.Start(ctx))

	leads := NewLeadService(f.uow, assignment.NewResolver(assignment.NewMemoryCursorStore()), bus, f.mail, f.metrics, f.log)
	_, err := leads.Capture(ctx, captureRequest("austin"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		count, err := notifications.UnreadCount(ctx, p.Principal())
		return err == nil && count.Count == 1
	}, 2*time.Second, 10*time.Millisecond)

	page, err := notifications.List(ctx, admin.Principal(), &dto.NotificationListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "lead_assigned", page.Data[0].Type)
}
