package eventbus

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadflow-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoChannelBus_DeliversDecodedEvents(t *testing.T) {
	bus := NewGoChannelBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []events.Event
	require.NoError(t, bus.Subscribe(ctx, "test", func(_ context.Context, e events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
		return nil
	}))

	sent := events.NewLeadStatusUpdated(events.LeadRef{Id: 7, Name: "Ann", Status: "contacted", OldStatus: "new"}, events.Actor{})
	require.NoError(t, bus.Publish(ctx, sent))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, sent.EventId(), got[0].EventId())
	assert.Equal(t, events.LeadStatusUpdated, got[0].EventType())
	assert.Equal(t, "Lead 'Ann' status changed from new to contacted", got[0].Message())
}

func TestGoChannelBus_HandlerErrorDoesNotRedeliver(t *testing.T) {
	bus := NewGoChannelBus(nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	calls := 0
	require.NoError(t, bus.Subscribe(ctx, "test", func(_ context.Context, _ events.Event) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return errors.New("boom")
	}))

	require.NoError(t, bus.Publish(ctx, events.NewLeadAssigned(events.LeadRef{Id: 1, Name: "Bo"}, 3, "Acme", false, events.Actor{})))

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
