package kanban

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type write struct {
	leadId uint
	status client.LeadStatus
}

// gatedWriter blocks each write until the test releases it, and fails the
// writes listed in failures.
type gatedWriter struct {
	mu       sync.Mutex
	writes   []write
	failures map[client.LeadStatus]error
	gate     chan struct{}
	started  chan write
}

func newGatedWriter() *gatedWriter {
	return &gatedWriter{
		failures: make(map[client.LeadStatus]error),
		gate:     make(chan struct{}),
		started:  make(chan write, 8),
	}
}

func (w *gatedWriter) UpdateLeadStatus(ctx context.Context, id uint, status client.LeadStatus) (*client.Lead, error) {
	w.started <- write{id, status}
	select {
	case <-w.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, write{id, status})
	if err := w.failures[status]; err != nil {
		return nil, err
	}
	return &client.Lead{Id: id, Status: status}, nil
}

func (w *gatedWriter) release() { w.gate <- struct{}{} }

func (w *gatedWriter) recorded() []write {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]write(nil), w.writes...)
}

func (w *gatedWriter) awaitStart(t *testing.T) write {
	t.Helper()
	select {
	case got := <-w.started:
		return got
	case <-time.After(2 * time.Second):
		t.Fatal("write never started")
		return write{}
	}
}

func board(w Writer, opts ...Option) *Board {
	b := NewBoard(w, opts...)
	b.Load([]client.Lead{
		{Id: 1, Name: "Jane", Status: client.StatusNew},
		{Id: 2, Name: "Bob", Status: client.StatusContacted},
	})
	return b
}

func status(t *testing.T, b *Board, id uint) client.LeadStatus {
	t.Helper()
	s, ok := b.Status(id)
	require.True(t, ok)
	return s
}

func TestNoopDrops(t *testing.T) {
	b := board(newGatedWriter())

	_, err := b.Begin(Mutation{LeadId: 1, To: client.StatusNew})
	assert.ErrorIs(t, err, ErrNoop)

	_, err = b.Begin(Mutation{LeadId: 1, To: "archived"})
	assert.ErrorIs(t, err, ErrNoop)

	_, err = b.Begin(Mutation{LeadId: 99, To: client.StatusClosed})
	assert.ErrorIs(t, err, ErrUnknownLead)

	assert.NoError(t, b.Move(context.Background(), 2, client.StatusContacted))
}

func TestApplyIsImmediateAndCommitConfirms(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	b := board(w)

	result := b.Drop(context.Background(), 1, client.StatusClosed)
	assert.Equal(t, client.StatusClosed, status(t, b, 1))
	assert.Equal(t, []client.Lead{{Id: 1, Name: "Jane", Status: client.StatusClosed}}, b.Column(client.StatusClosed))

	w.awaitStart(t)
	w.release()
	require.NoError(t, <-result)
	assert.Equal(t, client.StatusClosed, status(t, b, 1))
}

func TestFailedWriteRevertsToSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	failure := errors.New("network down")
	w.failures[client.StatusClosed] = failure
	var surfaced []error
	b := board(w, WithErrorHandler(func(_ uint, err error) { surfaced = append(surfaced, err) }))

	result := b.Drop(context.Background(), 1, client.StatusClosed)
	assert.Equal(t, client.StatusClosed, status(t, b, 1))

	w.awaitStart(t)
	w.release()
	assert.ErrorIs(t, <-result, failure)
	assert.Equal(t, client.StatusNew, status(t, b, 1))
	assert.Equal(t, []error{failure}, surfaced)
}

func TestForbiddenWriteLeavesBoardUnchanged(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	w.failures[client.StatusClosed] = apperr.Forbidden("You are not assigned to this lead.")
	b := board(w)

	result := b.Drop(context.Background(), 2, client.StatusClosed)
	w.awaitStart(t)
	w.release()
	err := <-result
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
	assert.Equal(t, client.StatusContacted, status(t, b, 2))
	assert.Equal(t, client.StatusNew, status(t, b, 1))
}

func TestRapidDragsSerializeInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	b := board(w)
	ctx := context.Background()

	first := b.Drop(ctx, 1, client.StatusContacted)
	second := b.Drop(ctx, 1, client.StatusClosed)
	assert.Equal(t, client.StatusClosed, status(t, b, 1))

	assert.Equal(t, write{1, client.StatusContacted}, w.awaitStart(t))
	select {
	case got := <-w.started:
		t.Fatalf("second write %v started before the first finished", got)
	case <-time.After(50 * time.Millisecond):
	}

	w.release()
	require.NoError(t, <-first)
	assert.Equal(t, write{1, client.StatusClosed}, w.awaitStart(t))
	w.release()
	require.NoError(t, <-second)

	assert.Equal(t, []write{{1, client.StatusContacted}, {1, client.StatusClosed}}, w.recorded())
	assert.Equal(t, client.StatusClosed, status(t, b, 1))
}

func TestSecondDragStartsFromOptimisticState(t *testing.T) {
	b := board(newGatedWriter())

	tx1, err := b.Begin(Mutation{LeadId: 1, To: client.StatusContacted})
	require.NoError(t, err)
	tx1.Apply()

	_, err = b.Begin(Mutation{LeadId: 1, To: client.StatusContacted})
	assert.ErrorIs(t, err, ErrNoop)

	tx2, err := b.Begin(Mutation{LeadId: 1, To: client.StatusClosed})
	require.NoError(t, err)
	assert.Equal(t, client.StatusContacted, tx2.From())

	tx2.Rollback()
	tx1.Rollback()
	assert.Equal(t, client.StatusNew, status(t, b, 1))
}

func TestFailureCancelsQueuedMoves(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	w.failures[client.StatusContacted] = errors.New("conflict")
	b := board(w)
	ctx := context.Background()

	first := b.Drop(ctx, 1, client.StatusContacted)
	second := b.Drop(ctx, 1, client.StatusClosed)

	w.awaitStart(t)
	w.release()
	assert.Error(t, <-first)
	assert.ErrorIs(t, <-second, ErrCancelled)

	assert.Equal(t, []write{{1, client.StatusContacted}}, w.recorded())
	assert.Equal(t, client.StatusNew, status(t, b, 1))
}

func TestRollbackBeforeCommit(t *testing.T) {
	b := board(newGatedWriter())

	tx, err := b.Begin(Mutation{LeadId: 1, To: client.StatusClosed})
	require.NoError(t, err)
	tx.Apply()
	assert.Equal(t, client.StatusClosed, status(t, b, 1))

	tx.Rollback()
	tx.Rollback()
	assert.Equal(t, client.StatusNew, status(t, b, 1))
	assert.ErrorIs(t, tx.Commit(context.Background()), ErrFinished)
}

func TestRollbackBehindWriteInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	b := board(w)
	ctx := context.Background()

	first := b.Drop(ctx, 1, client.StatusContacted)
	assert.Equal(t, write{1, client.StatusContacted}, w.awaitStart(t))

	second, err := b.Begin(Mutation{LeadId: 1, To: client.StatusClosed})
	require.NoError(t, err)
	second.Apply()
	second.Rollback()
	assert.Equal(t, client.StatusContacted, status(t, b, 1))

	third, err := b.Begin(Mutation{LeadId: 1, To: client.StatusClosed})
	require.NoError(t, err)
	assert.Equal(t, client.StatusContacted, third.From())
	third.Apply()
	result := make(chan error, 1)
	go func() { result <- third.Commit(ctx) }()

	select {
	case got := <-w.started:
		t.Fatalf("write %v started before the first finished", got)
	case <-time.After(50 * time.Millisecond):
	}

	w.release()
	require.NoError(t, <-first)
	assert.Equal(t, write{1, client.StatusClosed}, w.awaitStart(t))
	w.release()
	require.NoError(t, <-result)

	assert.Equal(t, []write{{1, client.StatusContacted}, {1, client.StatusClosed}}, w.recorded())
	assert.Equal(t, client.StatusClosed, status(t, b, 1))
}

func TestRollbackLaterMoveKeepsEarlierQueued(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	b := board(w)

	first, err := b.Begin(Mutation{LeadId: 1, To: client.StatusContacted})
	require.NoError(t, err)
	first.Apply()
	second, err := b.Begin(Mutation{LeadId: 1, To: client.StatusClosed})
	require.NoError(t, err)
	second.Apply()

	second.Rollback()
	assert.Equal(t, client.StatusContacted, status(t, b, 1))

	result := make(chan error, 1)
	go func() { result <- first.Commit(context.Background()) }()
	w.awaitStart(t)
	w.release()
	require.NoError(t, <-result)
	assert.Equal(t, client.StatusContacted, status(t, b, 1))
}

func TestLoadKeepsMovesInFlight(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	b := board(w)

	result := b.Drop(context.Background(), 1, client.StatusClosed)
	w.awaitStart(t)

	// A refetch that raced the write still shows the old status.
	b.Load([]client.Lead{
		{Id: 1, Name: "Jane", Status: client.StatusNew},
		{Id: 2, Name: "Bob", Status: client.StatusClosed},
		{Id: 3, Name: "New", Status: client.StatusNew},
	})
	assert.Equal(t, client.StatusClosed, status(t, b, 1))
	assert.Equal(t, client.StatusClosed, status(t, b, 2))
	assert.Len(t, b.Column(client.StatusNew), 1)

	w.release()
	require.NoError(t, <-result)

	b.Load([]client.Lead{{Id: 1, Name: "Jane", Status: client.StatusClosed}})
	assert.Equal(t, client.StatusClosed, status(t, b, 1))
	_, ok := b.Status(2)
	assert.False(t, ok)
}

func TestCommitHonoursContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := newGatedWriter()
	b := board(w)

	first := b.Drop(context.Background(), 1, client.StatusContacted)
	w.awaitStart(t)

	ctx, cancel := context.WithCancel(context.Background())
	tx, err := b.Begin(Mutation{LeadId: 1, To: client.StatusClosed})
	require.NoError(t, err)
	tx.Apply()
	cancel()
	assert.ErrorIs(t, tx.Commit(ctx), context.Canceled)

	w.release()
	require.NoError(t, <-first)
	assert.Equal(t, client.StatusContacted, status(t, b, 1))
}
