// Package kanban applies lead status moves to a local board at once and
// reconciles them with the API in the order they were made.
package kanban

import (
	"context"
	"errors"
	"sort"
	"sync"

	"leadflow-be/pkg/client"

	"go.uber.org/zap"
)

var (
	// ErrNoop is returned by Begin for a drop on the lead's current column
	// or outside any column.
	ErrNoop = errors.New("move changes nothing")
	// ErrCancelled is returned by Commit when an earlier move of the same
	// lead failed or was rolled back.
	ErrCancelled = errors.New("move cancelled by an earlier failure")

	ErrUnknownLead = errors.New("lead is not on the board")
	ErrFinished    = errors.New("transaction already finished")
)

// Writer persists a status change. *client.Client satisfies it.
type Writer interface {
	UpdateLeadStatus(ctx context.Context, id uint, status client.LeadStatus) (*client.Lead, error)
}

type Mutation struct {
	LeadId uint
	To     client.LeadStatus
}

type card struct {
	lead      client.Lead
	confirmed client.LeadStatus
	// queue holds the unfinished moves of the lead in the order they began.
	queue []*Tx
	// tail is closed when the newest queued move finishes.
	tail chan struct{}
}

// refresh shows the newest applied move still queued, or the confirmed
// status when there is none.
func (c *card) refresh() {
	c.lead.Status = c.confirmed
	for _, tx := range c.queue {
		if tx.applied && !tx.cancelled {
			c.lead.Status = tx.m.To
		}
	}
}

func (c *card) remove(tx *Tx) {
	for i, q := range c.queue {
		if q == tx {
			c.queue = append(c.queue[:i], c.queue[i+1:]...)
			return
		}
	}
}

// Board is safe for concurrent use.
type Board struct {
	writer  Writer
	logger  *zap.Logger
	onError func(leadId uint, err error)

	mu    sync.Mutex
	cards map[uint]*card
}

type Option func(*Board)

func WithLogger(l *zap.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// WithErrorHandler surfaces failed writes, e.g. as a toast.
func WithErrorHandler(f func(leadId uint, err error)) Option {
	return func(b *Board) { b.onError = f }
}

func NewBoard(writer Writer, opts ...Option) *Board {
	b := &Board{
		writer:  writer,
		logger:  zap.NewNop(),
		onError: func(uint, error) {},
		cards:   make(map[uint]*card),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load replaces the board with a fresh server listing. Leads with moves in
// flight keep their optimistic status.
func (b *Board) Load(leads []client.Lead) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := make(map[uint]*card, len(leads))
	for _, l := range leads {
		c, ok := b.cards[l.Id]
		if !ok {
			closed := make(chan struct{})
			close(closed)
			c = &card{tail: closed}
		}
		c.lead = l
		c.confirmed = l.Status
		c.refresh()
		next[l.Id] = c
	}
	b.cards = next
}

// Status is the status the board currently shows for a lead.
func (b *Board) Status(leadId uint) (client.LeadStatus, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.cards[leadId]
	if !ok {
		return "", false
	}
	return c.lead.Status, true
}

// Column lists the leads shown under status, oldest id first.
func (b *Board) Column(status client.LeadStatus) []client.Lead {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []client.Lead
	for _, c := range b.cards {
		if c.lead.Status == status {
			out = append(out, c.lead)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out
}

// Begin queues m behind earlier moves of the same lead. The move starts
// from the lead's current optimistic status, so a second drag builds on
// the first.
func (b *Board) Begin(m Mutation) (*Tx, error) {
	if !m.To.Valid() {
		return nil, ErrNoop
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.cards[m.LeadId]
	if !ok {
		return nil, ErrUnknownLead
	}
	if c.lead.Status == m.To {
		return nil, ErrNoop
	}

	tx := &Tx{
		board: b,
		card:  c,
		m:     m,
		from:  c.lead.Status,
		prev:  c.tail,
		done:  make(chan struct{}),
	}
	c.tail = tx.done
	c.queue = append(c.queue, tx)
	return tx, nil
}

// Move is Begin, Apply and Commit in one call. A no-op drop returns nil.
func (b *Board) Move(ctx context.Context, leadId uint, to client.LeadStatus) error {
	tx, err := b.Begin(Mutation{LeadId: leadId, To: to})
	if errors.Is(err, ErrNoop) {
		return nil
	}
	if err != nil {
		return err
	}
	tx.Apply()
	return tx.Commit(ctx)
}

// Drop applies the move now and commits it in the background. The returned
// channel yields the commit result once.
func (b *Board) Drop(ctx context.Context, leadId uint, to client.LeadStatus) <-chan error {
	result := make(chan error, 1)
	tx, err := b.Begin(Mutation{LeadId: leadId, To: to})
	if errors.Is(err, ErrNoop) {
		result <- nil
		return result
	}
	if err != nil {
		result <- err
		return result
	}
	tx.Apply()
	go func() { result <- tx.Commit(ctx) }()
	return result
}

// fail drops tx and cancels every move queued after it. The card falls
// back to the newest earlier move still pending, or the confirmed status.
// Callers hold b.mu.
func (b *Board) fail(tx *Tx) {
	c := tx.card
	later := false
	for _, q := range c.queue {
		if later {
			q.cancelled = true
		}
		if q == tx {
			later = true
		}
	}
	c.remove(tx)
	c.refresh()
}

// Tx is one queued status move.
type Tx struct {
	board *Board
	card  *card
	m     Mutation
	from  client.LeadStatus
	prev  <-chan struct{}
	done  chan struct{}

	applied   bool
	cancelled bool
	writing   bool
	finished  bool
}

func (tx *Tx) From() client.LeadStatus { return tx.from }
func (tx *Tx) To() client.LeadStatus   { return tx.m.To }

// Apply shows the move on the board. It does nothing once the lead's queue
// has been cancelled.
func (tx *Tx) Apply() {
	b := tx.board
	b.mu.Lock()
	defer b.mu.Unlock()
	if tx.applied || tx.finished || tx.cancelled {
		return
	}
	tx.applied = true
	tx.card.refresh()
}

// Commit waits for earlier moves of the lead, then writes this one. On
// failure the lead reverts to the status it had before this move and later
// queued moves are cancelled.
func (tx *Tx) Commit(ctx context.Context) error {
	select {
	case <-tx.prev:
	case <-ctx.Done():
		tx.Rollback()
		return ctx.Err()
	}

	b := tx.board
	b.mu.Lock()
	if tx.finished {
		b.mu.Unlock()
		return ErrFinished
	}
	if tx.cancelled {
		tx.card.remove(tx)
		tx.finishLocked()
		b.mu.Unlock()
		return ErrCancelled
	}
	tx.applied = true
	tx.writing = true
	tx.card.refresh()
	b.mu.Unlock()

	_, err := b.writer.UpdateLeadStatus(ctx, tx.m.LeadId, tx.m.To)

	b.mu.Lock()
	if err != nil {
		b.fail(tx)
	} else {
		tx.card.confirmed = tx.m.To
		tx.card.remove(tx)
		tx.card.refresh()
	}
	tx.finishLocked()
	b.mu.Unlock()

	if err != nil {
		b.logger.Warn("lead move failed", zap.Uint("lead_id", tx.m.LeadId), zap.String("to", string(tx.m.To)), zap.Error(err))
		b.onError(tx.m.LeadId, err)
	}
	return err
}

// Rollback abandons a move whose write has not been issued yet. The lead
// returns to the status it had before the move and later queued moves are
// cancelled.
func (tx *Tx) Rollback() {
	b := tx.board
	b.mu.Lock()
	defer b.mu.Unlock()
	if tx.finished || tx.writing {
		return
	}
	b.fail(tx)
	tx.finishLocked()
}

// finishLocked releases the next queued move, but never before every
// earlier move has finished.
func (tx *Tx) finishLocked() {
	tx.finished = true
	select {
	case <-tx.prev:
		close(tx.done)
	default:
		go func() {
			<-tx.prev
			close(tx.done)
		}()
	}
}
