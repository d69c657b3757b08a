package service

import (
	"context"
	"sync"
	"testing"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/pkg/mailer"
	"leadflow-be/internal/pkg/metrics"
	"leadflow-be/internal/repository/memory"
	"leadflow-be/pkg/assignment"
	"leadflow-be/pkg/eventbus"
	"leadflow-be/pkg/events"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
	return nil
}

func (b *recordingBus) Subscribe(context.Context, string, eventbus.Handler) error { return nil }
func (b *recordingBus) Close() error                                              { return nil }

func (b *recordingBus) Events() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.published...)
}

type sentMail struct {
	to   string
	mail mailer.LeadAssignedMail
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendLeadAssigned(to string, mail mailer.LeadAssignedMail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, mail: mail})
	return nil
}

type broadcast struct {
	channel string
	event   string
	data    interface{}
}

type fakeBroadcaster struct {
	mu  sync.Mutex
	out []broadcast
}

func (f *fakeBroadcaster) Broadcast(channel, event string, data interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.out = append(f.out, broadcast{channel: channel, event: event, data: data})
	return nil
}

func (f *fakeBroadcaster) Channels() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, b := range f.out {
		out = append(out, b.channel)
	}
	return out
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *memory.Store
	uow     *memory.RepositoryFactory
	bus     *recordingBus
	mail    *fakeMailer
	metrics *metrics.Metrics
	log     logger.ILogger
}

func newFixture(t *testing.T) *fixture {
	store := memory.NewStore()
	return &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   store,
		uow:     memory.NewRepositoryFactory(store),
		bus:     &recordingBus{},
		mail:    &fakeMailer{},
		metrics: metrics.New(),
		log:     logger.NewNopLogger(),
	}
}

func (f *fixture) leadService() ILeadService {
	return NewLeadService(f.uow, assignment.NewResolver(assignment.NewMemoryCursorStore()), f.bus, f.mail, f.metrics, f.log)
}

func (f *fixture) provider(name string, active bool) *entity.ServiceProvider {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(f.t, err)
	p := &entity.ServiceProvider{
		Name:         name,
		Email:        Slugify(name) + "@example.com",
		IsActive:     active,
		PasswordHash: string(hash),
	}
	require.NoError(f.t, memory.NewServiceProviderRepository(f.store).Create(f.ctx, p))
	return p
}

func (f *fixture) subscribe(providerId uint, status entity.SubscriptionStatus) {
	require.NoError(f.t, memory.NewSubscriptionRepository(f.store).Save(f.ctx, &entity.Subscription{
		ServiceProviderId: providerId,
		Status:            status,
	}))
}

func (f *fixture) admin(name string) *entity.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(f.t, err)
	u := &entity.User{Name: name, Email: Slugify(name) + "@admin.test", PasswordHash: string(hash)}
	require.NoError(f.t, memory.NewUserRepository(f.store).Create(f.ctx, u))
	return u
}

func (f *fixture) location(slug string, algorithm assignment.Algorithm, pool ...*entity.ServiceProvider) *entity.Location {
	repo := memory.NewLocationRepository(f.store)
	l := &entity.Location{Name: slug, Slug: slug, AssignmentAlgorithm: algorithm}
	require.NoError(f.t, repo.Create(f.ctx, l))
	ids := make([]uint, 0, len(pool))
	for _, p := range pool {
		ids = append(ids, p.Id)
	}
	require.NoError(f.t, repo.ReplaceProviders(f.ctx, l.Id, ids))
	return l
}

func (f *fixture) lead(locationId uint, providerId *uint, status entity.LeadStatus) *entity.Lead {
	l := &entity.Lead{
		LocationId:        locationId,
		ServiceProviderId: providerId,
		Name:              "Ann Lee",
		Phone:             "555-0100",
		Email:             "ann@example.com",
		ZipCode:           "10001",
		ProjectType:       entity.ProjectTypeResidential,
		Timing:            entity.TimingImmediate,
		Status:            status,
	}
	require.NoError(f.t, memory.NewLeadRepository(f.store).Create(f.ctx, l))
	return l
}

func uintPtr(v uint) *uint { return &v }
