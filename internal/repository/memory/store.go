// Package memory holds process-local repositories. They back the API when no
// database is configured and the service tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"leadflow-be/internal/entity"
)

// Store is shared by every repository of one factory. Entities are stored
// by value so callers never alias stored state.
type Store struct {
	mu  sync.RWMutex
	seq map[string]uint

	leads         map[uint]entity.Lead
	notes         map[uint]entity.LeadNote
	locations     map[uint]entity.Location
	pools         map[uint][]uint // location id -> provider ids
	providers     map[uint]entity.ServiceProvider
	subscriptions map[uint]entity.Subscription // keyed by provider id
	plans         map[uint]entity.SubscriptionPlan
	users         map[uint]entity.User
	settings      map[string]entity.Setting // group + "/" + key
	notifications map[string]entity.Notification
	cursors       map[uint]uint64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		seq:           make(map[string]uint),
		leads:         make(map[uint]entity.Lead),
		notes:         make(map[uint]entity.LeadNote),
		locations:     make(map[uint]entity.Location),
		pools:         make(map[uint][]uint),
		providers:     make(map[uint]entity.ServiceProvider),
		subscriptions: make(map[uint]entity.Subscription),
		plans:         make(map[uint]entity.SubscriptionPlan),
		users:         make(map[uint]entity.User),
		settings:      make(map[string]entity.Setting),
		notifications: make(map[string]entity.Notification),
		cursors:       make(map[uint]uint64),
		now:           time.Now,
	}
}

// nextId must be called with mu held for writing.
func (s *Store) nextId(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

// Callers hold at least a read lock for the hydrate helpers below.

func (s *Store) locationWithPool(id uint) *entity.Location {
	l, ok := s.locations[id]
	if !ok {
		return nil
	}
	l.ServiceProviders = nil
	ids := append([]uint(nil), s.pools[id]...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, pid := range ids {
		if p, ok := s.providers[pid]; ok {
			p.Locations = nil
			p.Subscription = nil
			cp := p
			cp.PasswordHash = ""
			l.ServiceProviders = append(l.ServiceProviders, &cp)
		}
	}
	return &l
}

func (s *Store) providerHydrated(id uint) *entity.ServiceProvider {
	p, ok := s.providers[id]
	if !ok {
		return nil
	}
	p.Locations = nil
	for locId, ids := range s.pools {
		for _, pid := range ids {
			if pid == id {
				l := s.locations[locId]
				l.ServiceProviders = nil
				p.Locations = append(p.Locations, &l)
			}
		}
	}
	sort.Slice(p.Locations, func(i, j int) bool { return p.Locations[i].Id < p.Locations[j].Id })
	p.Subscription = s.subscriptionHydrated(id)
	return &p
}

func (s *Store) subscriptionHydrated(providerId uint) *entity.Subscription {
	sub, ok := s.subscriptions[providerId]
	if !ok {
		return nil
	}
	if sub.PlanId != nil {
		if plan, ok := s.plans[*sub.PlanId]; ok {
			sub.Plan = &plan
		}
	}
	return &sub
}

func (s *Store) leadHydrated(id uint) *entity.Lead {
	l, ok := s.leads[id]
	if !ok {
		return nil
	}
	l.LeadNotes = nil
	if loc, ok := s.locations[l.LocationId]; ok {
		loc.ServiceProviders = nil
		l.Location = &loc
	}
	l.ServiceProvider = nil
	if l.ServiceProviderId != nil {
		if p, ok := s.providers[*l.ServiceProviderId]; ok {
			p.Locations = nil
			p.Subscription = nil
			l.ServiceProvider = &p
		}
	}
	return &l
}
