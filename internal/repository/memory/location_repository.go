package memory

import (
	"context"
	"sort"
	"strings"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/repository/contract"

	"gorm.io/gorm"
)

// Same sentinels as the gorm repositories so services handle both alike.
var (
	ErrNotFound  = gorm.ErrRecordNotFound
	ErrDuplicate = gorm.ErrDuplicatedKey
)

type LocationRepository struct {
	s *Store
	j *journal
}

func NewLocationRepository(s *Store) contract.LocationRepository {
	return &LocationRepository{s: s}
}

func (r *LocationRepository) slugTaken(slug string, except uint) bool {
	for id, l := range r.s.locations {
		if id != except && l.Slug == slug {
			return true
		}
	}
	return false
}

func (r *LocationRepository) Create(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(location.Slug, 0) {
		return ErrDuplicate
	}
	location.Id = r.s.nextId("locations")
	now := r.s.now()
	location.CreatedAt, location.UpdatedAt = now, now
	stored := *location
	stored.ServiceProviders = nil
	keep(r.j, r.s.locations, location.Id)
	r.s.locations[location.Id] = stored
	return nil
}

func (r *LocationRepository) Update(_ context.Context, location *entity.Location) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.locations[location.Id]
	if !ok {
		return ErrNotFound
	}
	if r.slugTaken(location.Slug, location.Id) {
		return ErrDuplicate
	}
	stored.Name = location.Name
	stored.Slug = location.Slug
	stored.Address = location.Address
	stored.AssignmentAlgorithm = location.AssignmentAlgorithm
	stored.UpdatedAt = r.s.now()
	keep(r.j, r.s.locations, location.Id)
	r.s.locations[location.Id] = stored
	return nil
}

func (r *LocationRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	keep(r.j, r.s.locations, id)
	keep(r.j, r.s.pools, id)
	delete(r.s.locations, id)
	delete(r.s.pools, id)
	return nil
}

func (r *LocationRepository) FindById(_ context.Context, id uint) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.locationWithPool(id), nil
}

func (r *LocationRepository) FindBySlug(_ context.Context, slug string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, l := range r.s.locations {
		if l.Slug == slug {
			return r.s.locationWithPool(id), nil
		}
	}
	return nil, nil
}

func (r *LocationRepository) FindAll(_ context.Context) ([]*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for id := range r.s.locations {
		out = append(out, r.s.locationWithPool(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *LocationRepository) ReplaceProviders(_ context.Context, locationId uint, providerIds []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.locations[locationId]; !ok {
		return ErrNotFound
	}
	keep(r.j, r.s.pools, locationId)
	r.s.pools[locationId] = uniqueIds(providerIds)
	return nil
}

func uniqueIds(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

type ServiceProviderRepository struct {
	s *Store
	j *journal
}

func NewServiceProviderRepository(s *Store) contract.ServiceProviderRepository {
	return &ServiceProviderRepository{s: s}
}

func (r *ServiceProviderRepository) emailTaken(email string, except uint) bool {
	for id, p := range r.s.providers {
		if id != except && strings.EqualFold(p.Email, email) {
			return true
		}
	}
	return false
}

func (r *ServiceProviderRepository) Create(_ context.Context, provider *entity.ServiceProvider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(provider.Email, 0) {
		return ErrDuplicate
	}
	provider.Id = r.s.nextId("service_providers")
	now := r.s.now()
	provider.CreatedAt, provider.UpdatedAt = now, now
	stored := *provider
	stored.Locations, stored.Subscription = nil, nil
	keep(r.j, r.s.providers, provider.Id)
	r.s.providers[provider.Id] = stored
	return nil
}

func (r *ServiceProviderRepository) Update(_ context.Context, provider *entity.ServiceProvider) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.providers[provider.Id]
	if !ok {
		return ErrNotFound
	}
	if r.emailTaken(provider.Email, provider.Id) {
		return ErrDuplicate
	}
	stored.Name = provider.Name
	stored.Email = provider.Email
	stored.Phone = provider.Phone
	stored.Address = provider.Address
	stored.IsActive = provider.IsActive
	stored.PasswordHash = provider.PasswordHash
	stored.UpdatedAt = r.s.now()
	keep(r.j, r.s.providers, provider.Id)
	r.s.providers[provider.Id] = stored
	return nil
}

func (r *ServiceProviderRepository) FindById(_ context.Context, id uint) (*entity.ServiceProvider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.providerHydrated(id), nil
}

func (r *ServiceProviderRepository) FindByEmail(_ context.Context, email string) (*entity.ServiceProvider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for id, p := range r.s.providers {
		if strings.EqualFold(p.Email, email) {
			return r.s.providerHydrated(id), nil
		}
	}
	return nil, nil
}

func (r *ServiceProviderRepository) FindAll(_ context.Context, filter contract.ProviderFilter) ([]*entity.ServiceProvider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	term := strings.ToLower(filter.Search)
	var out []*entity.ServiceProvider
	for id, p := range r.s.providers {
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) && !strings.Contains(strings.ToLower(p.Email), term) {
			continue
		}
		out = append(out, r.s.providerHydrated(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *ServiceProviderRepository) FindByIds(_ context.Context, ids []uint) ([]*entity.ServiceProvider, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*entity.ServiceProvider{}
	for _, id := range uniqueIds(ids) {
		if p, ok := r.s.providers[id]; ok {
			cp := p
			cp.Locations, cp.Subscription = nil, nil
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (r *ServiceProviderRepository) ReplaceLocations(_ context.Context, providerId uint, locationIds []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.providers[providerId]; !ok {
		return ErrNotFound
	}
	want := make(map[uint]bool, len(locationIds))
	for _, id := range locationIds {
		want[id] = true
	}
	for locId := range r.s.locations {
		pool := r.s.pools[locId]
		filtered := pool[:0:0]
		for _, pid := range pool {
			if pid != providerId {
				filtered = append(filtered, pid)
			}
		}
		if want[locId] {
			filtered = append(filtered, providerId)
		}
		keep(r.j, r.s.pools, locId)
		r.s.pools[locId] = filtered
	}
	return nil
}
