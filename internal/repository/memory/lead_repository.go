package memory

import (
	"context"
	"sort"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/repository/contract"
)

func copyUint(p *uint) *uint {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type LeadRepository struct {
	s *Store
	j *journal
}

func NewLeadRepository(s *Store) contract.LeadRepository {
	return &LeadRepository{s: s}
}

func (r *LeadRepository) Create(_ context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	lead.Id = r.s.nextId("leads")
	now := r.s.now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	stored := *lead
	stored.ServiceProviderId = copyUint(lead.ServiceProviderId)
	stored.Location, stored.ServiceProvider, stored.LeadNotes = nil, nil, nil
	keep(r.j, r.s.leads, lead.Id)
	r.s.leads[lead.Id] = stored
	return nil
}

func (r *LeadRepository) Update(_ context.Context, lead *entity.Lead) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.leads[lead.Id]
	if !ok {
		return ErrNotFound
	}
	stored.Status = lead.Status
	stored.ServiceProviderId = copyUint(lead.ServiceProviderId)
	stored.UpdatedAt = r.s.now()
	keep(r.j, r.s.leads, lead.Id)
	r.s.leads[lead.Id] = stored
	lead.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *LeadRepository) FindById(_ context.Context, id uint) (*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.leadHydrated(id), nil
}

func (r *LeadRepository) matches(l entity.Lead, f contract.LeadFilter) bool {
	if f.LocationId != 0 && l.LocationId != f.LocationId {
		return false
	}
	if f.ServiceProviderId != 0 && !l.IsAssignedTo(f.ServiceProviderId) {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.DateFrom != nil && l.CreatedAt.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && !l.CreatedAt.Before(*f.DateTo) {
		return false
	}
	return true
}

func (r *LeadRepository) FindAll(_ context.Context, filter contract.LeadFilter) ([]*entity.Lead, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []uint
	for id, l := range r.s.leads {
		if r.matches(l, filter) {
			ids = append(ids, id)
		}
	}
	// Newest first, id breaks ties.
	sort.Slice(ids, func(i, j int) bool {
		a, b := r.s.leads[ids[i]], r.s.leads[ids[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Id > b.Id
	})

	ids = paginate(ids, filter.Limit, filter.Offset)
	out := make([]*entity.Lead, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.s.leadHydrated(id))
	}
	return out, nil
}

func (r *LeadRepository) Count(_ context.Context, filter contract.LeadFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, l := range r.s.leads {
		if r.matches(l, filter) {
			n++
		}
	}
	return n, nil
}

func (r *LeadRepository) CountOpenByProvider(_ context.Context, providerIds []uint) (map[uint]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[uint]int64, len(providerIds))
	for _, id := range providerIds {
		counts[id] = 0
	}
	for _, l := range r.s.leads {
		if l.ServiceProviderId == nil || !l.Status.Open() {
			continue
		}
		if _, tracked := counts[*l.ServiceProviderId]; tracked {
			counts[*l.ServiceProviderId]++
		}
	}
	return counts, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type LeadNoteRepository struct {
	s *Store
	j *journal
}

func NewLeadNoteRepository(s *Store) contract.LeadNoteRepository {
	return &LeadNoteRepository{s: s}
}

func (r *LeadNoteRepository) Create(_ context.Context, note *entity.LeadNote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	note.Id = r.s.nextId("lead_notes")
	note.CreatedAt = r.s.now()
	stored := *note
	stored.UserId = copyUint(note.UserId)
	stored.ServiceProviderId = copyUint(note.ServiceProviderId)
	keep(r.j, r.s.notes, note.Id)
	r.s.notes[note.Id] = stored
	return nil
}

func (r *LeadNoteRepository) FindByLeadId(_ context.Context, leadId uint) ([]*entity.LeadNote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []*entity.LeadNote
	for _, n := range r.s.notes {
		if n.LeadId != leadId {
			continue
		}
		cp := n
		switch {
		case n.UserId != nil:
			if u, ok := r.s.users[*n.UserId]; ok {
				cp.AuthorName = u.Name
			}
		case n.ServiceProviderId != nil:
			if p, ok := r.s.providers[*n.ServiceProviderId]; ok {
				cp.AuthorName = p.Name
			}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}
