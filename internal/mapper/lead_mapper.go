package mapper

import (
	"leadflow-be/internal/entity"
	"leadflow-be/internal/model"
)

type LeadMapper struct {
	providerMapper *ProviderMapper
}

func NewLeadMapper() *LeadMapper {
	return &LeadMapper{providerMapper: NewProviderMapper()}
}

func (m *LeadMapper) ToEntity(l *model.Lead) *entity.Lead {
	if l == nil {
		return nil
	}
	e := &entity.Lead{
		Id:                l.Id,
		LocationId:        l.LocationId,
		ServiceProviderId: l.ServiceProviderId,
		Name:              l.Name,
		Phone:             l.Phone,
		Email:             l.Email,
		ZipCode:           l.ZipCode,
		ProjectType:       entity.ProjectType(l.ProjectType),
		Timing:            entity.Timing(l.Timing),
		Notes:             l.Notes,
		Status:            entity.LeadStatus(l.Status),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
		Location:          m.providerMapper.LocationToEntity(l.Location),
		ServiceProvider:   m.providerMapper.ToEntity(l.ServiceProvider),
	}
	for i := range l.LeadNotes {
		e.LeadNotes = append(e.LeadNotes, m.NoteToEntity(&l.LeadNotes[i]))
	}
	return e
}

// ToModel drops relations; they are written through their own repositories.
func (m *LeadMapper) ToModel(l *entity.Lead) *model.Lead {
	if l == nil {
		return nil
	}
	return &model.Lead{
		Id:                l.Id,
		LocationId:        l.LocationId,
		ServiceProviderId: l.ServiceProviderId,
		Name:              l.Name,
		Phone:             l.Phone,
		Email:             l.Email,
		ZipCode:           l.ZipCode,
		ProjectType:       string(l.ProjectType),
		Timing:            string(l.Timing),
		Notes:             l.Notes,
		Status:            string(l.Status),
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

func (m *LeadMapper) ToEntities(models []*model.Lead) []*entity.Lead {
	out := make([]*entity.Lead, 0, len(models))
	for _, l := range models {
		out = append(out, m.ToEntity(l))
	}
	return out
}

func (m *LeadMapper) NoteToEntity(n *model.LeadNote) *entity.LeadNote {
	if n == nil {
		return nil
	}
	e := &entity.LeadNote{
		Id:                n.Id,
		LeadId:            n.LeadId,
		UserId:            n.UserId,
		ServiceProviderId: n.ServiceProviderId,
		Note:              n.Note,
		Type:              entity.NoteType(n.Type),
		CreatedAt:         n.CreatedAt,
	}
	switch {
	case n.User != nil:
		e.AuthorName = n.User.Name
	case n.ServiceProvider != nil:
		e.AuthorName = n.ServiceProvider.Name
	}
	return e
}

func (m *LeadMapper) NoteToModel(n *entity.LeadNote) *model.LeadNote {
	if n == nil {
		return nil
	}
	return &model.LeadNote{
		Id:                n.Id,
		LeadId:            n.LeadId,
		UserId:            n.UserId,
		ServiceProviderId: n.ServiceProviderId,
		Note:              n.Note,
		Type:              string(n.Type),
		CreatedAt:         n.CreatedAt,
	}
}
