package mapper

import (
	"leadflow-be/internal/entity"
	"leadflow-be/internal/model"
	"leadflow-be/pkg/assignment"
)

// ProviderMapper maps service providers and the locations whose pools they join.
type ProviderMapper struct {
	subscriptionMapper *SubscriptionMapper
}

func NewProviderMapper() *ProviderMapper {
	return &ProviderMapper{subscriptionMapper: NewSubscriptionMapper()}
}

func (m *ProviderMapper) ToEntity(p *model.ServiceProvider) *entity.ServiceProvider {
	if p == nil {
		return nil
	}
	e := &entity.ServiceProvider{
		Id:           p.Id,
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Address:      p.Address,
		IsActive:     p.IsActive,
		PasswordHash: p.Password,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Subscription: m.subscriptionMapper.ToEntity(p.Subscription),
	}
	for _, l := range p.Locations {
		// Shallow: pools are not loaded back through the provider side.
		e.Locations = append(e.Locations, &entity.Location{
			Id:                  l.Id,
			Name:                l.Name,
			Slug:                l.Slug,
			Address:             l.Address,
			AssignmentAlgorithm: assignment.Algorithm(l.AssignmentAlgorithm),
		})
	}
	return e
}

func (m *ProviderMapper) ToModel(p *entity.ServiceProvider) *model.ServiceProvider {
	if p == nil {
		return nil
	}
	return &model.ServiceProvider{
		Id:        p.Id,
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		Address:   p.Address,
		IsActive:  p.IsActive,
		Password:  p.PasswordHash,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (m *ProviderMapper) ToEntities(models []*model.ServiceProvider) []*entity.ServiceProvider {
	out := make([]*entity.ServiceProvider, 0, len(models))
	for _, p := range models {
		out = append(out, m.ToEntity(p))
	}
	return out
}

func (m *ProviderMapper) LocationToEntity(l *model.Location) *entity.Location {
	if l == nil {
		return nil
	}
	e := &entity.Location{
		Id:                  l.Id,
		Name:                l.Name,
		Slug:                l.Slug,
		Address:             l.Address,
		AssignmentAlgorithm: assignment.Algorithm(l.AssignmentAlgorithm),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
	for _, p := range l.ServiceProviders {
		e.ServiceProviders = append(e.ServiceProviders, &entity.ServiceProvider{
			Id:       p.Id,
			Name:     p.Name,
			Email:    p.Email,
			Phone:    p.Phone,
			Address:  p.Address,
			IsActive: p.IsActive,
		})
	}
	return e
}

func (m *ProviderMapper) LocationToModel(l *entity.Location) *model.Location {
	if l == nil {
		return nil
	}
	return &model.Location{
		Id:                  l.Id,
		Name:                l.Name,
		Slug:                l.Slug,
		Address:             l.Address,
		AssignmentAlgorithm: string(l.AssignmentAlgorithm),
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

func (m *ProviderMapper) LocationsToEntities(models []*model.Location) []*entity.Location {
	out := make([]*entity.Location, 0, len(models))
	for _, l := range models {
		out = append(out, m.LocationToEntity(l))
	}
	return out
}
