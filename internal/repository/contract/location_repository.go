package contract

import (
	"context"

	"leadflow-be/internal/entity"
)

type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	Update(ctx context.Context, location *entity.Location) error
	Delete(ctx context.Context, id uint) error
	// FindById and FindBySlug load the provider pool ordered by provider id.
	FindById(ctx context.Context, id uint) (*entity.Location, error)
	FindBySlug(ctx context.Context, slug string) (*entity.Location, error)
	FindAll(ctx context.Context) ([]*entity.Location, error)
	// ReplaceProviders sets the pool to exactly providerIds.
	ReplaceProviders(ctx context.Context, locationId uint, providerIds []uint) error
}

type ProviderFilter struct {
	Search   string
	IsActive *bool
}

type ServiceProviderRepository interface {
	Create(ctx context.Context, provider *entity.ServiceProvider) error
	Update(ctx context.Context, provider *entity.ServiceProvider) error
	// FindById loads locations and subscription (with plan).
	FindById(ctx context.Context, id uint) (*entity.ServiceProvider, error)
	FindByEmail(ctx context.Context, email string) (*entity.ServiceProvider, error)
	FindAll(ctx context.Context, filter ProviderFilter) ([]*entity.ServiceProvider, error)
	FindByIds(ctx context.Context, ids []uint) ([]*entity.ServiceProvider, error)
	// ReplaceLocations sets the locations whose pools contain the provider.
	ReplaceLocations(ctx context.Context, providerId uint, locationIds []uint) error
}

type AssignmentCursorRepository interface {
	// Next increments and returns the round robin position for the location.
	Next(ctx context.Context, locationId uint) (uint64, error)
}
