package implementation

import (
	"context"
	"errors"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/model"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ServiceProviderRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProviderMapper
}

func NewServiceProviderRepository(db *gorm.DB) contract.ServiceProviderRepository {
	return &ServiceProviderRepositoryImpl{db: db, mapper: mapper.NewProviderMapper()}
}

func (r *ServiceProviderRepositoryImpl) Create(ctx context.Context, provider *entity.ServiceProvider) error {
	m := r.mapper.ToModel(provider)
	if err := r.db.WithContext(ctx).Omit("Locations", "Subscription").Create(m).Error; err != nil {
		return err
	}
	provider.Id = m.Id
	provider.CreatedAt = m.CreatedAt
	provider.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *ServiceProviderRepositoryImpl) Update(ctx context.Context, provider *entity.ServiceProvider) error {
	m := r.mapper.ToModel(provider)
	return r.db.WithContext(ctx).
		Model(&model.ServiceProvider{Id: m.Id}).
		Select("name", "email", "phone", "address", "is_active", "password").
		Updates(m).Error
}

func (r *ServiceProviderRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.ServiceProvider, error) {
	var m model.ServiceProvider
	query := applySpecifications(r.db.WithContext(ctx).
		Preload("Locations").
		Preload("Subscription").
		Preload("Subscription.Plan"), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ServiceProviderRepositoryImpl) FindById(ctx context.Context, id uint) (*entity.ServiceProvider, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *ServiceProviderRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.ServiceProvider, error) {
	return r.findOne(ctx, specification.ByEmail{Email: email})
}

func (r *ServiceProviderRepositoryImpl) FindAll(ctx context.Context, filter contract.ProviderFilter) ([]*entity.ServiceProvider, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "id"}}
	if filter.Search != "" {
		specs = append(specs, specification.ProviderSearch{Term: filter.Search})
	}
	if filter.IsActive != nil {
		specs = append(specs, specification.Filter("is_active", *filter.IsActive))
	}

	var models []*model.ServiceProvider
	query := applySpecifications(r.db.WithContext(ctx).
		Preload("Locations").
		Preload("Subscription").
		Preload("Subscription.Plan"), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ServiceProviderRepositoryImpl) FindByIds(ctx context.Context, ids []uint) ([]*entity.ServiceProvider, error) {
	if len(ids) == 0 {
		return []*entity.ServiceProvider{}, nil
	}
	var models []*model.ServiceProvider
	query := applySpecifications(r.db.WithContext(ctx), specification.ByIDs{IDs: ids}, specification.OrderBy{Field: "id"})
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ServiceProviderRepositoryImpl) ReplaceLocations(ctx context.Context, providerId uint, locationIds []uint) error {
	locations := make([]*model.Location, 0, len(locationIds))
	for _, id := range locationIds {
		locations = append(locations, &model.Location{Id: id})
	}
	return r.db.WithContext(ctx).
		Model(&model.ServiceProvider{Id: providerId}).
		Association("Locations").
		Replace(locations)
}
