package implementation

import (
	"context"
	"errors"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/model"
	"leadflow-be/internal/repository/contract"

	"gorm.io/gorm"
)

type LocationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProviderMapper
}

func NewLocationRepository(db *gorm.DB) contract.LocationRepository {
	return &LocationRepositoryImpl{db: db, mapper: mapper.NewProviderMapper()}
}

func (r *LocationRepositoryImpl) withPool(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("ServiceProviders", func(db *gorm.DB) *gorm.DB {
		return db.Order("service_providers.id ASC")
	})
}

func (r *LocationRepositoryImpl) Create(ctx context.Context, location *entity.Location) error {
	m := r.mapper.LocationToModel(location)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	location.Id = m.Id
	location.CreatedAt = m.CreatedAt
	location.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *LocationRepositoryImpl) Update(ctx context.Context, location *entity.Location) error {
	m := r.mapper.LocationToModel(location)
	return r.db.WithContext(ctx).
		Model(&model.Location{Id: m.Id}).
		Select("name", "slug", "address", "assignment_algorithm").
		Updates(m).Error
}

func (r *LocationRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Location{Id: id}).Association("ServiceProviders").Clear(); err != nil {
			return err
		}
		return tx.Delete(&model.Location{}, id).Error
	})
}

func (r *LocationRepositoryImpl) find(query *gorm.DB) (*entity.Location, error) {
	var m model.Location
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LocationToEntity(&m), nil
}

func (r *LocationRepositoryImpl) FindById(ctx context.Context, id uint) (*entity.Location, error) {
	return r.find(r.withPool(ctx).Where("id = ?", id))
}

func (r *LocationRepositoryImpl) FindBySlug(ctx context.Context, slug string) (*entity.Location, error) {
	return r.find(r.withPool(ctx).Where("slug = ?", slug))
}

func (r *LocationRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Location, error) {
	var models []*model.Location
	if err := r.withPool(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.LocationsToEntities(models), nil
}

func (r *LocationRepositoryImpl) ReplaceProviders(ctx context.Context, locationId uint, providerIds []uint) error {
	providers := make([]*model.ServiceProvider, 0, len(providerIds))
	for _, id := range providerIds {
		providers = append(providers, &model.ServiceProvider{Id: id})
	}
	return r.db.WithContext(ctx).
		Model(&model.Location{Id: locationId}).
		Association("ServiceProviders").
		Replace(providers)
}
