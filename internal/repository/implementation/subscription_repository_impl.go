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
	"gorm.io/gorm/clause"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SubscriptionMapper
}

func NewSubscriptionRepository(db *gorm.DB) contract.SubscriptionRepository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSubscriptionMapper(),
	}
}

func (r *SubscriptionRepositoryImpl) FindByProviderId(ctx context.Context, providerId uint) (*entity.Subscription, error) {
	var m model.Subscription
	err := r.db.WithContext(ctx).
		Preload("Plan").
		Where("service_provider_id = ?", providerId).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

// Save upserts on service_provider_id; a provider has at most one subscription.
func (r *SubscriptionRepositoryImpl) Save(ctx context.Context, subscription *entity.Subscription) error {
	m := r.mapper.ToModel(subscription)
	err := r.db.WithContext(ctx).
		Omit("Plan").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "service_provider_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"plan_id", "status", "current_period_end", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	subscription.Id = m.Id
	return nil
}

func (r *SubscriptionRepositoryImpl) FindActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	var models []*model.SubscriptionPlan
	query := applySpecifications(r.db.WithContext(ctx),
		specification.Filter("is_active", true),
		specification.OrderBy{Field: "sort_order"},
		specification.OrderBy{Field: "id"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.PlansToEntities(models), nil
}

func (r *SubscriptionRepositoryImpl) FindPlanById(ctx context.Context, id uint) (*entity.SubscriptionPlan, error) {
	var m model.SubscriptionPlan
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.PlanToEntity(&m), nil
}

func (r *SubscriptionRepositoryImpl) CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	m := r.mapper.PlanToModel(plan)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	plan.Id = m.Id
	return nil
}
