package contract

import (
	"context"

	"leadflow-be/internal/entity"
)

type SubscriptionRepository interface {
	FindByProviderId(ctx context.Context, providerId uint) (*entity.Subscription, error)
	Save(ctx context.Context, subscription *entity.Subscription) error
	FindActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	FindPlanById(ctx context.Context, id uint) (*entity.SubscriptionPlan, error)
	CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error
}
