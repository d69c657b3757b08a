package mapper

import (
	"leadflow-be/internal/entity"
	"leadflow-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}
	features := make([]string, 0, len(p.Features))
	features = append(features, p.Features...)
	return &entity.SubscriptionPlan{
		Id:        p.Id,
		Name:      p.Name,
		PriceId:   p.PriceId,
		Price:     p.Price,
		Interval:  entity.BillingInterval(p.Interval),
		TrialDays: p.TrialDays,
		Features:  features,
		IsActive:  p.IsActive,
		SortOrder: p.SortOrder,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPlan{
		Id:        p.Id,
		Name:      p.Name,
		PriceId:   p.PriceId,
		Price:     p.Price,
		Interval:  string(p.Interval),
		TrialDays: p.TrialDays,
		Features:  p.Features,
		IsActive:  p.IsActive,
		SortOrder: p.SortOrder,
	}
}

func (m *SubscriptionMapper) PlansToEntities(models []*model.SubscriptionPlan) []*entity.SubscriptionPlan {
	out := make([]*entity.SubscriptionPlan, 0, len(models))
	for _, p := range models {
		out = append(out, m.PlanToEntity(p))
	}
	return out
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                s.Id,
		ServiceProviderId: s.ServiceProviderId,
		PlanId:            s.PlanId,
		Status:            entity.SubscriptionStatus(s.Status),
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
		Plan:              m.PlanToEntity(s.Plan),
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                s.Id,
		ServiceProviderId: s.ServiceProviderId,
		PlanId:            s.PlanId,
		Status:            string(s.Status),
		CurrentPeriodEnd:  s.CurrentPeriodEnd,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
