package service

import (
	"context"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"
)

type IPlanService interface {
	// ListActive returns plans offered for sale, in display order.
	ListActive(ctx context.Context) ([]*dto.PlanResponse, error)
	// Show hides retired plans the same way ListActive does.
	Show(ctx context.Context, id uint) (*dto.PlanResponse, error)
}

type planService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPlanService(uowFactory unitofwork.RepositoryFactory) IPlanService {
	return &planService{uowFactory: uowFactory}
}

func (s *planService) ListActive(ctx context.Context) ([]*dto.PlanResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	plans, err := uow.SubscriptionRepository().FindActivePlans(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, mapper.ToPlanResponse(p))
	}
	return res, nil
}

func (s *planService) Show(ctx context.Context, id uint) (*dto.PlanResponse, error) {
	plan, err := s.uowFactory.NewUnitOfWork(ctx).SubscriptionRepository().FindPlanById(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, apperr.NotFound("Plan")
	}
	return mapper.ToPlanResponse(plan), nil
}
