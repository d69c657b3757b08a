package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"

	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type IProviderService interface {
	// CheckAccess gates every provider route. requireSubscription is set on lead routes.
	CheckAccess(ctx context.Context, providerId uint, requireSubscription bool) error
	Me(ctx context.Context, providerId uint) (*dto.ProviderResponse, error)
	SubscriptionStatus(ctx context.Context, providerId uint) (*dto.SubscriptionStatusResponse, error)

	List(ctx context.Context, req *dto.ProviderListRequest) ([]dto.ProviderResponse, error)
	Show(ctx context.Context, id uint) (*dto.ProviderResponse, error)
	Create(ctx context.Context, req *dto.CreateProviderRequest) (*dto.ProviderResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateProviderRequest) (*dto.ProviderResponse, error)
	UpdateSubscription(ctx context.Context, id uint, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionStatusResponse, error)
}

type providerService struct {
	uowFactory unitofwork.RepositoryFactory
	access     *cache.Cache
	logger     logger.ILogger
}

// accessTTL bounds how long a deactivation can take to reach an open session.
const accessTTL = 15 * time.Second

type accessState struct {
	active     bool
	subscribed bool
}

func NewProviderService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IProviderService {
	return &providerService{
		uowFactory: uowFactory,
		access:     cache.New(accessTTL, time.Minute),
		logger:     log,
	}
}

func accessKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func (s *providerService) CheckAccess(ctx context.Context, providerId uint, requireSubscription bool) error {
	var state accessState
	if cached, ok := s.access.Get(accessKey(providerId)); ok {
		state = cached.(accessState)
	} else {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		provider, err := uow.ServiceProviderRepository().FindById(ctx, providerId)
		if err != nil {
			return err
		}
		if provider == nil {
			return apperr.New(apperr.KindUnauthorized, "Account not found")
		}
		state = accessState{active: provider.IsActive, subscribed: provider.Subscription.GrantsAccess()}
		s.access.SetDefault(accessKey(providerId), state)
	}

	if !state.active {
		return apperr.New(apperr.KindAccountInactive, "Your account has been deactivated. Please contact support.")
	}
	if requireSubscription && !state.subscribed {
		return apperr.New(apperr.KindSubscriptionInactive, "An active subscription is required to access leads.")
	}
	return nil
}

func (s *providerService) find(ctx context.Context, id uint) (*entity.ServiceProvider, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	provider, err := uow.ServiceProviderRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, apperr.NotFound("Service provider")
	}
	return provider, nil
}

func (s *providerService) Me(ctx context.Context, providerId uint) (*dto.ProviderResponse, error) {
	return s.Show(ctx, providerId)
}

func (s *providerService) SubscriptionStatus(ctx context.Context, providerId uint) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindByProviderId(ctx, providerId)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatusResponse{
		HasActiveSubscription: sub.GrantsAccess(),
		Subscription:          mapper.ToSubscriptionResponse(sub),
	}, nil
}

func (s *providerService) List(ctx context.Context, req *dto.ProviderListRequest) ([]dto.ProviderResponse, error) {
	filter := contract.ProviderFilter{Search: strings.TrimSpace(req.Search)}
	if req.IsActive != "" {
		active := req.IsActive == "true" || req.IsActive == "1"
		filter.IsActive = &active
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	providers, err := uow.ServiceProviderRepository().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	res := make([]dto.ProviderResponse, 0, len(providers))
	for _, p := range providers {
		res = append(res, mapper.ToProviderResponse(p))
	}
	return res, nil
}

func (s *providerService) Show(ctx context.Context, id uint) (*dto.ProviderResponse, error) {
	provider, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := mapper.ToProviderResponse(provider)
	return &res, nil
}

func emailTaken(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation(map[string]string{"email": "The email has already been taken."})
	}
	return err
}

func (s *providerService) Create(ctx context.Context, req *dto.CreateProviderRequest) (*dto.ProviderResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	provider := &entity.ServiceProvider{
		Name:         req.Name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		IsActive:     req.IsActive == nil || *req.IsActive,
		PasswordHash: string(hash),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.ServiceProviderRepository().Create(ctx, provider); err != nil {
		_ = uow.Rollback()
		return nil, emailTaken(err)
	}
	if len(req.LocationIds) > 0 {
		if err := uow.ServiceProviderRepository().ReplaceLocations(ctx, provider.Id, req.LocationIds); err != nil {
			_ = uow.Rollback()
			return nil, fmt.Errorf("failed to attach locations: %w", err)
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.logger.Info("ProviderService", "Provider created", map[string]interface{}{"provider_id": provider.Id})

	return s.Show(ctx, provider.Id)
}

func (s *providerService) Update(ctx context.Context, id uint, req *dto.UpdateProviderRequest) (*dto.ProviderResponse, error) {
	provider, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		provider.Name = *req.Name
	}
	if req.Email != nil {
		provider.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		provider.Phone = *req.Phone
	}
	if req.Address != nil {
		provider.Address = *req.Address
	}
	if req.IsActive != nil {
		provider.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		provider.PasswordHash = string(hash)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.ServiceProviderRepository().Update(ctx, provider); err != nil {
		_ = uow.Rollback()
		return nil, emailTaken(err)
	}
	if req.LocationIds != nil {
		if err := uow.ServiceProviderRepository().ReplaceLocations(ctx, provider.Id, *req.LocationIds); err != nil {
			_ = uow.Rollback()
			return nil, fmt.Errorf("failed to attach locations: %w", err)
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.access.Delete(accessKey(id))
	s.logger.Info("ProviderService", "Provider updated", map[string]interface{}{"provider_id": id, "is_active": provider.IsActive})

	return s.Show(ctx, id)
}

func (s *providerService) UpdateSubscription(ctx context.Context, id uint, req *dto.UpdateSubscriptionRequest) (*dto.SubscriptionStatusResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if req.PlanId != nil {
		plan, err := uow.SubscriptionRepository().FindPlanById(ctx, *req.PlanId)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, apperr.Validation(map[string]string{"plan_id": "The selected plan id is invalid."})
		}
	}

	sub := &entity.Subscription{
		ServiceProviderId: id,
		PlanId:            req.PlanId,
		Status:            entity.SubscriptionStatus(req.Status),
		CurrentPeriodEnd:  req.CurrentPeriodEnd,
	}
	if err := uow.SubscriptionRepository().Save(ctx, sub); err != nil {
		return nil, err
	}
	s.access.Delete(accessKey(id))

	return s.SubscriptionStatus(ctx, id)
}
