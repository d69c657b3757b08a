package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenType = "Bearer"

type IAuthService interface {
	LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	LoginProvider(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RegisterProvider(ctx context.Context, req *dto.RegisterProviderRequest) (*dto.LoginResponse, error)
}

type authService struct {
	uowFactory unitofwork.RepositoryFactory
	tokens     *serverutils.TokenManager
	logger     logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, tokens *serverutils.TokenManager, log logger.ILogger) IAuthService {
	return &authService{
		uowFactory: uowFactory,
		tokens:     tokens,
		logger:     log,
	}
}

func invalidCredentials() error {
	return apperr.New(apperr.KindUnauthorized, "Invalid credentials")
}

func (s *authService) LoginAdmin(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalidCredentials()
	}

	token, err := s.tokens.Issue(user.Principal())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	s.logger.Info("AuthService", "Admin logged in", map[string]interface{}{"user_id": user.Id})

	return &dto.LoginResponse{
		Token:     token,
		TokenType: tokenType,
		Role:      string(entity.RoleAdmin),
		User:      dto.AdminUserResponse{Id: user.Id, Name: user.Name, Email: user.Email},
	}, nil
}

func (s *authService) LoginProvider(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	provider, err := uow.ServiceProviderRepository().FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, err
	}
	if provider == nil || provider.PasswordHash == "" {
		return nil, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(provider.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalidCredentials()
	}
	if !provider.IsActive {
		return nil, apperr.New(apperr.KindAccountInactive, "Your account has been deactivated. Please contact support.")
	}

	return s.providerSession(provider)
}

func (s *authService) RegisterProvider(ctx context.Context, req *dto.RegisterProviderRequest) (*dto.LoginResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	provider := &entity.ServiceProvider{
		Name:         req.Name,
		Email:        strings.TrimSpace(req.Email),
		Phone:        req.Phone,
		Address:      req.Address,
		IsActive:     true,
		PasswordHash: string(hash),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ServiceProviderRepository().Create(ctx, provider); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation(map[string]string{"email": "The email has already been taken."})
		}
		return nil, err
	}
	s.logger.Info("AuthService", "Provider registered", map[string]interface{}{"provider_id": provider.Id})

	return s.providerSession(provider)
}

func (s *authService) providerSession(provider *entity.ServiceProvider) (*dto.LoginResponse, error) {
	token, err := s.tokens.Issue(provider.Principal())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &dto.LoginResponse{
		Token:     token,
		TokenType: tokenType,
		Role:      string(entity.RoleProvider),
		User:      mapper.ToProviderResponse(provider),
	}, nil
}
