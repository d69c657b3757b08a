package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/assignment"

	"gorm.io/gorm"
)

type ILocationService interface {
	List(ctx context.Context) ([]dto.LocationResponse, error)
	Show(ctx context.Context, id uint) (*dto.LocationResponse, error)
	ShowPublic(ctx context.Context, slug string) (*dto.PublicLocationResponse, error)
	Create(ctx context.Context, req *dto.CreateLocationRequest) (*dto.LocationResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error)
	Delete(ctx context.Context, id uint) error
	AssignProviders(ctx context.Context, id uint, req *dto.AssignProvidersRequest) (*dto.LocationResponse, error)
}

type locationService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewLocationService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) ILocationService {
	return &locationService{uowFactory: uowFactory, logger: log}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses everything else into single dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func slugTaken(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Validation(map[string]string{"slug": "The slug has already been taken."})
	}
	return err
}

func (s *locationService) List(ctx context.Context) ([]dto.LocationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	locations, err := uow.LocationRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]dto.LocationResponse, 0, len(locations))
	for _, l := range locations {
		res = append(res, mapper.ToLocationResponse(l))
	}
	return res, nil
}

func (s *locationService) find(ctx context.Context, id uint) (*entity.Location, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	location, err := uow.LocationRepository().FindById(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, apperr.NotFound("Location")
	}
	return location, nil
}

func (s *locationService) Show(ctx context.Context, id uint) (*dto.LocationResponse, error) {
	location, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := mapper.ToLocationResponse(location)
	return &res, nil
}

func (s *locationService) ShowPublic(ctx context.Context, slug string) (*dto.PublicLocationResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	location, err := uow.LocationRepository().FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, apperr.NotFound("Location")
	}
	return &dto.PublicLocationResponse{Id: location.Id, Name: location.Name, Slug: location.Slug}, nil
}

func (s *locationService) Create(ctx context.Context, req *dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	slug := Slugify(req.Slug)
	if slug == "" {
		slug = Slugify(req.Name)
	}
	if slug == "" {
		return nil, apperr.Validation(map[string]string{"slug": "The slug field is required."})
	}

	location := &entity.Location{
		Name:                req.Name,
		Slug:                slug,
		Address:             req.Address,
		AssignmentAlgorithm: assignment.Algorithm(req.AssignmentAlgorithm),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LocationRepository().Create(ctx, location); err != nil {
		return nil, slugTaken(err)
	}
	s.logger.Info("LocationService", "Location created", map[string]interface{}{"location_id": location.Id, "slug": slug})

	res := mapper.ToLocationResponse(location)
	return &res, nil
}

func (s *locationService) Update(ctx context.Context, id uint, req *dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.Slug != nil {
		slug := Slugify(*req.Slug)
		if slug == "" {
			return nil, apperr.Validation(map[string]string{"slug": "The slug field is required."})
		}
		location.Slug = slug
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.AssignmentAlgorithm != nil {
		location.AssignmentAlgorithm = assignment.Algorithm(*req.AssignmentAlgorithm)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LocationRepository().Update(ctx, location); err != nil {
		return nil, slugTaken(err)
	}
	return s.Show(ctx, id)
}

func (s *locationService) Delete(ctx context.Context, id uint) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.LocationRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	s.logger.Info("LocationService", "Location deleted", map[string]interface{}{"location_id": id})
	return nil
}

// AssignProviders replaces the pool. Unknown provider ids are rejected.
func (s *locationService) AssignProviders(ctx context.Context, id uint, req *dto.AssignProvidersRequest) (*dto.LocationResponse, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	found, err := uow.ServiceProviderRepository().FindByIds(ctx, req.ServiceProviderIds)
	if err != nil {
		return nil, err
	}
	known := make(map[uint]bool, len(found))
	for _, p := range found {
		known[p.Id] = true
	}
	for _, pid := range req.ServiceProviderIds {
		if !known[pid] {
			return nil, apperr.Validation(map[string]string{"service_provider_ids": fmt.Sprintf("The selected service provider %d is invalid.", pid)})
		}
	}

	if err := uow.LocationRepository().ReplaceProviders(ctx, id, req.ServiceProviderIds); err != nil {
		return nil, err
	}
	s.logger.Info("LocationService", "Location pool updated", map[string]interface{}{"location_id": id, "providers": req.ServiceProviderIds})
	return s.Show(ctx, id)
}
