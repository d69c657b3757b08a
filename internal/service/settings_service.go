package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"

	"github.com/patrickmn/go-cache"
)

type ISettingsService interface {
	List(ctx context.Context, group string) ([]dto.SettingResponse, error)
	UpdateGroup(ctx context.Context, group string, req *dto.UpdateSettingsRequest) ([]dto.SettingResponse, error)
	// RealtimeConfig merges stored pusher settings over the configured defaults.
	RealtimeConfig(ctx context.Context) (*entity.RealtimeConfig, error)
}

type settingsService struct {
	uowFactory unitofwork.RepositoryFactory
	defaults   entity.RealtimeConfig
	cache      *cache.Cache
	logger     logger.ILogger
}

func NewSettingsService(uowFactory unitofwork.RepositoryFactory, defaults entity.RealtimeConfig, log logger.ILogger) ISettingsService {
	return &settingsService{
		uowFactory: uowFactory,
		defaults:   defaults,
		cache:      cache.New(5*time.Minute, 10*time.Minute),
		logger:     log,
	}
}

func groupKey(group string) string { return "group:" + group }

func (s *settingsService) load(ctx context.Context, group string) ([]*entity.Setting, error) {
	if group != "" {
		if cached, ok := s.cache.Get(groupKey(group)); ok {
			return cached.([]*entity.Setting), nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	var (
		settings []*entity.Setting
		err      error
	)
	if group == "" {
		settings, err = uow.SettingRepository().FindAll(ctx)
	} else {
		settings, err = uow.SettingRepository().FindByGroup(ctx, group)
	}
	if err != nil {
		return nil, err
	}
	if group != "" {
		s.cache.SetDefault(groupKey(group), settings)
	}
	return settings, nil
}

func toSettingResponses(settings []*entity.Setting) []dto.SettingResponse {
	res := make([]dto.SettingResponse, 0, len(settings))
	for _, st := range settings {
		res = append(res, dto.SettingResponse{Group: st.Group, Key: st.Key, Value: json.RawMessage(st.Value)})
	}
	return res
}

func (s *settingsService) List(ctx context.Context, group string) ([]dto.SettingResponse, error) {
	settings, err := s.load(ctx, group)
	if err != nil {
		return nil, err
	}
	return toSettingResponses(settings), nil
}

// checkPusherValue rejects values of the wrong JSON type for known keys.
func checkPusherValue(key string, raw json.RawMessage) error {
	switch key {
	case entity.SettingPusherEnabled:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return fmt.Errorf("The %s field must be true or false.", key)
		}
	case entity.SettingPusherAppKey, entity.SettingPusherAppCluster:
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return fmt.Errorf("The %s must be a string.", key)
		}
	}
	return nil
}

func (s *settingsService) UpdateGroup(ctx context.Context, group string, req *dto.UpdateSettingsRequest) ([]dto.SettingResponse, error) {
	if group == "" {
		return nil, apperr.Validation(map[string]string{"group": "The group field is required."})
	}
	if group == entity.SettingGroupPusher {
		fields := map[string]string{}
		for key, raw := range req.Settings {
			if err := checkPusherValue(key, raw); err != nil {
				fields["settings."+key] = err.Error()
			}
		}
		if len(fields) > 0 {
			return nil, apperr.Validation(fields)
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	for key, raw := range req.Settings {
		if err := uow.SettingRepository().Upsert(ctx, &entity.Setting{Group: group, Key: key, Value: []byte(raw)}); err != nil {
			_ = uow.Rollback()
			return nil, fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	s.cache.Delete(groupKey(group))
	s.logger.Info("SettingsService", "Settings updated", map[string]interface{}{"group": group, "keys": len(req.Settings)})

	return s.List(ctx, group)
}

func (s *settingsService) RealtimeConfig(ctx context.Context) (*entity.RealtimeConfig, error) {
	settings, err := s.load(ctx, entity.SettingGroupPusher)
	if err != nil {
		return nil, err
	}

	cfg := s.defaults
	for _, st := range settings {
		switch st.Key {
		case entity.SettingPusherEnabled:
			_ = json.Unmarshal(st.Value, &cfg.Enabled)
		case entity.SettingPusherAppKey:
			_ = json.Unmarshal(st.Value, &cfg.AppKey)
		case entity.SettingPusherAppCluster:
			_ = json.Unmarshal(st.Value, &cfg.Cluster)
		}
	}
	return &cfg, nil
}
