package service

import (
	"context"
	"fmt"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/wsproto"
)

// IBroadcastingService signs channel subscriptions for dashboards.
type IBroadcastingService interface {
	Authorize(ctx context.Context, p entity.Principal, req *dto.ChannelAuthRequest) (*dto.ChannelAuthResponse, error)
}

type broadcastingService struct {
	appKey    string
	appSecret string
	providers IProviderService
	settings  ISettingsService
	logger    logger.ILogger
}

func NewBroadcastingService(appKey, appSecret string, providers IProviderService, settings ISettingsService, log logger.ILogger) IBroadcastingService {
	return &broadcastingService{
		appKey:    appKey,
		appSecret: appSecret,
		providers: providers,
		settings:  settings,
		logger:    log,
	}
}

// Authorize allows admins on the admin channel and each provider on its
// own private channel only.
func (s *broadcastingService) Authorize(ctx context.Context, p entity.Principal, req *dto.ChannelAuthRequest) (*dto.ChannelAuthResponse, error) {
	cfg, err := s.settings.RealtimeConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, apperr.New(apperr.KindUnavailable, "Realtime broadcasting is disabled")
	}

	switch {
	case req.ChannelName == entity.AdminChannel:
		if !p.IsAdmin() {
			return nil, s.deny(p, req.ChannelName)
		}
	case p.IsProvider() && req.ChannelName == entity.ProviderChannel(p.Id):
		if err := s.providers.CheckAccess(ctx, p.Id, false); err != nil {
			return nil, err
		}
	default:
		return nil, s.deny(p, req.ChannelName)
	}

	auth, err := wsproto.Sign(s.appKey, s.appSecret, req.SocketId, req.ChannelName)
	if err != nil {
		return nil, fmt.Errorf("failed to sign channel: %w", err)
	}
	return &dto.ChannelAuthResponse{Auth: auth}, nil
}

func (s *broadcastingService) deny(p entity.Principal, channel string) error {
	s.logger.Warn("BroadcastingService", "Channel authorization denied", map[string]interface{}{"role": string(p.Role), "id": p.Id, "channel": channel})
	return apperr.Forbidden("You are not allowed to listen on this channel.")
}
