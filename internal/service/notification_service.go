package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/pkg/logger"
	"leadflow-be/internal/pkg/metrics"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/eventbus"
	"leadflow-be/pkg/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	notificationConsumer        = "notification-service"
	defaultNotificationsPerPage = 20
)

// Broadcaster pushes an event frame to every socket on a channel.
// Typically implemented by the realtime Hub.
type Broadcaster interface {
	Broadcast(channel, event string, data interface{}) error
}

type INotificationService interface {
	// Start subscribes to lead events. It returns once the subscription is live.
	Start(ctx context.Context) error
	Handle(ctx context.Context, e events.Event) error

	List(ctx context.Context, p entity.Principal, req *dto.NotificationListRequest) (*dto.PageResponse[dto.NotificationResponse], error)
	UnreadCount(ctx context.Context, p entity.Principal) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, p entity.Principal, id string) error
	MarkAllAsRead(ctx context.Context, p entity.Principal) (*dto.MarkAllReadResponse, error)
}

type notificationService struct {
	uowFactory  unitofwork.RepositoryFactory
	bus         eventbus.Bus
	broadcaster Broadcaster
	metrics     *metrics.Metrics
	logger      logger.ILogger
	now         func() time.Time
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, bus eventbus.Bus, broadcaster Broadcaster, m *metrics.Metrics, log logger.ILogger) INotificationService {
	return &notificationService{
		uowFactory:  uowFactory,
		bus:         bus,
		broadcaster: broadcaster,
		metrics:     m,
		logger:      log,
		now:         time.Now,
	}
}

func (s *notificationService) Start(ctx context.Context) error {
	if err := s.bus.Subscribe(ctx, notificationConsumer, s.Handle); err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NotificationService", "Notification service started", nil)
	return nil
}

// notificationId is stable per (event, recipient) so a redelivered event
// does not notify twice.
func notificationId(eventId string, to entity.Recipient) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(eventId+"/"+to.String())).String()
}

// Handle stores one notification per recipient, then pushes the event to
// the admin channel and, when notified, the assigned provider's channel.
func (s *notificationService) Handle(ctx context.Context, e events.Event) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	recipients, err := s.recipientsFor(ctx, uow, e)
	if err != nil {
		return err
	}

	providerNotified := false
	for _, to := range recipients {
		if to.Type == entity.RoleProvider {
			providerNotified = true
		}
		n := entity.NewNotificationFromEvent(notificationId(e.EventId(), to), e, to)
		if err := uow.NotificationRepository().Create(ctx, n); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return fmt.Errorf("failed to store notification: %w", err)
		}
		s.metrics.NotificationsOut.Inc()
	}

	payload := events.ToEnvelope(e)
	s.deliver(entity.AdminChannel, e, payload)
	if providerNotified {
		s.deliver(entity.ProviderChannel(*e.Lead().ServiceProviderId), e, payload)
	}

	s.logger.Info("NotificationService", fmt.Sprintf("Processed event: %s", e.EventType()), map[string]interface{}{"event_id": e.EventId(), "recipients": len(recipients)})
	return nil
}

func (s *notificationService) deliver(channel string, e events.Event, payload events.Envelope) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(channel, string(e.EventType()), payload); err != nil {
		s.logger.Warn("NotificationService", "Realtime delivery failed", map[string]interface{}{"channel": channel, "error": err.Error()})
	}
}

// recipientsFor returns every admin plus the lead's provider, unless that
// provider caused the event.
func (s *notificationService) recipientsFor(ctx context.Context, uow unitofwork.UnitOfWork, e events.Event) ([]entity.Recipient, error) {
	admins, err := uow.UserRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Recipient, 0, len(admins)+1)
	for _, a := range admins {
		out = append(out, entity.Recipient{Type: entity.RoleAdmin, Id: a.Id})
	}

	lead := e.Lead()
	actor := e.Actor()
	if lead.ServiceProviderId != nil {
		providerId := *lead.ServiceProviderId
		if !(actor.Role == string(entity.RoleProvider) && actor.Id == providerId) {
			out = append(out, entity.Recipient{Type: entity.RoleProvider, Id: providerId})
		}
	}
	return out, nil
}

func recipientOf(p entity.Principal) entity.Recipient {
	return entity.Recipient{Type: p.Role, Id: p.Id}
}

func (s *notificationService) List(ctx context.Context, p entity.Principal, req *dto.NotificationListRequest) (*dto.PageResponse[dto.NotificationResponse], error) {
	page, perPage := pageParams(req.Page, req.PerPage, defaultNotificationsPerPage)
	filter := contract.NotificationFilter{
		Recipient:  recipientOf(p),
		UnreadOnly: req.UnreadOnly,
		Limit:      perPage,
		Offset:     (page - 1) * perPage,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	items, err := uow.NotificationRepository().FindByRecipient(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := uow.NotificationRepository().CountByRecipient(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.NotificationResponse, 0, len(items))
	for _, n := range items {
		data = append(data, mapper.ToNotificationResponse(n))
	}
	res := dto.NewPageResponse(data, total, page, perPage)
	return &res, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, p entity.Principal) (*dto.UnreadCountResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.NotificationRepository().CountByRecipient(ctx, contract.NotificationFilter{Recipient: recipientOf(p), UnreadOnly: true})
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

// MarkAsRead is idempotent; marking an already read notification succeeds.
func (s *notificationService) MarkAsRead(ctx context.Context, p entity.Principal, id string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := uow.NotificationRepository().MarkAsRead(ctx, id, recipientOf(p), s.now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Notification")
		}
		return err
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, p entity.Principal) (*dto.MarkAllReadResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	updated, err := uow.NotificationRepository().MarkAllAsRead(ctx, recipientOf(p), s.now())
	if err != nil {
		return nil, err
	}
	return &dto.MarkAllReadResponse{Updated: updated}, nil
}
