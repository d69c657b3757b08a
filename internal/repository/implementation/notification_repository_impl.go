package implementation

import (
	"context"
	"time"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/model"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/scope"
	"leadflow-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NotificationMapper
}

func NewNotificationRepository(db *gorm.DB) contract.NotificationRepository {
	return &NotificationRepositoryImpl{db: db, mapper: mapper.NewNotificationMapper()}
}

func notificationSpecs(f contract.NotificationFilter) []specification.Specification {
	specs := []specification.Specification{specification.NotificationsFor{Recipient: f.Recipient}}
	if f.UnreadOnly {
		specs = append(specs, specification.Unread{})
	}
	return specs
}

func (r *NotificationRepositoryImpl) Create(ctx context.Context, notification *entity.Notification) error {
	m, err := r.mapper.ToModel(notification)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *NotificationRepositoryImpl) FindByRecipient(ctx context.Context, filter contract.NotificationFilter) ([]*entity.Notification, error) {
	var models []*model.Notification
	specs := append(notificationSpecs(filter), specification.Pagination{Limit: filter.Limit, Offset: filter.Offset})
	query := applySpecifications(r.db.WithContext(ctx).Scopes(scope.NewestFirst("notifications")), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NotificationRepositoryImpl) CountByRecipient(ctx context.Context, filter contract.NotificationFilter) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Notification{}), notificationSpecs(filter)...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *NotificationRepositoryImpl) MarkAsRead(ctx context.Context, id string, recipient entity.Recipient, at time.Time) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, gorm.ErrRecordNotFound
	}

	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Notification{}),
		specification.NotificationsFor{Recipient: recipient})

	result := query.Where("id = ? AND read_at IS NULL", uid).Update("read_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	// Distinguish "already read" from "not yours / missing".
	var count int64
	err = applySpecifications(r.db.WithContext(ctx).Model(&model.Notification{}),
		specification.NotificationsFor{Recipient: recipient}).
		Where("id = ?", uid).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, gorm.ErrRecordNotFound
	}
	return false, nil
}

func (r *NotificationRepositoryImpl) MarkAllAsRead(ctx context.Context, recipient entity.Recipient, at time.Time) (int64, error) {
	result := applySpecifications(r.db.WithContext(ctx).Model(&model.Notification{}),
		specification.NotificationsFor{Recipient: recipient}, specification.Unread{}).
		Update("read_at", at)
	return result.RowsAffected, result.Error
}
