package mapper

import (
	"encoding/json"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationMapper struct{}

func NewNotificationMapper() *NotificationMapper {
	return &NotificationMapper{}
}

func (m *NotificationMapper) ToEntity(n *model.Notification) *entity.Notification {
	if n == nil {
		return nil
	}
	var data entity.NotificationData
	// Rows written by older releases may carry extra keys; unknown keys are ignored.
	_ = json.Unmarshal(n.Data, &data)
	return &entity.Notification{
		Id:        n.Id.String(),
		Type:      entity.NotificationType(n.Type),
		Recipient: entity.Recipient{Type: entity.Role(n.RecipientType), Id: n.RecipientId},
		Data:      data,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func (m *NotificationMapper) ToModel(n *entity.Notification) (*model.Notification, error) {
	id, err := uuid.Parse(n.Id)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return nil, err
	}
	return &model.Notification{
		Id:            id,
		Type:          string(n.Type),
		RecipientType: string(n.Recipient.Type),
		RecipientId:   n.Recipient.Id,
		Data:          datatypes.JSON(data),
		ReadAt:        n.ReadAt,
		CreatedAt:     n.CreatedAt,
	}, nil
}

func (m *NotificationMapper) ToEntities(models []*model.Notification) []*entity.Notification {
	out := make([]*entity.Notification, 0, len(models))
	for _, n := range models {
		out = append(out, m.ToEntity(n))
	}
	return out
}
