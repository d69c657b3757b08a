package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification stores the notification history of one recipient.
type Notification struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Type          string         `gorm:"type:varchar(50);not null;index:idx_notifications_type"`
	RecipientType string         `gorm:"type:varchar(20);not null;index:idx_notifications_recipient,priority:1"`
	RecipientId   uint           `gorm:"not null;index:idx_notifications_recipient,priority:2"`
	Data          datatypes.JSON `gorm:"type:jsonb;not null"`
	ReadAt        *time.Time     `gorm:"index"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP;index"`
}

func (Notification) TableName() string {
	return "notifications"
}
