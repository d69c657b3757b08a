package model

import (
	"time"

	"gorm.io/datatypes"
)

type User struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Password  string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type Setting struct {
	Id        uint           `gorm:"primaryKey;autoIncrement"`
	Group     string         `gorm:"column:group;type:varchar(50);not null;uniqueIndex:idx_settings_group_key,priority:1"`
	Key       string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_settings_group_key,priority:2"`
	Value     datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}
