package model

import (
	"time"
)

type ServiceProvider struct {
	Id        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Phone     string    `gorm:"type:varchar(50)"`
	Address   string    `gorm:"type:text"`
	IsActive  bool      `gorm:"default:true"`
	Password  string    `gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Locations    []*Location   `gorm:"many2many:location_service_provider;joinForeignKey:service_provider_id;joinReferences:location_id"`
	Subscription *Subscription `gorm:"foreignKey:ServiceProviderId"`
}

func (ServiceProvider) TableName() string {
	return "service_providers"
}

type Location struct {
	Id                  uint      `gorm:"primaryKey;autoIncrement"`
	Name                string    `gorm:"type:varchar(255);not null"`
	Slug                string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Address             string    `gorm:"type:text"`
	AssignmentAlgorithm string    `gorm:"type:varchar(20);not null;default:'round_robin'"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`

	ServiceProviders []*ServiceProvider `gorm:"many2many:location_service_provider;joinForeignKey:location_id;joinReferences:service_provider_id"`
}

func (Location) TableName() string {
	return "locations"
}

// AssignmentCursor backs the round robin position when Redis is unavailable.
type AssignmentCursor struct {
	LocationId uint      `gorm:"primaryKey"`
	Position   uint64    `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (AssignmentCursor) TableName() string {
	return "assignment_cursors"
}
