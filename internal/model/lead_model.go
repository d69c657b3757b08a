package model

import (
	"time"
)

type Lead struct {
	Id                uint      `gorm:"primaryKey;autoIncrement"`
	LocationId        uint      `gorm:"not null;index"`
	ServiceProviderId *uint     `gorm:"index:idx_leads_provider_status,priority:1"`
	Name              string    `gorm:"type:varchar(255);not null"`
	Phone             string    `gorm:"type:varchar(50);not null"`
	Email             string    `gorm:"type:varchar(255);not null"`
	ZipCode           string    `gorm:"type:varchar(20);not null"`
	ProjectType       string    `gorm:"type:varchar(50);not null"`
	Timing            string    `gorm:"type:varchar(50);not null"`
	Notes             string    `gorm:"type:text"`
	Status            string    `gorm:"type:varchar(20);not null;default:'new';index:idx_leads_provider_status,priority:2"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`

	Location        *Location        `gorm:"foreignKey:LocationId"`
	ServiceProvider *ServiceProvider `gorm:"foreignKey:ServiceProviderId"`
	LeadNotes       []LeadNote       `gorm:"foreignKey:LeadId"`
}

func (Lead) TableName() string {
	return "leads"
}

type LeadNote struct {
	Id                uint      `gorm:"primaryKey;autoIncrement"`
	LeadId            uint      `gorm:"not null;index"`
	UserId            *uint     `gorm:"index"`
	ServiceProviderId *uint     `gorm:"index"`
	Note              string    `gorm:"type:text;not null"`
	Type              string    `gorm:"type:varchar(20);not null;default:'note'"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`

	User            *User            `gorm:"foreignKey:UserId"`
	ServiceProvider *ServiceProvider `gorm:"foreignKey:ServiceProviderId"`
}

func (LeadNote) TableName() string {
	return "lead_notes"
}
