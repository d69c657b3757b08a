package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubscriptionPlan struct {
	Id        uint                        `gorm:"primaryKey;autoIncrement"`
	Name      string                      `gorm:"type:varchar(255);not null"`
	PriceId   string                      `gorm:"type:varchar(255)"`
	Price     float64                     `gorm:"type:decimal(10,2);not null"`
	Interval  string                      `gorm:"type:varchar(20);not null;default:'monthly'"`
	TrialDays int                         `gorm:"default:0"`
	Features  datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	IsActive  bool                        `gorm:"default:true"`
	SortOrder int                         `gorm:"default:0"`
	CreatedAt time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt time.Time                   `gorm:"autoUpdateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type Subscription struct {
	Id                uint       `gorm:"primaryKey;autoIncrement"`
	ServiceProviderId uint       `gorm:"uniqueIndex;not null"`
	PlanId            *uint      `gorm:"index"`
	Status            string     `gorm:"type:varchar(20);not null"`
	CurrentPeriodEnd  *time.Time `gorm:"default:null"`
	CreatedAt         time.Time  `gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime"`

	Plan *SubscriptionPlan `gorm:"foreignKey:PlanId"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
