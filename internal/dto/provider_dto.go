package dto

import (
	"time"
)

type CreateProviderRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Phone       string `json:"phone" validate:"omitempty,max=50,phone"`
	Address     string `json:"address" validate:"max=1000"`
	Password    string `json:"password" validate:"required,min=8"`
	IsActive    *bool  `json:"is_active"`
	LocationIds []uint `json:"location_ids" validate:"dive,gt=0"`
}

type UpdateProviderRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=255"`
	Email       *string `json:"email" validate:"omitempty,email,max=255"`
	Phone       *string `json:"phone" validate:"omitempty,max=50,phone"`
	Address     *string `json:"address" validate:"omitempty,max=1000"`
	Password    *string `json:"password" validate:"omitempty,min=8"`
	IsActive    *bool   `json:"is_active"`
	LocationIds *[]uint `json:"location_ids"`
}

type RegisterProviderRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Phone                string `json:"phone" validate:"omitempty,max=50,phone"`
	Address              string `json:"address" validate:"max=1000"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LocationSummary struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ProviderResponse struct {
	Id           uint                  `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Phone        string                `json:"phone"`
	Address      string                `json:"address"`
	IsActive     bool                  `json:"is_active"`
	Locations    []LocationSummary     `json:"locations"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
}

type ProviderListRequest struct {
	Search   string `query:"search"`
	IsActive string `query:"is_active" validate:"omitempty,oneof=true false 1 0"`
}
