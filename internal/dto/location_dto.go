package dto

import (
	"time"
)

type CreateLocationRequest struct {
	Name                string `json:"name" validate:"required,max=255"`
	Slug                string `json:"slug" validate:"omitempty,max=255"`
	Address             string `json:"address" validate:"max=1000"`
	AssignmentAlgorithm string `json:"assignment_algorithm" validate:"required,oneof=round_robin geographic load_balance manual"`
}

type UpdateLocationRequest struct {
	Name                *string `json:"name" validate:"omitempty,max=255"`
	Slug                *string `json:"slug" validate:"omitempty,max=255"`
	Address             *string `json:"address" validate:"omitempty,max=1000"`
	AssignmentAlgorithm *string `json:"assignment_algorithm" validate:"omitempty,oneof=round_robin geographic load_balance manual"`
}

type AssignProvidersRequest struct {
	ServiceProviderIds []uint `json:"service_provider_ids" validate:"dive,gt=0"`
}

type ProviderSummary struct {
	Id       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

type LocationResponse struct {
	Id                  uint              `json:"id"`
	Name                string            `json:"name"`
	Slug                string            `json:"slug"`
	Address             string            `json:"address"`
	AssignmentAlgorithm string            `json:"assignment_algorithm"`
	ServiceProviders    []ProviderSummary `json:"service_providers"`
	CreatedAt           time.Time         `json:"created_at"`
}

// PublicLocationResponse is what the capture form needs; no pool details.
type PublicLocationResponse struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}
