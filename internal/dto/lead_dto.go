package dto

import (
	"time"
)

type CreateLeadRequest struct {
	LocationSlug string `json:"location_slug" validate:"required"`
	Name         string `json:"name" validate:"required,max=255"`
	Phone        string `json:"phone" validate:"required,max=50,phone"`
	Email        string `json:"email" validate:"required,email,max=255"`
	ZipCode      string `json:"zip_code" validate:"required,max=20"`
	ProjectType  string `json:"project_type" validate:"required,oneof=residential commercial renovation new-construction other"`
	Timing       string `json:"timing" validate:"required,oneof=immediate 1-3-months 3-6-months 6-12-months planning"`
	Notes        string `json:"notes" validate:"max=5000"`
}

type CreateLeadResponse struct {
	Id      uint   `json:"id"`
	Message string `json:"message"`
}

type LeadListRequest struct {
	LocationId uint   `query:"location_id"`
	Status     string `query:"status" validate:"omitempty,oneof=new contacted closed"`
	DateFrom   string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo     string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Page       int    `query:"page"`
	PerPage    int    `query:"per_page"`
}

// UpdateLeadRequest changes the status. Unknown values are rejected with 422.
type UpdateLeadRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted closed"`
}

type ReassignLeadRequest struct {
	ServiceProviderId uint `json:"service_provider_id" validate:"required,gt=0"`
}

type CreateLeadNoteRequest struct {
	Note string `json:"note" validate:"required,max=5000"`
}

type LeadLocationSummary struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type LeadProviderSummary struct {
	Id    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type LeadResponse struct {
	Id                uint                 `json:"id"`
	Name              string               `json:"name"`
	Phone             string               `json:"phone"`
	Email             string               `json:"email"`
	ZipCode           string               `json:"zip_code"`
	ProjectType       string               `json:"project_type"`
	Timing            string               `json:"timing"`
	Notes             string               `json:"notes"`
	Status            string               `json:"status"`
	LocationId        uint                 `json:"location_id"`
	ServiceProviderId *uint                `json:"service_provider_id"`
	Location          *LeadLocationSummary `json:"location,omitempty"`
	ServiceProvider   *LeadProviderSummary `json:"service_provider,omitempty"`
	LeadNotes         []LeadNoteResponse   `json:"lead_notes,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

type LeadNoteResponse struct {
	Id        uint      `json:"id"`
	LeadId    uint      `json:"lead_id"`
	Note      string    `json:"note"`
	Type      string    `json:"type"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// PageResponse is the paginated list envelope.
type PageResponse[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

func NewPageResponse[T any](data []T, total int64, page, perPage int) PageResponse[T] {
	if data == nil {
		data = []T{}
	}
	last := 1
	if perPage > 0 && total > 0 {
		last = int((total + int64(perPage) - 1) / int64(perPage))
	}
	return PageResponse[T]{Data: data, Total: total, Page: page, PerPage: perPage, LastPage: last}
}
