package client

import (
	"encoding/json"
	"time"
)

type LeadStatus string

const (
	StatusNew       LeadStatus = "new"
	StatusContacted LeadStatus = "contacted"
	StatusClosed    LeadStatus = "closed"
)

// Statuses are the kanban columns, in board order.
var Statuses = []LeadStatus{StatusNew, StatusContacted, StatusClosed}

func (s LeadStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

type LeadLocation struct {
	Id   uint   `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type LeadProvider struct {
	Id    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Lead struct {
	Id                uint          `json:"id"`
	Name              string        `json:"name"`
	Phone             string        `json:"phone"`
	Email             string        `json:"email"`
	ZipCode           string        `json:"zip_code"`
	ProjectType       string        `json:"project_type"`
	Timing            string        `json:"timing"`
	Notes             string        `json:"notes"`
	Status            LeadStatus    `json:"status"`
	LocationId        uint          `json:"location_id"`
	ServiceProviderId *uint         `json:"service_provider_id"`
	Location          *LeadLocation `json:"location,omitempty"`
	ServiceProvider   *LeadProvider `json:"service_provider,omitempty"`
	LeadNotes         []Note        `json:"lead_notes,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

type Note struct {
	Id        uint      `json:"id"`
	LeadId    uint      `json:"lead_id"`
	Note      string    `json:"note"`
	Type      string    `json:"type"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type Page[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	LastPage int   `json:"last_page"`
}

type LeadFilter struct {
	LocationId uint
	Status     LeadStatus
	DateFrom   string // 2006-01-02
	DateTo     string
	Page       int
	PerPage    int
}

// NewLead is the public capture form.
type NewLead struct {
	LocationSlug string `json:"location_slug"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	ZipCode      string `json:"zip_code"`
	ProjectType  string `json:"project_type"`
	Timing       string `json:"timing"`
	Notes        string `json:"notes,omitempty"`
}

type NotificationData struct {
	Message   string `json:"message"`
	LeadId    uint   `json:"lead_id"`
	LeadName  string `json:"lead_name,omitempty"`
	Status    string `json:"status,omitempty"`
	OldStatus string `json:"old_status,omitempty"`
	NoteId    uint   `json:"note_id,omitempty"`
	EventId   string `json:"event_id,omitempty"`
}

type Notification struct {
	Id        string           `json:"id"`
	Type      string           `json:"type"`
	Data      NotificationData `json:"data"`
	ReadAt    *time.Time       `json:"read_at"`
	CreatedAt time.Time        `json:"created_at"`
}

func (n Notification) IsRead() bool {
	return n.ReadAt != nil
}

type RealtimeConfig struct {
	Enabled bool   `json:"pusher_enabled"`
	AppKey  string `json:"pusher_app_key"`
	Cluster string `json:"pusher_app_cluster"`
}

type LoginResult struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	Role      string          `json:"role"`
	User      json.RawMessage `json:"user"`
}

type Provider struct {
	Id       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}
