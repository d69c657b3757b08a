package entity

import (
	"time"

	"leadflow-be/pkg/events"
)

type NotificationType string

const (
	NotificationLeadAssigned      NotificationType = "lead_assigned"
	NotificationLeadStatusUpdated NotificationType = "lead_status_updated"
	NotificationLeadNoteCreated   NotificationType = "lead_note_created"
)

// NotificationTypeFor maps a realtime event to its stored notification type.
func NotificationTypeFor(t events.Type) NotificationType {
	switch t {
	case events.LeadAssigned:
		return NotificationLeadAssigned
	case events.LeadStatusUpdated:
		return NotificationLeadStatusUpdated
	default:
		return NotificationLeadNoteCreated
	}
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

// Notification is only ever mutated by marking it read.
type Notification struct {
	Id        string
	Type      NotificationType
	Recipient Recipient
	Data      NotificationData
	ReadAt    *time.Time
	CreatedAt time.Time
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// NewNotificationFromEvent builds the stored form of event for one recipient.
func NewNotificationFromEvent(id string, e events.Event, to Recipient) *Notification {
	lead := e.Lead()
	data := NotificationData{
		Message:   e.Message(),
		LeadId:    lead.Id,
		LeadName:  lead.Name,
		Status:    lead.Status,
		OldStatus: lead.OldStatus,
		EventId:   e.EventId(),
	}
	if n, ok := e.(*events.LeadNoteCreatedEvent); ok {
		data.NoteId = n.Note.Id
	}
	return &Notification{
		Id:        id,
		Type:      NotificationTypeFor(e.EventType()),
		Recipient: to,
		Data:      data,
		CreatedAt: e.Timestamp(),
	}
}
