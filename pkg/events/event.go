package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the realtime event name as bound by dashboard subscribers.
type Type string

const (
	LeadAssigned      Type = "lead.assigned"
	LeadStatusUpdated Type = "lead.status.updated"
	LeadNoteCreated   Type = "lead.note.created"
)

// Subject returns the bus subject for an event type (e.g. "events.lead.assigned").
func (t Type) Subject() string {
	return "events." + string(t)
}

// LeadRef is the slice of a lead every event carries.
type LeadRef struct {
	Id                uint   `json:"id"`
	Name              string `json:"name"`
	Status            string `json:"status"`
	OldStatus         string `json:"old_status,omitempty"`
	LocationId        uint   `json:"location_id"`
	ServiceProviderId *uint  `json:"service_provider_id,omitempty"`
}

// NoteRef is carried by lead.note.created only.
type NoteRef struct {
	Id        uint   `json:"id"`
	Note      string `json:"note"`
	Type      string `json:"type"`
	CreatedBy string `json:"created_by"`
}

// Actor identifies who caused an event. Zero value means the system.
type Actor struct {
	Role string `json:"role,omitempty"`
	Id   uint   `json:"id,omitempty"`
}

// Event defines the contract for all lead events.
type Event interface {
	EventId() string
	EventType() Type
	Lead() LeadRef
	Message() string
	Actor() Actor
	Timestamp() time.Time
}

type base struct {
	Id         string
	Ref        LeadRef
	By         Actor
	OccurredAt time.Time
}

func newBase(lead LeadRef, by Actor) base {
	return base{Id: uuid.NewString(), Ref: lead, By: by, OccurredAt: time.Now()}
}

func (b base) EventId() string      { return b.Id }
func (b base) Lead() LeadRef        { return b.Ref }
func (b base) Actor() Actor         { return b.By }
func (b base) Timestamp() time.Time { return b.OccurredAt }

// LeadAssignedEvent is emitted by automatic assignment and admin reassignment.
type LeadAssignedEvent struct {
	base
	ProviderId   uint
	ProviderName string
	Manual       bool
}

func NewLeadAssigned(lead LeadRef, providerId uint, providerName string, manual bool, by Actor) *LeadAssignedEvent {
	return &LeadAssignedEvent{base: newBase(lead, by), ProviderId: providerId, ProviderName: providerName, Manual: manual}
}

func (e *LeadAssignedEvent) EventType() Type { return LeadAssigned }

func (e *LeadAssignedEvent) Message() string {
	return fmt.Sprintf("New lead assigned: %s", e.Ref.Name)
}

// LeadStatusUpdatedEvent carries the old status in Lead().OldStatus.
type LeadStatusUpdatedEvent struct {
	base
}

func NewLeadStatusUpdated(lead LeadRef, by Actor) *LeadStatusUpdatedEvent {
	return &LeadStatusUpdatedEvent{base: newBase(lead, by)}
}

func (e *LeadStatusUpdatedEvent) EventType() Type { return LeadStatusUpdated }

func (e *LeadStatusUpdatedEvent) Message() string {
	old := e.Ref.OldStatus
	if old == "" {
		old = "N/A"
	}
	return fmt.Sprintf("Lead '%s' status changed from %s to %s", e.Ref.Name, old, e.Ref.Status)
}

type LeadNoteCreatedEvent struct {
	base
	Note NoteRef
}

func NewLeadNoteCreated(lead LeadRef, note NoteRef, by Actor) *LeadNoteCreatedEvent {
	return &LeadNoteCreatedEvent{base: newBase(lead, by), Note: note}
}

func (e *LeadNoteCreatedEvent) EventType() Type { return LeadNoteCreated }

func (e *LeadNoteCreatedEvent) Message() string {
	by := e.Note.CreatedBy
	if by == "" {
		by = "Someone"
	}
	return fmt.Sprintf("New note added to lead '%s' by %s", e.Ref.Name, by)
}

// Envelope is the wire form shared by the bus and the realtime channel.
type Envelope struct {
	Id           string    `json:"id"`
	Type         Type      `json:"type"`
	Lead         LeadRef   `json:"lead"`
	Note         *NoteRef  `json:"note,omitempty"`
	ProviderId   uint      `json:"provider_id,omitempty"`
	ProviderName string    `json:"provider_name,omitempty"`
	Manual       bool      `json:"manual,omitempty"`
	Actor        Actor     `json:"actor"`
	Message      string    `json:"message"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// ToEnvelope flattens an event for transport.
func ToEnvelope(e Event) Envelope {
	env := Envelope{
		Id:         e.EventId(),
		Type:       e.EventType(),
		Lead:       e.Lead(),
		Actor:      e.Actor(),
		Message:    e.Message(),
		OccurredAt: e.Timestamp(),
	}
	switch v := e.(type) {
	case *LeadAssignedEvent:
		env.ProviderId = v.ProviderId
		env.ProviderName = v.ProviderName
		env.Manual = v.Manual
	case *LeadNoteCreatedEvent:
		note := v.Note
		env.Note = &note
	}
	return env
}

// Event rebuilds the typed variant. Unknown types are rejected.
func (env Envelope) Event() (Event, error) {
	b := base{Id: env.Id, Ref: env.Lead, By: env.Actor, OccurredAt: env.OccurredAt}
	if b.Id == "" {
		b.Id = uuid.NewString()
	}
	switch env.Type {
	case LeadAssigned:
		return &LeadAssignedEvent{base: b, ProviderId: env.ProviderId, ProviderName: env.ProviderName, Manual: env.Manual}, nil
	case LeadStatusUpdated:
		return &LeadStatusUpdatedEvent{base: b}, nil
	case LeadNoteCreated:
		if env.Note == nil {
			return nil, fmt.Errorf("event %s: missing note", env.Type)
		}
		return &LeadNoteCreatedEvent{base: b, Note: *env.Note}, nil
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
}

func Marshal(e Event) ([]byte, error) {
	return json.Marshal(ToEnvelope(e))
}

func Unmarshal(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	return env.Event()
}
