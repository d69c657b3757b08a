package entity

import (
	"time"
)

type NoteType string

const (
	NoteTypeNote         NoteType = "note"
	NoteTypeStatusChange NoteType = "status_change"
	NoteTypeAssignment   NoteType = "assignment"
)

// LeadNote is append-only. At most one of UserId and ServiceProviderId is
// set; neither means the entry was written by the system.
type LeadNote struct {
	Id                uint
	LeadId            uint
	UserId            *uint
	ServiceProviderId *uint
	Note              string
	Type              NoteType
	CreatedAt         time.Time

	// AuthorName is resolved on read.
	AuthorName string
}

func NewSystemNote(leadId uint, typ NoteType, text string) *LeadNote {
	return &LeadNote{LeadId: leadId, Type: typ, Note: text}
}

// NewAuthoredNote attributes a note to the principal writing it.
func NewAuthoredNote(leadId uint, author Principal, typ NoteType, text string) *LeadNote {
	n := &LeadNote{LeadId: leadId, Type: typ, Note: text, AuthorName: author.Name}
	id := author.Id
	switch author.Role {
	case RoleAdmin:
		n.UserId = &id
	case RoleProvider:
		n.ServiceProviderId = &id
	}
	return n
}

func (n *LeadNote) IsSystem() bool {
	return n.UserId == nil && n.ServiceProviderId == nil
}
