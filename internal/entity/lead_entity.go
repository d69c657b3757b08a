package entity

import (
	"fmt"
	"time"

	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/events"
)

type LeadStatus string
type ProjectType string
type Timing string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusClosed    LeadStatus = "closed"

	ProjectTypeResidential     ProjectType = "residential"
	ProjectTypeCommercial      ProjectType = "commercial"
	ProjectTypeRenovation      ProjectType = "renovation"
	ProjectTypeNewConstruction ProjectType = "new-construction"
	ProjectTypeOther           ProjectType = "other"

	TimingImmediate   Timing = "immediate"
	Timing1To3Months  Timing = "1-3-months"
	Timing3To6Months  Timing = "3-6-months"
	Timing6To12Months Timing = "6-12-months"
	TimingPlanning    Timing = "planning"
)

var LeadStatuses = []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusClosed}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusClosed:
		return true
	}
	return false
}

// Open reports whether the lead still counts toward a provider's workload.
func (s LeadStatus) Open() bool {
	return s == LeadStatusNew || s == LeadStatusContacted
}

func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(raw)
	if !s.Valid() {
		return "", apperr.Validation(map[string]string{"status": "The selected status is invalid."})
	}
	return s, nil
}

func (p ProjectType) Valid() bool {
	switch p {
	case ProjectTypeResidential, ProjectTypeCommercial, ProjectTypeRenovation, ProjectTypeNewConstruction, ProjectTypeOther:
		return true
	}
	return false
}

func (t Timing) Valid() bool {
	switch t {
	case TimingImmediate, Timing1To3Months, Timing3To6Months, Timing6To12Months, TimingPlanning:
		return true
	}
	return false
}

type Lead struct {
	Id                uint
	LocationId        uint
	ServiceProviderId *uint
	Name              string
	Phone             string
	Email             string
	ZipCode           string
	ProjectType       ProjectType
	Timing            Timing
	Notes             string
	Status            LeadStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Location        *Location
	ServiceProvider *ServiceProvider
	LeadNotes       []*LeadNote
}

// TransitionTo moves the lead to next. Every pair of states is allowed;
// changed is false when next equals the current status.
func (l *Lead) TransitionTo(next LeadStatus) (old LeadStatus, changed bool, err error) {
	if !next.Valid() {
		return l.Status, false, apperr.Validation(map[string]string{"status": "The selected status is invalid."})
	}
	old = l.Status
	if old == next {
		return old, false, nil
	}
	l.Status = next
	return old, true, nil
}

// AssignTo sets the provider and reports whether it changed.
func (l *Lead) AssignTo(providerId uint) bool {
	if l.ServiceProviderId != nil && *l.ServiceProviderId == providerId {
		return false
	}
	id := providerId
	l.ServiceProviderId = &id
	return true
}

func (l *Lead) IsAssignedTo(providerId uint) bool {
	return l.ServiceProviderId != nil && *l.ServiceProviderId == providerId
}

func (l *Lead) Ref() events.LeadRef {
	return events.LeadRef{
		Id:                l.Id,
		Name:              l.Name,
		Status:            string(l.Status),
		LocationId:        l.LocationId,
		ServiceProviderId: l.ServiceProviderId,
	}
}

func StatusChangeText(old, next LeadStatus) string {
	return fmt.Sprintf("Status changed from %s to %s", old, next)
}
