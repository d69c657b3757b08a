package entity

import (
	"time"

	"leadflow-be/pkg/assignment"
)

type Location struct {
	Id                  uint
	Name                string
	Slug                string
	Address             string
	AssignmentAlgorithm assignment.Algorithm
	CreatedAt           time.Time
	UpdatedAt           time.Time

	// ServiceProviders is the assignment pool, ordered by id.
	ServiceProviders []*ServiceProvider
}

func (l *Location) HasProvider(providerId uint) bool {
	for _, p := range l.ServiceProviders {
		if p.Id == providerId {
			return true
		}
	}
	return false
}
