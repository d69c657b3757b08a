package entity

import "time"

type ServiceProvider struct {
	Id           uint
	Name         string
	Email        string
	Phone        string
	Address      string
	IsActive     bool
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Locations    []*Location
	Subscription *Subscription
}

func (p *ServiceProvider) Principal() Principal {
	return Principal{Role: RoleProvider, Id: p.Id, Name: p.Name}
}
