package entity

import (
	"fmt"

	"leadflow-be/pkg/events"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	Role Role
	Id   uint
	Name string
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsProvider() bool { return p.Role == RoleProvider }

func (p Principal) Actor() events.Actor {
	return events.Actor{Role: string(p.Role), Id: p.Id}
}

// Recipient addresses a notification owner. Admin notifications are per admin user.
type Recipient struct {
	Type Role
	Id   uint
}

func (r Recipient) String() string {
	return fmt.Sprintf("%s:%d", r.Type, r.Id)
}

// Channel is the realtime channel the recipient's dashboard listens on.
func (r Recipient) Channel() string {
	if r.Type == RoleProvider {
		return ProviderChannel(r.Id)
	}
	return AdminChannel
}

const AdminChannel = "admin"

func ProviderChannel(providerId uint) string {
	return fmt.Sprintf("private-provider.%d", providerId)
}
