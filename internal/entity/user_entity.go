package entity

import (
	"time"
)

// User is an administrator account.
type User struct {
	Id           uint
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) Principal() Principal {
	return Principal{Role: RoleAdmin, Id: u.Id, Name: u.Name}
}
