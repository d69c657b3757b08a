package client

import (
	"fmt"
	"sync"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleProvider Role = "provider"
)

// Session holds the bearer token of one dashboard user. Every request
// reads the token from here; nothing mutates shared client headers.
type Session struct {
	mu         sync.RWMutex
	role       Role
	token      string
	providerId uint
}

func NewSession(role Role) *Session {
	return &Session{role: role}
}

// NewSessionWithToken resumes a session from a stored token.
func NewSessionWithToken(role Role, token string) *Session {
	return &Session{role: role, token: token}
}

func (s *Session) Role() Role {
	return s.role
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

func (s *Session) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// ProviderId is known after Me has been called on a provider session.
func (s *Session) ProviderId() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.providerId
}

func (s *Session) setProviderId(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.providerId = id
}

// Clear forgets the token. The interceptor calls it on every 401.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.providerId = 0
}

// AdminChannel is the public channel every admin dashboard listens on.
const AdminChannel = "admin"

func ProviderChannel(providerId uint) string {
	return fmt.Sprintf("private-provider.%d", providerId)
}

// Channel is the realtime channel of the session's dashboard. A provider
// session resolves to "" until Me has been called.
func (s *Session) Channel() string {
	if s.role == RoleAdmin {
		return AdminChannel
	}
	if id := s.ProviderId(); id != 0 {
		return ProviderChannel(id)
	}
	return ""
}

// prefix is the route group of the session's role.
func (s *Session) prefix() string {
	return "/" + string(s.role)
}
