package memory

import (
	"context"
	"errors"

	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/unitofwork"
)

// RepositoryFactory hands out units of work over one Store. Writes apply
// immediately; Rollback undoes the writes made since Begin.
type RepositoryFactory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) *RepositoryFactory {
	return &RepositoryFactory{store: store}
}

func (f *RepositoryFactory) Store() *Store { return f.store }

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{s: f.store}
}

type unitOfWork struct {
	s *Store
	j *journal
}

func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.j != nil {
		return errors.New("transaction already started")
	}
	u.j = &journal{}
	return nil
}

func (u *unitOfWork) Commit() error {
	u.j = nil
	return nil
}

func (u *unitOfWork) Rollback() error {
	if u.j == nil {
		return nil
	}
	u.s.mu.Lock()
	u.j.undo()
	u.s.mu.Unlock()
	u.j = nil
	return nil
}

func (u *unitOfWork) LeadRepository() contract.LeadRepository {
	return &LeadRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) LeadNoteRepository() contract.LeadNoteRepository {
	return &LeadNoteRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) LocationRepository() contract.LocationRepository {
	return &LocationRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) ServiceProviderRepository() contract.ServiceProviderRepository {
	return &ServiceProviderRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) AssignmentCursorRepository() contract.AssignmentCursorRepository {
	return &AssignmentCursorRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) UserRepository() contract.UserRepository {
	return &UserRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) SettingRepository() contract.SettingRepository {
	return &SettingRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &SubscriptionRepository{s: u.s, j: u.j}
}

func (u *unitOfWork) NotificationRepository() contract.NotificationRepository {
	return &NotificationRepository{s: u.s, j: u.j}
}
