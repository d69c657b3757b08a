package unitofwork

import (
	"context"

	"leadflow-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	LeadRepository() contract.LeadRepository
	LeadNoteRepository() contract.LeadNoteRepository
	LocationRepository() contract.LocationRepository
	ServiceProviderRepository() contract.ServiceProviderRepository
	AssignmentCursorRepository() contract.AssignmentCursorRepository

	UserRepository() contract.UserRepository
	SettingRepository() contract.SettingRepository
	SubscriptionRepository() contract.SubscriptionRepository
	NotificationRepository() contract.NotificationRepository
}
