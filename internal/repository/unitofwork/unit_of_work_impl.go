package unitofwork

import (
	"context"
	"fmt"

	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // non-nil between Begin and Commit/Rollback
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) LeadRepository() contract.LeadRepository {
	return implementation.NewLeadRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LeadNoteRepository() contract.LeadNoteRepository {
	return implementation.NewLeadNoteRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LocationRepository() contract.LocationRepository {
	return implementation.NewLocationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ServiceProviderRepository() contract.ServiceProviderRepository {
	return implementation.NewServiceProviderRepository(u.getDB())
}

func (u *UnitOfWorkImpl) AssignmentCursorRepository() contract.AssignmentCursorRepository {
	return implementation.NewAssignmentCursorRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SettingRepository() contract.SettingRepository {
	return implementation.NewSettingRepository(u.getDB())
}

func (u *UnitOfWorkImpl) SubscriptionRepository() contract.SubscriptionRepository {
	return implementation.NewSubscriptionRepository(u.getDB())
}

func (u *UnitOfWorkImpl) NotificationRepository() contract.NotificationRepository {
	return implementation.NewNotificationRepository(u.getDB())
}
