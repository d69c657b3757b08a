package unitofwork

import (
	"context"

	"gorm.io/gorm"
)

// RepositoryFactory is implemented here over gorm and by the memory package.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

type gormFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormFactory{db: db}
}

// Services create one unit of work per request; the context reaches the
// connection when Begin is called or through each repository method.
func (f *gormFactory) NewUnitOfWork(context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}
