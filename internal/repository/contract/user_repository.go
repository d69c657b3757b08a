package contract

import (
	"context"

	"leadflow-be/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindById(ctx context.Context, id uint) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAll(ctx context.Context) ([]*entity.User, error)
}

type SettingRepository interface {
	FindByGroup(ctx context.Context, group string) ([]*entity.Setting, error)
	FindAll(ctx context.Context) ([]*entity.Setting, error)
	Upsert(ctx context.Context, setting *entity.Setting) error
}
