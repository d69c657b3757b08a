package implementation

import (
	"context"
	"errors"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/mapper"
	"leadflow-be/internal/model"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{db: db, mapper: mapper.NewUserMapper()}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	if err := applySpecifications(r.db.WithContext(ctx), specs...).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) FindById(ctx context.Context, id uint) (*entity.User, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, specification.ByEmail{Email: email})
}

func (r *UserRepositoryImpl) FindAll(ctx context.Context) ([]*entity.User, error) {
	var models []*model.User
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.ToEntity(m))
	}
	return out, nil
}

type SettingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewSettingRepository(db *gorm.DB) contract.SettingRepository {
	return &SettingRepositoryImpl{db: db, mapper: mapper.NewUserMapper()}
}

func (r *SettingRepositoryImpl) FindByGroup(ctx context.Context, group string) ([]*entity.Setting, error) {
	var models []*model.Setting
	if err := r.db.WithContext(ctx).Where(`"group" = ?`, group).Order("key").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *SettingRepositoryImpl) FindAll(ctx context.Context) ([]*entity.Setting, error) {
	var models []*model.Setting
	if err := r.db.WithContext(ctx).Order(`"group", key`).Find(&models).Error; err != nil {
		return nil, err
	}
	return r.toEntities(models), nil
}

func (r *SettingRepositoryImpl) Upsert(ctx context.Context, setting *entity.Setting) error {
	m := r.mapper.SettingToModel(setting)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(m).Error
}

func (r *SettingRepositoryImpl) toEntities(models []*model.Setting) []*entity.Setting {
	out := make([]*entity.Setting, 0, len(models))
	for _, m := range models {
		out = append(out, r.mapper.SettingToEntity(m))
	}
	return out
}
