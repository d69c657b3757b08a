package mapper

import (
	"leadflow-be/internal/entity"
	"leadflow-be/internal/model"

	"gorm.io/datatypes"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.Password,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:        u.Id,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) SettingToEntity(s *model.Setting) *entity.Setting {
	if s == nil {
		return nil
	}
	return &entity.Setting{
		Id:        s.Id,
		Group:     s.Group,
		Key:       s.Key,
		Value:     []byte(s.Value),
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *UserMapper) SettingToModel(s *entity.Setting) *model.Setting {
	if s == nil {
		return nil
	}
	return &model.Setting{
		Id:        s.Id,
		Group:     s.Group,
		Key:       s.Key,
		Value:     datatypes.JSON(s.Value),
		UpdatedAt: s.UpdatedAt,
	}
}
