package repository

import (
	"context"

	"paperly/internal/model"

	"gorm.io/gorm"
)

type UserRepository struct {
	orm *gorm.DB
}

func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create 插入用户；用户名或邮箱重复时返回 ErrDuplicateKey
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.orm.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.orm.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// Count 用户总数（初始化数据时判断是否已有数据）
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.orm.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
