package repository

import (
	"context"
	"strings"

	"github.com/krishilink/krishi/internal/krishi/entity"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	user.NameKey = strings.ToLower(user.Name)
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	user.NameKey = strings.ToLower(user.Name)
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// FindByName matches case-insensitively within a role, mirroring the
// original registration rule.
func (r *UserRepository) FindByName(ctx context.Context, role, name string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		First(&user, "role = ? AND name_key = ?", role, strings.ToLower(name)).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// FindByOAuth looks a user up by provider uid or email, for OAuth upserts.
func (r *UserRepository) FindByOAuth(ctx context.Context, role, uid, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Where("oauth_uid = ? OR (email <> '' AND email = ?)", uid, email).
		First(&user).Error
	if err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}
