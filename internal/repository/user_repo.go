package repository

import (
	"context"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/pkg/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	FindByExternalID(ctx context.Context, id model.ExternalID) (*model.User, error)
	FindAll(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
	// CreateIfAbsent inserts user unless a row with the same external id exists.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, user *model.User) (bool, error)
	UpdateRole(ctx context.Context, id model.ExternalID, role model.Role) error
	UpdateGroup(ctx context.Context, id model.ExternalID, group string) error
	// LockForProvisioning serialises first-user detection across concurrent transactions.
	LockForProvisioning(ctx context.Context) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) FindByExternalID(ctx context.Context, id model.ExternalID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userRepository) CreateIfAbsent(ctx context.Context, user *model.User) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(user)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id model.ExternalID, role model.Role) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Update("role", role).Error
}

func (r *userRepository) UpdateGroup(ctx context.Context, id model.ExternalID, group string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Update("group_name", group).Error
}

func (r *userRepository) LockForProvisioning(ctx context.Context) error {
	if !database.IsPostgres(r.db) {
		// sqlite serialises writers on its own.
		return nil
	}
	return r.db.WithContext(ctx).Exec("LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE").Error
}
