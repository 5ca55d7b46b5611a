package repository

import (
	"context"

	"anoa.com/unibot/internal/model"
	"gorm.io/gorm"
)

type CallbackRepository interface {
	WithTx(tx *gorm.DB) CallbackRepository
	Create(ctx context.Context, callback *model.CallbackRequest) error
	FindByID(ctx context.Context, id model.InternalID) (*model.CallbackRequest, error)
	FindByUser(ctx context.Context, userID model.ExternalID) ([]*model.CallbackRequest, error)
	FindAllWithOwner(ctx context.Context) ([]*model.CallbackWithOwner, error)
	UpdateStatus(ctx context.Context, id model.InternalID, status model.CallbackStatus) error
}

type callbackRepository struct {
	db *gorm.DB
}

func NewCallbackRepository(db *gorm.DB) CallbackRepository {
	return &callbackRepository{db: db}
}

func (r *callbackRepository) WithTx(tx *gorm.DB) CallbackRepository {
	return &callbackRepository{db: tx}
}

func (r *callbackRepository) Create(ctx context.Context, callback *model.CallbackRequest) error {
	return r.db.WithContext(ctx).Create(callback).Error
}

func (r *callbackRepository) FindByID(ctx context.Context, id model.InternalID) (*model.CallbackRequest, error) {
	var callback model.CallbackRequest
	if err := r.db.WithContext(ctx).First(&callback, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &callback, nil
}

func (r *callbackRepository) FindByUser(ctx context.Context, userID model.ExternalID) ([]*model.CallbackRequest, error) {
	var callbacks []*model.CallbackRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&callbacks).Error
	return callbacks, err
}

func (r *callbackRepository) FindAllWithOwner(ctx context.Context) ([]*model.CallbackWithOwner, error) {
	var rows []*model.CallbackWithOwner
	err := r.db.WithContext(ctx).
		Model(&model.CallbackRequest{}).
		Select("callback_requests.*, users.name AS owner_name, COALESCE(users.user_id, callback_requests.user_id) AS owner_id").
		Joins("LEFT JOIN users ON users.user_id = callback_requests.user_id").
		Order("callback_requests.id DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *callbackRepository) UpdateStatus(ctx context.Context, id model.InternalID, status model.CallbackStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.CallbackRequest{}).
		Where("id = ?", id).
		Update("status", status).Error
}
