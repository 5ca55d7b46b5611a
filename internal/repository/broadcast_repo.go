package repository

import (
	"context"

	"anoa.com/unibot/internal/model"
	"gorm.io/gorm"
)

type BroadcastRepository interface {
	WithTx(tx *gorm.DB) BroadcastRepository
	Create(ctx context.Context, broadcast *model.DeanBroadcast) error
	FindByID(ctx context.Context, id model.InternalID) (*model.DeanBroadcast, error)
	FindWithAttachments(ctx context.Context, id model.InternalID) (*model.DeanBroadcast, error)
	FindAll(ctx context.Context) ([]*model.DeanBroadcast, error)
}

type broadcastRepository struct {
	db *gorm.DB
}

func NewBroadcastRepository(db *gorm.DB) BroadcastRepository {
	return &broadcastRepository{db: db}
}

func (r *broadcastRepository) WithTx(tx *gorm.DB) BroadcastRepository {
	return &broadcastRepository{db: tx}
}

func (r *broadcastRepository) Create(ctx context.Context, broadcast *model.DeanBroadcast) error {
	return r.db.WithContext(ctx).Create(broadcast).Error
}

func (r *broadcastRepository) FindByID(ctx context.Context, id model.InternalID) (*model.DeanBroadcast, error) {
	var broadcast model.DeanBroadcast
	if err := r.db.WithContext(ctx).First(&broadcast, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &broadcast, nil
}

func (r *broadcastRepository) FindWithAttachments(ctx context.Context, id model.InternalID) (*model.DeanBroadcast, error) {
	var broadcast model.DeanBroadcast
	if err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		First(&broadcast, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &broadcast, nil
}

func (r *broadcastRepository) FindAll(ctx context.Context) ([]*model.DeanBroadcast, error) {
	var broadcasts []*model.DeanBroadcast
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&broadcasts).Error; err != nil {
		return nil, err
	}
	return broadcasts, nil
}
