package repository

import (
	"context"

	"anoa.com/unibot/internal/model"
	"gorm.io/gorm"
)

type AttachmentRepository interface {
	WithTx(tx *gorm.DB) AttachmentRepository
	Create(ctx context.Context, attachment *model.DeanAttachment) error
	FindByBroadcastID(ctx context.Context, broadcastID model.InternalID) ([]model.DeanAttachment, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) WithTx(tx *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: tx}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *model.DeanAttachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

func (r *attachmentRepository) FindByBroadcastID(ctx context.Context, broadcastID model.InternalID) ([]model.DeanAttachment, error) {
	var attachments []model.DeanAttachment
	err := r.db.WithContext(ctx).
		Where("broadcast_id = ?", broadcastID).
		Order("id ASC").
		Find(&attachments).Error
	return attachments, err
}
