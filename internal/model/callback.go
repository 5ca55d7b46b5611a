package model

import (
	"time"

	"gorm.io/gorm"
)

// CallbackRequest asks the dean's office to phone the user back.
type CallbackRequest struct {
	ID        InternalID     `gorm:"primaryKey" json:"id"`
	UserID    ExternalID     `gorm:"index;not null" json:"user_id"`
	Phone     string         `gorm:"size:32;not null" json:"phone"`
	Comment   *string        `gorm:"type:text" json:"comment"`
	Status    CallbackStatus `gorm:"size:20;not null;default:waiting" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (c *CallbackRequest) BeforeCreate(tx *gorm.DB) error {
	if c.Status == "" {
		c.Status = CallbackWaiting
	}
	return nil
}

type CallbackWithOwner struct {
	CallbackRequest
	OwnerName *string
	OwnerID   ExternalID
}
