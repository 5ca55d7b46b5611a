package model

import (
	"time"

	"gorm.io/gorm"
)

// Request is a ticket addressed to the dean's office. UserID references users.user_id.
type Request struct {
	ID          InternalID    `gorm:"primaryKey" json:"id"`
	UserID      ExternalID    `gorm:"index;not null" json:"user_id"`
	Type        string        `gorm:"size:100;not null" json:"type"`
	Text        string        `gorm:"type:text;not null" json:"text"`
	Status      RequestStatus `gorm:"size:20;index;not null;default:new" json:"status"`
	Comment     *string       `gorm:"type:text" json:"comment"`
	ProcessedBy *ExternalID   `json:"processed_by"`
	ProcessedAt *time.Time    `json:"processed_at"`
	CreatedAt   time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = RequestNew
	}
	return nil
}

// RequestWithOwner is a request joined with its owner's users row.
type RequestWithOwner struct {
	Request
	OwnerName *string
	OwnerID   ExternalID
}
