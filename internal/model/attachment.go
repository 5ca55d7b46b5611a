package model

import (
	"time"
)

// DeanBroadcast records one announcement sent by staff. AdminID references users.user_id.
type DeanBroadcast struct {
	ID          InternalID       `gorm:"primaryKey" json:"id"`
	AdminID     ExternalID       `gorm:"index;not null" json:"admin_id"`
	Text        string           `gorm:"type:text;not null" json:"text"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"created_at"`
	Attachments []DeanAttachment `gorm:"foreignKey:BroadcastID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// DeanAttachment is media carried by a broadcast. Type is free text (image, video, file, audio).
type DeanAttachment struct {
	ID          InternalID `gorm:"primaryKey" json:"id"`
	BroadcastID InternalID `gorm:"index;not null" json:"broadcast_id"`
	Type        string     `gorm:"size:50;not null" json:"type"`
	URL         string     `gorm:"type:text;not null" json:"url"`
	Filename    *string    `gorm:"size:255" json:"filename"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}
