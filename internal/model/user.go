package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        InternalID `gorm:"primaryKey" json:"id"`
	UserID    ExternalID `gorm:"uniqueIndex;not null" json:"user_id"`
	Name      *string    `gorm:"size:255" json:"name"`
	Group     *string    `gorm:"column:group_name;size:100" json:"group"`
	Role      Role       `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
