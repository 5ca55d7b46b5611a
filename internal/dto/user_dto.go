package dto

import "anoa.com/unibot/internal/model"

type UserRecord struct {
	ID        model.InternalID `json:"id"`
	UserID    model.ExternalID `json:"user_id"`
	Name      *string          `json:"name"`
	Group     *string          `json:"group"`
	Role      model.Role       `json:"role"`
	CreatedAt string           `json:"created_at"`
}

func NewUserRecord(u *model.User) *UserRecord {
	if u == nil {
		return nil
	}
	return &UserRecord{
		ID:        u.ID,
		UserID:    u.UserID,
		Name:      u.Name,
		Group:     u.Group,
		Role:      u.Role,
		CreatedAt: FormatTime(u.CreatedAt),
	}
}

type RoleChangeResponse struct {
	Status string     `json:"status"`
	Role   model.Role `json:"role"`
}

type GroupChangeResponse struct {
	Status string `json:"status"`
	Group  string `json:"group"`
}
