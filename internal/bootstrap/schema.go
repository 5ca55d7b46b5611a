package bootstrap

import (
	"anoa.com/unibot/internal/model"
	"gorm.io/gorm"
)

// InitializeSchema creates every table that is missing. Running it again is a no-op.
func InitializeSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Request{},
		&model.CallbackRequest{},
		&model.DeanBroadcast{},
		&model.DeanAttachment{},
	)
}
