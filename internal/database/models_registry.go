package database

import "github.com/madaghaxx/Noctua/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before children so foreign keys resolve on creation.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Media{},
		&models.Subscription{},
		&models.Report{},
		&models.Notification{},
	}
}
