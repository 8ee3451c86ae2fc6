package model

import "gorm.io/gorm"

// AutoMigrate creates or updates the chats and messages tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Chat{}, &Message{})
}
