package specification

import (
	"gorm.io/gorm"
)

type ByChatID struct {
	ChatID int64
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}
