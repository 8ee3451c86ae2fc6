package model

import (
	"time"
)

type Chat struct {
	Id        int64     `gorm:"primaryKey;autoIncrement"`
	Title     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null;index"`
}

func (Chat) TableName() string {
	return "chats"
}
