package model

import (
	"time"

	"gorm.io/datatypes"
)

type Message struct {
	Id             int64          `gorm:"primaryKey;autoIncrement"`
	ChatId         int64          `gorm:"not null;index"`
	Chat           *Chat          `gorm:"foreignKey:ChatId;constraint:OnDelete:CASCADE"`
	Role           string         `gorm:"type:varchar(20);not null"`
	Content        string         `gorm:"type:text;not null"`
	ImageUrl       *string        `gorm:"type:text"`
	EditedImageUrl *string        `gorm:"type:text"`
	Metadata       datatypes.JSON // NULL when the message never carried an edit job
	CreatedAt      time.Time      `gorm:"autoCreateTime;not null;index"`
}

func (Message) TableName() string {
	return "messages"
}
