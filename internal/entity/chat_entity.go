package entity

import (
	"strings"
	"time"
)

type Chat struct {
	Id        int64
	Title     string
	CreatedAt time.Time
}

func NewChat(id int64, title string, createdAt time.Time) Chat {
	return Chat{
		Id:        id,
		Title:     title,
		CreatedAt: createdAt,
	}
}

func (c Chat) IsValid() bool {
	return strings.TrimSpace(c.Title) != ""
}
