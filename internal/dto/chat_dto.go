package dto

import (
	"time"
)

type CreateChatRequest struct {
	Title string `json:"title"`
}

type ChatResponse struct {
	Id        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}
