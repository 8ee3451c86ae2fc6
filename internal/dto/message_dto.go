package dto

import (
	"time"
)

type MessageMetadataDTO struct {
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=processing completed error"`
	Error          string `json:"error,omitempty"`
	OriginalPrompt string `json:"originalPrompt,omitempty"`
	Seed           *int64 `json:"seed,omitempty"`
}

// CreateMessageRequest is the body of POST /api/chats/:chatId/messages.
// Content is checked for blankness by the service so a whitespace-only
// prompt is rejected the same way as an empty one.
type CreateMessageRequest struct {
	Role           string              `json:"role" validate:"required,oneof=user assistant"`
	Content        string              `json:"content"`
	ImageUrl       *string             `json:"imageUrl,omitempty" validate:"omitempty,max=2048"`
	EditedImageUrl *string             `json:"editedImageUrl,omitempty" validate:"omitempty,max=2048"`
	Metadata       *MessageMetadataDTO `json:"metadata,omitempty"`
}

type MessageResponse struct {
	Id             int64               `json:"id"`
	ChatId         int64               `json:"chatId"`
	Role           string              `json:"role"`
	Content        string              `json:"content"`
	ImageUrl       *string             `json:"imageUrl"`
	EditedImageUrl *string             `json:"editedImageUrl"`
	Metadata       *MessageMetadataDTO `json:"metadata"`
	CreatedAt      time.Time           `json:"createdAt"`
}

type MessageStatusResponse struct {
	Id             int64   `json:"id"`
	Status         string  `json:"status"`
	EditedImageUrl *string `json:"editedImageUrl,omitempty"`
	Error          string  `json:"error,omitempty"`
}

// ImageEditJobMessage is the payload handed from the request path to the edit worker.
type ImageEditJobMessage struct {
	MessageId int64  `json:"message_id"`
	ChatId    int64  `json:"chat_id"`
	ImageUrl  string `json:"image_url"`
	Prompt    string `json:"prompt"`
}

type UploadImageResponse struct {
	ImageUrl string `json:"imageUrl"`
}

// MessageEvent is pushed to websocket subscribers of a chat.
type MessageEvent struct {
	Type string           `json:"type"`
	Data *MessageResponse `json:"data"`
}
