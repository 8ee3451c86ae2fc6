package contract

import (
	"context"

	"dreambees-be/internal/entity"
)

// ChatRepository returns (nil, nil) from FindById when the chat does not exist.
type ChatRepository interface {
	Create(ctx context.Context, title string) (*entity.Chat, error)
	FindAll(ctx context.Context) ([]*entity.Chat, error) // newest first
	FindById(ctx context.Context, id int64) (*entity.Chat, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
