package contract

import (
	"context"
	"errors"

	"dreambees-be/internal/entity"
)

// ErrChatNotFound is returned by Create when the target chat does not exist.
var ErrChatNotFound = errors.New("chat not found")

type CreateMessageData struct {
	ChatId         int64
	Role           entity.MessageRole
	Content        string
	ImageUrl       *string
	EditedImageUrl *string
	Metadata       *entity.MessageMetadata
}

// MessageRepository returns (nil, nil) from FindById and Update when the
// message does not exist. Update never changes Id, ChatId, Role, Content or
// CreatedAt; concurrent updates of one message are last-write-wins.
type MessageRepository interface {
	Create(ctx context.Context, data CreateMessageData) (*entity.Message, error)
	FindByChatId(ctx context.Context, chatId int64) ([]*entity.Message, error) // oldest first
	FindById(ctx context.Context, id int64) (*entity.Message, error)
	Update(ctx context.Context, id int64, patch entity.MessagePatch) (*entity.Message, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteByChatId(ctx context.Context, chatId int64) (int64, error)
}
