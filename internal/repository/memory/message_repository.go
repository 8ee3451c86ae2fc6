package memory

import (
	"context"
	"sort"
	"time"

	"dreambees-be/internal/entity"
	"dreambees-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type MessageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) contract.MessageRepository {
	return &MessageRepository{store: store}
}

// Create holds the store lock so a message cannot land in a chat that is
// being deleted.
func (r *MessageRepository) Create(ctx context.Context, data contract.CreateMessageData) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, found := r.store.chats.Get(key(data.ChatId)); !found {
		return nil, contract.ErrChatNotFound
	}

	msg := entity.Message{
		Id:        r.store.messageSeq.Add(1),
		ChatId:    data.ChatId,
		Role:      data.Role,
		Content:   data.Content,
		CreatedAt: time.Now(),
	}
	msg = msg.Apply(entity.MessagePatch{
		ImageUrl:       entity.Optional[string]{Present: true, Value: data.ImageUrl},
		EditedImageUrl: entity.Optional[string]{Present: true, Value: data.EditedImageUrl},
		Metadata:       entity.Optional[entity.MessageMetadata]{Present: true, Value: data.Metadata},
	})

	r.store.messages.Set(key(msg.Id), msg, cache.NoExpiration)
	return &msg, nil
}

func (r *MessageRepository) FindByChatId(ctx context.Context, chatId int64) ([]*entity.Message, error) {
	items := r.store.messages.Items()
	messages := make([]*entity.Message, 0)
	for _, item := range items {
		msg := item.Object.(entity.Message)
		if msg.ChatId == chatId {
			messages = append(messages, &msg)
		}
	}

	sort.Slice(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].Id < messages[j].Id
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (r *MessageRepository) FindById(ctx context.Context, id int64) (*entity.Message, error) {
	if x, found := r.store.messages.Get(key(id)); found {
		msg := x.(entity.Message)
		return &msg, nil
	}
	return nil, nil
}

func (r *MessageRepository) Update(ctx context.Context, id int64, patch entity.MessagePatch) (*entity.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	x, found := r.store.messages.Get(key(id))
	if !found {
		return nil, nil
	}

	updated := x.(entity.Message).Apply(patch)
	r.store.messages.Set(key(id), updated, cache.NoExpiration)
	return &updated, nil
}

func (r *MessageRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, found := r.store.messages.Get(key(id)); !found {
		return false, nil
	}
	r.store.messages.Delete(key(id))
	return true, nil
}

func (r *MessageRepository) DeleteByChatId(ctx context.Context, chatId int64) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for k, item := range r.store.messages.Items() {
		if item.Object.(entity.Message).ChatId == chatId {
			r.store.messages.Delete(k)
			deleted++
		}
	}
	return deleted, nil
}
