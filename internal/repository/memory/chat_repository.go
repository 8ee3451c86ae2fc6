package memory

import (
	"context"
	"sort"
	"time"

	"dreambees-be/internal/entity"
	"dreambees-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type ChatRepository struct {
	store *Store
}

func NewChatRepository(store *Store) contract.ChatRepository {
	return &ChatRepository{store: store}
}

func (r *ChatRepository) Create(ctx context.Context, title string) (*entity.Chat, error) {
	chat := entity.NewChat(r.store.chatSeq.Add(1), title, time.Now())
	r.store.chats.Set(key(chat.Id), chat, cache.NoExpiration)

	out := chat
	return &out, nil
}

func (r *ChatRepository) FindAll(ctx context.Context) ([]*entity.Chat, error) {
	items := r.store.chats.Items()
	chats := make([]*entity.Chat, 0, len(items))
	for _, item := range items {
		chat := item.Object.(entity.Chat)
		chats = append(chats, &chat)
	}

	sort.Slice(chats, func(i, j int) bool {
		if chats[i].CreatedAt.Equal(chats[j].CreatedAt) {
			return chats[i].Id > chats[j].Id
		}
		return chats[i].CreatedAt.After(chats[j].CreatedAt)
	})
	return chats, nil
}

func (r *ChatRepository) FindById(ctx context.Context, id int64) (*entity.Chat, error) {
	if x, found := r.store.chats.Get(key(id)); found {
		chat := x.(entity.Chat)
		return &chat, nil
	}
	return nil, nil
}

func (r *ChatRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, found := r.store.chats.Get(key(id)); !found {
		return false, nil
	}
	r.store.chats.Delete(key(id))

	// cascade, like messages.chat_id ON DELETE CASCADE
	for k, item := range r.store.messages.Items() {
		if item.Object.(entity.Message).ChatId == id {
			r.store.messages.Delete(k)
		}
	}
	return true, nil
}
