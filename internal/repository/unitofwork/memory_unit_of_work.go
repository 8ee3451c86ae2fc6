package unitofwork

import (
	"context"
	"fmt"

	"dreambees-be/internal/repository/contract"
	"dreambees-be/internal/repository/memory"
)

// MemoryUnitOfWork tracks transaction state so callers behave the same on
// both backends, but writes land in the store immediately. Rollback does not
// undo them; services that need all-or-nothing clean up explicitly.
type MemoryUnitOfWork struct {
	store  *memory.Store
	active bool
}

func NewMemoryUnitOfWork(store *memory.Store) UnitOfWork {
	return &MemoryUnitOfWork{store: store}
}

func (u *MemoryUnitOfWork) Begin(ctx context.Context) error {
	if u.active {
		return fmt.Errorf("transaction already started")
	}
	u.active = true
	return nil
}

func (u *MemoryUnitOfWork) Commit() error {
	if !u.active {
		return fmt.Errorf("no transaction to commit")
	}
	u.active = false
	return nil
}

func (u *MemoryUnitOfWork) Rollback() error {
	if !u.active {
		return fmt.Errorf("no transaction to rollback")
	}
	u.active = false
	return nil
}

func (u *MemoryUnitOfWork) ChatRepository() contract.ChatRepository {
	return memory.NewChatRepository(u.store)
}

func (u *MemoryUnitOfWork) MessageRepository() contract.MessageRepository {
	return memory.NewMessageRepository(u.store)
}
