package memory

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/patrickmn/go-cache"
)

// Store holds chats and messages for the process lifetime. Items never expire.
type Store struct {
	chats    *cache.Cache
	messages *cache.Cache

	chatSeq    atomic.Int64
	messageSeq atomic.Int64

	// mu serialises read-modify-write sequences; single Get/Set calls are
	// already safe on go-cache.
	mu sync.Mutex
}

func NewStore() *Store {
	return &Store{
		chats:    cache.New(cache.NoExpiration, 0),
		messages: cache.New(cache.NoExpiration, 0),
	}
}

func key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Reset drops every record and restarts id sequences.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats.Flush()
	s.messages.Flush()
	s.chatSeq.Store(0)
	s.messageSeq.Store(0)
}
