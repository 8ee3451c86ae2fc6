package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"dreambees-be/internal/dto"
	"dreambees-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const ClusterChannel = "dreambees:chat_events"

// Hub fans message updates out to the websocket clients watching a chat.
// With Redis configured, updates made on one instance reach clients on all.
type Hub struct {
	// chat id -> connected clients
	rooms map[int64]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	// closed when Run returns, nothing reads register/unregister after that
	done chan struct{}

	mu sync.RWMutex

	// Redis connection for cross-instance communication, nil when disabled
	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

type clusterMessage struct {
	Origin  string          `json:"origin"`
	ChatID  int64           `json:"chat_id"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run serves register/unregister requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			close(h.done)
			return

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.ChatID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.ChatID] = room
			}
			room[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"chat_id": client.ChatID})

		case client := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[client.ChatID]; ok {
				if _, member := room[client]; member {
					delete(room, client)
					close(client.Send)
				}
				if len(room) == 0 {
					delete(h.rooms, client.ChatID)
				}
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client unregistered", map[string]interface{}{"chat_id": client.ChatID})
		}
	}
}

// NotifyMessageUpdated delivers event to local watchers of chatId and
// publishes it for the other instances.
func (h *Hub) NotifyMessageUpdated(chatId int64, event *dto.MessageEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(chatId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterMessage{Origin: h.instanceID, ChatID: chatId, Message: data})
		if err := h.rdb.Publish(context.Background(), ClusterChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

// ClientCount reports how many clients watch chatId on this instance.
func (h *Hub) ClientCount(chatId int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatId])
}

// join adds c to its chat room. It reports false once the hub has stopped.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// leave removes c from its room; a no-op once the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) deliver(chatId int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[chatId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping client", map[string]interface{}{"chat_id": chatId})
			// unregister needs the write lock; hand it off
			go h.leave(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, ClusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleClusterMessage(msg.Payload)
	}
}

func (h *Hub) handleClusterMessage(raw string) {
	var payload clusterMessage
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		h.logger.Warn("Hub", "Redis message parse error", map[string]interface{}{"error": err.Error()})
		return
	}
	if payload.Origin == h.instanceID {
		return
	}
	h.deliver(payload.ChatID, payload.Message)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for chatId, room := range h.rooms {
		for client := range room {
			close(client.Send)
		}
		delete(h.rooms, chatId)
	}
}
