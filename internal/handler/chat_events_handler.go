package handler

import (
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/service"
	internalWS "dreambees-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatEventsHandler streams message updates of one chat over a websocket.
type ChatEventsHandler struct {
	chatService service.IChatService
	hub         *internalWS.Hub
	logger      logger.ILogger
}

func NewChatEventsHandler(chatService service.IChatService, hub *internalWS.Hub, log logger.ILogger) *ChatEventsHandler {
	return &ChatEventsHandler{
		chatService: chatService,
		hub:         hub,
		logger:      log,
	}
}

// ServeWs validates the chat before upgrading so an unknown chat gets a plain 404.
func (h *ChatEventsHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	chatID, err := c.ParamsInt("chatId")
	if err != nil || chatID <= 0 {
		return apperror.BadRequest("Invalid chat ID")
	}

	if _, err := h.chatService.GetChat(c.UserContext(), int64(chatID)); err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatEventsHandler", "Starting WebSocket session", map[string]interface{}{"chat_id": chatID})
		internalWS.ServeWs(h.hub, conn, int64(chatID))
		h.logger.Info("ChatEventsHandler", "WebSocket session ended", map[string]interface{}{"chat_id": chatID})
	})(c)
}

func (h *ChatEventsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chats/:chatId/ws", h.ServeWs)
}
