package websocket

import (
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches the connection to the chat's room and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, chatID int64) {
	client := &Client{Hub: hub, Conn: c, ChatID: chatID, Send: make(chan []byte, 256)}
	if !hub.join(client) {
		_ = c.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
