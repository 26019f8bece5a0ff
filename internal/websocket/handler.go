package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeWs registers the upgraded connection with the hub and blocks in
// the read loop until the peer disconnects.
func ServeWs(hub *Hub, conn *websocket.Conn, userID uuid.UUID) {
	client := newClient(hub, conn, userID)
	hub.register <- client

	go client.writeLoop()
	client.readLoop()
}
