package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"ai-tutoring-be/internal/model"
	"ai-tutoring-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// relayChannel is the Redis pub/sub channel every instance subscribes
// to. Envelopes carry the target user so each instance delivers only to
// the connections it holds.
const relayChannel = "cluster_events"

// broadcastTarget addresses every connected client.
const broadcastTarget = "*"

type relayEnvelope struct {
	TargetUserID string          `json:"target_user_id"`
	Message      json.RawMessage `json:"message"`
}

// Hub fans governance notices out to connected clients. One user may
// hold several connections at once. With a Redis client the hub also
// relays to other instances; without one it runs single-node.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]*Client

	register   chan *Client
	unregister chan *Client

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.relayLoop()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = append(h.clients[client.userID], client)
			h.mu.Unlock()
		case client := <-h.unregister:
			h.drop(client)
		}
	}
}

// drop removes a connection and closes its outbox. Calling it twice for
// the same connection is harmless; only the first call finds it.
func (h *Hub) drop(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[client.userID]
	for i, c := range conns {
		if c == client {
			h.clients[client.userID] = append(conns[:i], conns[i+1:]...)
			close(client.outbox)
			break
		}
	}
	if len(h.clients[client.userID]) == 0 {
		delete(h.clients, client.userID)
	}
}

// Send delivers a notification to every device of one user.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data := encodeNotice(notification)
	h.deliverLocal(userID.String(), data)
	h.relay(userID.String(), data)
}

// Broadcast delivers a notification to every connected client.
func (h *Hub) Broadcast(notification model.Notification) {
	data := encodeNotice(notification)
	h.deliverLocal(broadcastTarget, data)
	h.relay(broadcastTarget, data)
}

func encodeNotice(notification model.Notification) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}

// deliverLocal pushes data into the outbox of every matching local
// connection. A full outbox means the peer stopped reading; that
// connection is dropped instead of blocking the hub.
func (h *Hub) deliverLocal(target string, data []byte) {
	var stalled []*Client

	h.mu.RLock()
	if target == broadcastTarget {
		for _, conns := range h.clients {
			stalled = append(stalled, pushAll(conns, data)...)
		}
	} else if uid, err := uuid.Parse(target); err == nil {
		stalled = pushAll(h.clients[uid], data)
	}
	h.mu.RUnlock()

	for _, client := range stalled {
		h.logger.Warn("Hub", "Outbox full, dropping connection", map[string]interface{}{
			"user_id": client.userID.String(),
		})
		h.drop(client)
	}
}

func pushAll(conns []*Client, data []byte) (stalled []*Client) {
	for _, client := range conns {
		select {
		case client.outbox <- data:
		default:
			stalled = append(stalled, client)
		}
	}
	return stalled
}

// relay publishes the envelope for other instances. Best effort; local
// delivery already happened.
func (h *Hub) relay(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(relayEnvelope{TargetUserID: target, Message: data})
	if err := h.rdb.Publish(context.Background(), relayChannel, payload).Err(); err != nil {
		h.logger.Warn("Hub", "Relay publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) relayLoop() {
	pubsub := h.rdb.Subscribe(context.Background(), relayChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env relayEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "Malformed relay envelope", map[string]interface{}{"error": err.Error()})
			continue
		}
		h.deliverLocal(env.TargetUserID, env.Message)
	}
}
