package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/innerlight/circles-backend/internal/eventbus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const redisPubSubChannel = "circles:events"

// DefaultMaxSocketsPerUser caps concurrent sockets for one user
const DefaultMaxSocketsPerUser = 5

// Event is the frame pushed to sockets
type Event struct {
	Payload interface{} `json:"payload"`
	Type    string      `json:"type"` // bus topic, e.g. "message.sent"
}

// Hub manages WebSocket clients and fans events out to them
type Hub struct {
	ctx         context.Context
	redisClient *redis.Client
	// Registered clients grouped by user ID
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *targetedEvent
	cancel     context.CancelFunc
	logger     zerolog.Logger
	instanceID string
	maxPerUser int
	seq        uint64
	mu         sync.RWMutex
}

// targetedEvent UserID "" means every connected client
type targetedEvent struct {
	Event  *Event `json:"event"`
	UserID string `json:"user_id"`
	Origin string `json:"origin"`
}

// NewHub creates a new Hub. redisClient may be nil (single instance).
// When a user opens more than maxPerUser sockets the oldest one is closed;
// maxPerUser <= 0 means DefaultMaxSocketsPerUser.
func NewHub(redisClient *redis.Client, maxPerUser int, logger zerolog.Logger) *Hub {
	if maxPerUser <= 0 {
		maxPerUser = DefaultMaxSocketsPerUser
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		maxPerUser:  maxPerUser,
		clients:     make(map[string]map[*Client]bool),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *targetedEvent, 256),
		redisClient: redisClient,
		logger:      logger,
		instanceID:  uuid.NewString(),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister removes a client whose socket went away
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.addLocked(client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client, reasonNormal)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.deliver(msg)

		case <-h.ctx.Done():
			h.closeAll()
			return
		}
	}
}

// addLocked registers client and evicts the user's oldest socket over the cap
func (h *Hub) addLocked(client *Client) {
	h.seq++
	client.seq = h.seq
	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	sockets := h.clients[client.userID]
	sockets[client] = true
	if len(sockets) <= h.maxPerUser {
		return
	}

	var oldest *Client
	for c := range sockets {
		if oldest == nil || c.seq < oldest.seq {
			oldest = c
		}
	}
	h.logger.Info().Str("user_id", client.userID).Int("max", h.maxPerUser).Msg("closing oldest circle socket")
	h.removeLocked(oldest, ReasonTooMany)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sockets := range h.clients {
		for c := range sockets {
			h.removeLocked(c, ReasonShutdown)
		}
	}
}

func (h *Hub) deliver(msg *targetedEvent) {
	data, err := json.Marshal(msg.Event)
	if err != nil {
		h.logger.Warn().Err(err).Str("type", msg.Event.Type).Msg("ws event encode failed")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.UserID != "" {
		for client := range h.clients[msg.UserID] {
			h.sendLocked(client, data)
		}
		return
	}
	for _, clients := range h.clients {
		for client := range clients {
			h.sendLocked(client, data)
		}
	}
}

// sendLocked drops clients whose buffer is full
func (h *Hub) sendLocked(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.removeLocked(client, ReasonSlowConsumer)
	}
}

func (h *Hub) removeLocked(client *Client, reason CloseReason) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	client.reason = reason
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

// SendToUser pushes an event to every socket of one user (local + Redis publish)
func (h *Hub) SendToUser(userID string, event *Event) {
	h.dispatch(&targetedEvent{UserID: userID, Event: event, Origin: h.instanceID})
}

// Broadcast pushes an event to every connected socket
func (h *Hub) Broadcast(event *Event) {
	h.dispatch(&targetedEvent{Event: event, Origin: h.instanceID})
}

func (h *Hub) dispatch(msg *targetedEvent) {
	select {
	case h.broadcast <- msg:
	case <-h.ctx.Done():
		return
	}

	// Publish to Redis for multi-instance support
	if h.redisClient != nil {
		data, err := json.Marshal(msg)
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

// ClientCount number of sockets connected for userID
func (h *Hub) ClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// subscribeRedis listens for events published by other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var te targetedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &te); err != nil || te.Event == nil {
				continue
			}
			if te.Origin == h.instanceID {
				continue
			}
			// Only local delivery (don't re-publish to Redis)
			select {
			case h.broadcast <- &te:
			case <-h.ctx.Done():
				return
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// broadcastTopics are shared store changes every client sees
var broadcastTopics = map[string]bool{
	eventbus.TopicCirclesLoaded: true,
	eventbus.TopicEventCreated:  true,
	eventbus.TopicEventJoined:   true,
	eventbus.TopicEventLeft:     true,
}

// Forward pushes bus events to sockets: shared store changes go to everyone,
// session-scoped ones only to the acting user.
func (h *Hub) Forward(bus *eventbus.Bus) {
	if bus == nil {
		return
	}
	bus.Subscribe("ws", eventbus.TopicAll, func(e eventbus.Event) {
		frame := &Event{Type: e.Topic, Payload: e.Payload}
		switch {
		case broadcastTopics[e.Topic]:
			h.Broadcast(frame)
		case e.UserID != "":
			h.SendToUser(e.UserID, frame)
		}
	})
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
