package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/photofolio/server/internal/observability"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Topic   string      `json:"topic,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WSClient represents a connected WebSocket client
type WSClient struct {
	ID         string
	VisitorID  string
	Topics     map[string]bool
	Conn       *websocket.Conn
	Send       chan []byte
	hub        *WebSocketHub
	mu         sync.Mutex
	closedOnce sync.Once
}

// WebSocketHub fans server pushes out to connected pages
type WebSocketHub struct {
	clients    map[*WSClient]bool
	topics     map[string]map[*WSClient]bool // topic -> clients
	visitors   map[string]map[*WSClient]bool // visitorID -> clients
	unregister chan *WSClient
	broadcast  chan *broadcastMsg
	done       chan struct{}
	stopped    bool
	mu         sync.RWMutex
}

type broadcastMsg struct {
	client    *WSClient // if set, only this client
	topic     string
	visitorID string // if set, only this visitor's tabs
	message   []byte
}

// NewWebSocketHub creates a new WebSocket hub
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*WSClient]bool),
		topics:     make(map[string]map[*WSClient]bool),
		visitors:   make(map[string]map[*WSClient]bool),
		unregister: make(chan *WSClient),
		broadcast:  make(chan *broadcastMsg, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			observability.WithField("client_id", client.ID).Debug("WebSocket client disconnected")

		case msg := <-h.broadcast:
			h.mu.RLock()
			var targets map[*WSClient]bool
			switch {
			case msg.client != nil:
				if h.clients[msg.client] {
					targets = map[*WSClient]bool{msg.client: true}
				}
			case msg.visitorID != "":
				targets = h.visitors[msg.visitorID]
			case msg.topic != "":
				targets = h.topics[msg.topic]
			default:
				targets = h.clients
			}

			var slow []*WSClient
			for client := range targets {
				select {
				case client.Send <- msg.message:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			// a client that cannot keep up is dropped
			if len(slow) > 0 {
				h.mu.Lock()
				for _, c := range slow {
					h.remove(c)
				}
				h.mu.Unlock()
			}
		}
	}
}

// remove detaches a client; callers hold h.mu
func (h *WebSocketHub) remove(client *WSClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	for topic := range client.Topics {
		if topicClients, ok := h.topics[topic]; ok {
			delete(topicClients, client)
			if len(topicClients) == 0 {
				delete(h.topics, topic)
			}
		}
	}
	if visitorClients, ok := h.visitors[client.VisitorID]; ok {
		delete(visitorClients, client)
		if len(visitorClients) == 0 {
			delete(h.visitors, client.VisitorID)
		}
	}
	close(client.Send)
}

func (h *WebSocketHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
	for client := range h.clients {
		h.remove(client)
	}
}

// Register adds a client to the hub. On a stopped hub the client's
// Send channel is closed straight away.
func (h *WebSocketHub) Register(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		close(client.Send)
		return
	}

	h.clients[client] = true
	if client.VisitorID != "" {
		if h.visitors[client.VisitorID] == nil {
			h.visitors[client.VisitorID] = make(map[*WSClient]bool)
		}
		h.visitors[client.VisitorID][client] = true
	}
	observability.WithField("client_id", client.ID).Debug("WebSocket client connected")
}

// Unregister removes a client from the hub
func (h *WebSocketHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe adds a registered client to a topic
func (h *WebSocketHub) Subscribe(client *WSClient, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	client.Topics[topic] = true
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*WSClient]bool)
	}
	h.topics[topic][client] = true
}

// Unsubscribe removes a client from a topic
func (h *WebSocketHub) Unsubscribe(client *WSClient, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(client.Topics, topic)
	if topicClients, ok := h.topics[topic]; ok {
		delete(topicClients, client)
		if len(topicClients) == 0 {
			delete(h.topics, topic)
		}
	}
}

// BroadcastToTopic sends a message to all clients subscribed to a topic
func (h *WebSocketHub) BroadcastToTopic(topic string, msg WSMessage) {
	msg.Topic = topic
	h.enqueue(&broadcastMsg{topic: topic}, msg)
}

// SendToVisitor sends a message to every open tab of one visitor
func (h *WebSocketHub) SendToVisitor(visitorID string, msg WSMessage) {
	if visitorID == "" {
		return
	}
	h.enqueue(&broadcastMsg{visitorID: visitorID}, msg)
}

// SendToClient replies to a single client through the hub, which owns its Send channel
func (h *WebSocketHub) SendToClient(client *WSClient, msg WSMessage) {
	h.enqueue(&broadcastMsg{client: client}, msg)
}

// BroadcastAll sends a message to all connected clients
func (h *WebSocketHub) BroadcastAll(msg WSMessage) {
	h.enqueue(&broadcastMsg{}, msg)
}

// enqueue never blocks; with the hub stopped or backed up the message is dropped
func (h *WebSocketHub) enqueue(b *broadcastMsg, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		observability.WithError(err).Error("Error marshaling WebSocket message")
		return
	}
	b.message = data

	select {
	case h.broadcast <- b:
	default:
		observability.WithField("type", msg.Type).Warn("WebSocket broadcast queue full, dropping message")
	}
}

// GetClientCount returns the number of connected clients
func (h *WebSocketHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetTopicSubscriberCount returns the number of subscribers for a topic
func (h *WebSocketHub) GetTopicSubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// NewClient creates a new WebSocket client connected to this hub
func (h *WebSocketHub) NewClient(id, visitorID string, conn *websocket.Conn) *WSClient {
	return &WSClient{
		ID:        id,
		VisitorID: visitorID,
		Topics:    make(map[string]bool),
		Conn:      conn,
		Send:      make(chan []byte, 64),
		hub:       h,
	}
}

// Close closes the client connection
func (c *WSClient) Close() {
	c.closedOnce.Do(func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	})
}

// WritePump pumps messages from the hub to the websocket connection
func (c *WSClient) WritePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.mu.Lock()
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				c.mu.Unlock()
				return
			}
			err := c.Conn.WriteMessage(websocket.TextMessage, message)
			c.mu.Unlock()

			if err != nil {
				return
			}

		case <-ticker.C:
			c.mu.Lock()
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			err := c.Conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// ReadPump pumps messages from the websocket connection to the handler
func (c *WSClient) ReadPump(onMessage func(client *WSClient, data []byte)) {
	defer c.Close()

	c.Conn.SetReadLimit(4 * 1024)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				observability.WithError(err).Warn("WebSocket read error")
			}
			return
		}

		if onMessage != nil {
			onMessage(c, message)
		}
	}
}

// Message types
const (
	WSTypeClock        = "clock"
	WSTypeFeedUpdated  = "feed_updated"
	WSTypeThemeChanged = "theme_changed"
	WSTypeSubscribed   = "subscribed"
	WSTypeError        = "error"
	WSTypeSubscribe    = "subscribe"
	WSTypeUnsubscribe  = "unsubscribe"
	WSTypePing         = "ping"
	WSTypePong         = "pong"
)

// Topics
const (
	TopicClock = "clock"
	TopicFeed  = "feed"
)

// KnownTopic reports whether clients may subscribe to topic
func KnownTopic(topic string) bool {
	return topic == TopicClock || topic == TopicFeed
}

// ClockPayload is pushed every second on the clock topic
type ClockPayload struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
}

// FeedUpdatedPayload is pushed after a successful feed rebuild
type FeedUpdatedPayload struct {
	Count       int       `json:"count"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ThemeChangedPayload tells a visitor's other tabs to switch theme
type ThemeChangedPayload struct {
	Theme string `json:"theme"`
}
