package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/photofolio/server/internal/middleware"
	"github.com/photofolio/server/internal/observability"
	"github.com/photofolio/server/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the page is public and the socket only pushes public data
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub   *services.WebSocketHub
	clock *services.ClockService
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *services.WebSocketHub, clock *services.ClockService) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, clock: clock}
}

// HandleConnection upgrades HTTP to WebSocket and manages the connection
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		observability.WithContext(r.Context()).WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := h.hub.NewClient(uuid.NewString(), middleware.GetVisitorID(r.Context()), conn)
	h.hub.Register(client)

	go client.WritePump()

	// blocks until the connection closes
	client.ReadPump(h.handleMessage)
}

// handleMessage processes incoming WebSocket messages
func (h *WebSocketHandler) handleMessage(client *services.WSClient, data []byte) {
	var msg services.WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.reply(client, services.WSMessage{Type: services.WSTypeError, Payload: "invalid message"})
		return
	}

	switch msg.Type {
	case services.WSTypeSubscribe:
		topic := topicOf(msg.Payload)
		if !services.KnownTopic(topic) {
			h.reply(client, services.WSMessage{Type: services.WSTypeError, Payload: "unknown topic: " + topic})
			return
		}
		h.hub.Subscribe(client, topic)
		h.reply(client, services.WSMessage{Type: services.WSTypeSubscribed, Topic: topic})

		// a new clock subscriber should not wait a second for its first tick
		if topic == services.TopicClock && h.clock != nil {
			h.reply(client, services.WSMessage{
				Type:    services.WSTypeClock,
				Topic:   topic,
				Payload: services.ClockPayload{Time: h.clock.Now(), Timezone: h.clock.Timezone()},
			})
		}

	case services.WSTypeUnsubscribe:
		h.hub.Unsubscribe(client, topicOf(msg.Payload))

	case services.WSTypePing:
		h.reply(client, services.WSMessage{Type: services.WSTypePong})

	default:
		observability.WithField("type", msg.Type).Debug("Unknown WebSocket message type")
	}
}

func (h *WebSocketHandler) reply(client *services.WSClient, msg services.WSMessage) {
	h.hub.SendToClient(client, msg)
}

// topicOf accepts either "topic" or {"topic": "..."} as payload
func topicOf(payload interface{}) string {
	switch p := payload.(type) {
	case string:
		return p
	case map[string]interface{}:
		if topic, ok := p["topic"].(string); ok {
			return topic
		}
	}
	return ""
}
