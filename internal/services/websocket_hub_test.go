package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func receive(t *testing.T, c *WSClient) string {
	t.Helper()
	select {
	case msg, ok := <-c.Send:
		if !ok {
			return ""
		}
		return string(msg)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestWebSocketHub(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewWebSocketHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	clockSub := hub.NewClient("a", "v1", nil)
	feedSub := hub.NewClient("b", "v2", nil)
	hub.Register(clockSub)
	hub.Register(feedSub)
	hub.Subscribe(clockSub, TopicClock)
	hub.Subscribe(feedSub, TopicFeed)

	assert.Equal(t, 1, hub.GetTopicSubscriberCount(TopicClock))
	assert.Equal(t, 0, hub.GetTopicSubscriberCount("nope"))

	hub.BroadcastToTopic(TopicFeed, WSMessage{Type: WSTypeFeedUpdated})
	assert.Contains(t, receive(t, feedSub), `"topic":"feed"`)

	hub.BroadcastAll(WSMessage{Type: WSTypePing})
	assert.Contains(t, receive(t, clockSub), `"type":"ping"`)
	assert.Contains(t, receive(t, feedSub), `"type":"ping"`)

	hub.Unsubscribe(clockSub, TopicClock)
	assert.Equal(t, 0, hub.GetTopicSubscriberCount(TopicClock))

	cancel()
	<-hub.done

	_, open := <-clockSub.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.GetClientCount())

	// a stopped hub must not block callers
	late := hub.NewClient("c", "", nil)
	hub.Register(late)
	hub.BroadcastAll(WSMessage{Type: WSTypePing})
}

func TestKnownTopic(t *testing.T) {
	assert.True(t, KnownTopic(TopicClock))
	assert.True(t, KnownTopic(TopicFeed))
	assert.False(t, KnownTopic("admin"))
}
