package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"blog-comment-api/internal/metrics"
	"blog-comment-api/internal/service"
)

// eventsChannel is the redis pub/sub channel carrying comment events
// between instances.
const eventsChannel = "comments.events"

// Hub fans comment events out to websocket subscribers, grouped by article.
// With a redis client configured, events travel through pub/sub so every
// instance behind the load balancer delivers them; without one the hub
// broadcasts in-process only.
type Hub struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	redis   *redis.Client

	mu          sync.RWMutex
	subscribers map[int64]map[*subscriber]bool

	register   chan *subscriber
	unregister chan *subscriber
	events     chan []byte

	done chan struct{}
}

// NewHub creates a hub. redisClient and m may be nil.
func NewHub(logger *zap.Logger, m *metrics.Metrics, redisClient *redis.Client) *Hub {
	return &Hub{
		logger:      logger,
		metrics:     m,
		redis:       redisClient,
		subscribers: make(map[int64]map[*subscriber]bool),
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		events:      make(chan []byte, 256),
		done:        make(chan struct{}),
	}
}

// Run processes registrations and event delivery until Stop is called.
func (h *Hub) Run() {
	if h.redis != nil {
		go h.consumeRedis()
	}

	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			if h.subscribers[sub.articleID] == nil {
				h.subscribers[sub.articleID] = make(map[*subscriber]bool)
			}
			h.subscribers[sub.articleID][sub] = true
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.IncrementWSConnections()
			}
			h.logger.Info("Subscriber registered",
				zap.Int64("article_id", sub.articleID),
			)

		case sub := <-h.unregister:
			h.mu.Lock()
			if subs, ok := h.subscribers[sub.articleID]; ok {
				if _, exists := subs[sub]; exists {
					delete(subs, sub)
					close(sub.send)
					if len(subs) == 0 {
						delete(h.subscribers, sub.articleID)
					}
				}
			}
			h.mu.Unlock()
			if h.metrics != nil {
				h.metrics.DecrementWSConnections()
			}

		case payload := <-h.events:
			h.deliver(payload)

		case <-h.done:
			return
		}
	}
}

// Stop shuts the hub down.
func (h *Hub) Stop() {
	close(h.done)
}

// PublishCommentEvent implements service.EventPublisher. With redis the
// event takes the pub/sub round trip; the local delivery happens when it
// comes back, exactly once per instance.
func (h *Hub) PublishCommentEvent(ctx context.Context, event service.CommentEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to serialize comment event", zap.Error(err))
		return
	}

	if h.redis != nil {
		if err := h.redis.Publish(ctx, eventsChannel, payload).Err(); err != nil {
			h.logger.Warn("Failed to publish comment event, delivering locally",
				zap.Error(err),
			)
			h.enqueue(payload)
		}
		return
	}

	h.enqueue(payload)
}

func (h *Hub) enqueue(payload []byte) {
	select {
	case h.events <- payload:
	default:
		h.logger.Warn("Event queue full, dropping comment event")
	}
}

// consumeRedis fans events published by any instance into the local hub.
func (h *Hub) consumeRedis() {
	pubsub := h.redis.Subscribe(context.Background(), eventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.enqueue([]byte(msg.Payload))
		case <-h.done:
			return
		}
	}
}

// deliver sends one event to every subscriber of its article. Slow
// subscribers are dropped rather than allowed to stall the hub.
func (h *Hub) deliver(payload []byte) {
	var envelope struct {
		ArticleID int64 `json:"article_id"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		h.logger.Warn("Dropping malformed comment event", zap.Error(err))
		return
	}

	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[envelope.ArticleID]))
	for sub := range h.subscribers[envelope.ArticleID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.send <- payload:
		default:
			h.logger.Warn("Subscriber too slow, disconnecting",
				zap.Int64("article_id", envelope.ArticleID),
			)
			go func(s *subscriber) {
				select {
				case h.unregister <- s:
				case <-h.done:
				}
			}(sub)
		}
	}
}
