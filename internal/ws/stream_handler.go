package ws

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"blog-comment-api/internal/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// subscriber is one websocket connection watching a single article's
// comment stream.
type subscriber struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	articleID int64
}

// StreamHandler upgrades websocket requests onto the hub.
type StreamHandler struct {
	hub    *Hub
	logger *zap.Logger
}

func NewStreamHandler(hub *Hub, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, logger: logger}
}

// Stream godoc
// @Summary Subscribe to comment events
// @Description Opens a websocket delivering comment created/updated/liked/deleted events for one article
// @Tags comments
// @Param articleId path int true "Article ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} response.ErrorResponse
// @Router /articles/{articleId}/comments/stream [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	articleID, err := strconv.ParseInt(c.Param("articleId"), 10, 64)
	if err != nil || articleID <= 0 {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid article ID")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, 64),
		articleID: articleID,
	}
	h.hub.register <- sub

	go sub.writePump()
	go sub.readPump()
}

// readPump drains inbound frames so pongs are processed. The stream is
// one-way; client payloads are ignored.
func (s *subscriber) readPump() {
	defer func() {
		s.hub.unregister <- s
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
