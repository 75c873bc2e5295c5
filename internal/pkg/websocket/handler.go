package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/coursegpa/internal/pkg/feed"
)

// Source opens a subscription that stays live until ctx is done
type Source[T any] func(ctx context.Context) (*feed.Subscription[T], error)

// Handler streams a feed to WebSocket clients, one subscription per connection
type Handler[T any] struct {
	hub    *Hub
	source Source[T]
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler[T any](hub *Hub, source Source[T], logger zerolog.Logger) *Handler[T] {
	return &Handler[T]{
		hub:    hub,
		source: source,
		logger: logger,
	}
}

// HandleConnection subscribes first, so a store failure can still be answered
// with a plain HTTP error, then upgrades and starts the pumps.
func (h *Handler[T]) HandleConnection(c *gin.Context) {
	// the request context ends when this handler returns, the stream must outlive it
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := h.source(ctx)
	if err != nil {
		cancel()
		h.logger.Error().Err(err).Msg("Failed to open subscription for WebSocket client")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Course stream unavailable",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		cancel()
		sub.Close()
		h.logger.Error().Err(err).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := newClient(h.hub, conn, cancel, h.logger)
	if !h.hub.Register(client) {
		cancel()
		sub.Close()
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
	go forward(client, sub)

	h.logger.Info().
		Str("clientID", client.id).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}

// forward copies events from the subscription into the client's queue. It
// ends when either side closes.
func forward[T any](client *Client, sub *feed.Subscription[T]) {
	defer sub.Close()

	for {
		select {
		case ev, ok := <-sub.Updates():
			if !ok {
				client.close()
				return
			}
			data, err := json.Marshal(Message{
				Type:      MessageTypeSnapshot,
				Seq:       ev.Seq,
				Data:      ev.Value,
				Timestamp: ev.PublishedAt,
			})
			if err != nil {
				client.logger.Error().Err(err).Uint64("seq", ev.Seq).Msg("Failed to marshal snapshot")
				continue
			}
			select {
			case client.send <- data:
			case <-client.done:
				return
			}
		case <-client.done:
			return
		}
	}
}
