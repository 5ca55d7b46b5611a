package handler

import (
	"net/http"
	"strings"

	"anoa.com/unibot/internal/model"
	"anoa.com/unibot/internal/service"
	"anoa.com/unibot/pkg/apperror"
	"anoa.com/unibot/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventHandler relays published domain events to websocket clients.
type EventHandler struct {
	redisClient *redis.Client
	upgrader    websocket.Upgrader
	log         *zap.Logger
}

func NewEventHandler(redisClient *redis.Client, log *zap.Logger) *EventHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &EventHandler{
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS middleware already restricts browser origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.Named("events"),
	}
}

// channelFor picks the redis channel for the ?user_id= filter; no filter means every event.
func channelFor(c *gin.Context) (string, error) {
	raw := strings.TrimSpace(c.Query("user_id"))
	if raw == "" {
		return service.EventsChannel, nil
	}
	id, err := model.ParseExternalID(raw)
	if err != nil {
		return "", apperror.Validation("invalid user_id: " + raw)
	}
	return service.UserChannel(id), nil
}

func (h *EventHandler) HandleWebSocket(c *gin.Context) {
	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, response.ErrorBody{Error: "event stream unavailable"})
		return
	}

	channel, err := channelFor(c)
	if err != nil {
		response.ResponseError(c, h.log, err)
		return
	}

	ctx := c.Request.Context()
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		h.log.Error("failed to subscribe", zap.String("channel", channel), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, response.ErrorBody{Error: "event stream unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Payloads are already JSON event envelopes.
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-clientClosed:
			return
		case <-ctx.Done():
			return
		}
	}
}
