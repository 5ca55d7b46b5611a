package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/unibot/internal/dto"
	"anoa.com/unibot/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsChannel carries every domain event.
const EventsChannel = "unibot:events"

const (
	EventRequestCreated       = "request.created"
	EventRequestStatusChanged = "request.status_changed"
	EventCallbackCreated      = "callback.created"
	EventCallbackStatusChange = "callback.status_changed"
	EventBroadcastCreated     = "broadcast.created"
)

// UserChannel is the channel with the events concerning one user.
func UserChannel(id model.ExternalID) string {
	return fmt.Sprintf("user_notifications:%s", id)
}

type Event struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	UserID     model.ExternalID `json:"user_id"`
	OccurredAt string           `json:"occurred_at"`
	Payload    any              `json:"payload"`
}

// EventPublisher fans domain events out to the bot front-end. Publishing is best effort:
// failures are logged and never fail the operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, userID model.ExternalID, payload any)
}

type eventPublisher struct {
	redisClient *redis.Client
	log         *zap.Logger
}

func NewEventPublisher(redisClient *redis.Client, log *zap.Logger) EventPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &eventPublisher{
		redisClient: redisClient,
		log:         log.Named("events"),
	}
}

func (p *eventPublisher) Publish(ctx context.Context, eventType string, userID model.ExternalID, payload any) {
	if p.redisClient == nil {
		return
	}

	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: dto.FormatTime(time.Now()),
		Payload:    payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.log.Warn("failed to encode event", zap.String("type", eventType), zap.Error(err))
		return
	}

	for _, channel := range []string{EventsChannel, UserChannel(userID)} {
		if err := p.redisClient.Publish(ctx, channel, body).Err(); err != nil {
			p.log.Warn("failed to publish event",
				zap.String("channel", channel),
				zap.String("type", eventType),
				zap.Error(err))
		}
	}
}
