// Package event publishes order lifecycle events on a redis channel and
// lets listeners consume them.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
)

type Type string

const (
	TypeOrderCreated       Type = "order.created"
	TypeOrderStatusUpdated Type = "order.status_updated"
)

type Event struct {
	Type        Type            `json:"type"`
	OrderID     uuid.UUID       `json:"orderId"`
	UserID      uuid.NullUUID   `json:"userId"`
	Status      status.Status   `json:"status"`
	PrevStatus  status.Status   `json:"prevStatus,omitempty"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

func OrderCreated(order response.Order, now time.Time) Event {
	return Event{
		Type:        TypeOrderCreated,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		OccurredAt:  now,
	}
}

func OrderStatusUpdated(order response.Order, prev status.Status, now time.Time) Event {
	return Event{
		Type:        TypeOrderStatusUpdated,
		OrderID:     order.ID,
		UserID:      order.UserID,
		Status:      order.Status,
		PrevStatus:  prev,
		TotalAmount: order.TotalAmount,
		OccurredAt:  now,
	}
}

func (e Event) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", string(e.Type)).
		Str(constants.KeyOrderID, e.OrderID.String()).
		Str(constants.KeyStatus, e.Status.String()).
		Str("totalAmount", e.TotalAmount.String())
}

type RedisPublisher struct {
	cache   *redis.Client
	channel string
}

func NewRedisPublisher(cache *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{cache: cache, channel: channel}
}

func (p *RedisPublisher) Publish(c context.Context, e Event) error {
	c, span := otel.Tracer.Start(c, "RedisPublisher Publish")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "RedisPublisher Publish").
		Str(constants.KeyChannel, p.channel).
		Object(constants.KeyEvent, e).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "marshaling event").Logger()
	payload, err := json.Marshal(e)
	if err != nil {
		err = fmt.Errorf("failed marshaling event with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(constants.KeyProcess, "publishing event").Logger()
	logger.Trace().Msg("publishing event")
	err = p.cache.Publish(c, p.channel, payload).Err()
	if err != nil {
		err = fmt.Errorf("failed publishing event with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("published event")

	return nil
}

type Handler func(context.Context, Event) error

// Listen consumes events on channel until c is done. Handler errors and
// malformed payloads are logged and skipped.
func Listen(c context.Context, cache *redis.Client, channel string, handle Handler) error {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "event Listen").
		Str(constants.KeyChannel, channel).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "subscribing channel").Logger()
	logger.Info().Msg("subscribing channel")
	pubsub := cache.Subscribe(c, channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(c); err != nil {
		err = fmt.Errorf("failed subscribing channel=%s with error=%w", channel, err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("subscribed channel")

	logger = logger.With().Str(constants.KeyProcess, "consuming events").Logger()
	messages := pubsub.Channel()
	for {
		select {
		case <-c.Done():
			logger.Info().Msg("stopped consuming events")
			return nil
		case msg, ok := <-messages:
			if !ok {
				logger.Info().Msg("channel closed")
				return nil
			}
			e := Event{}
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				err = fmt.Errorf("failed unmarshaling event with error=%w", err)
				logger.Error().Err(err).Str(constants.KeyBody, msg.Payload).Msg(err.Error())
				continue
			}
			mc, span := otel.Tracer.Start(c, "event Listen "+string(e.Type))
			if err := handle(mc, e); err != nil {
				err = fmt.Errorf("failed handling event with error=%w", err)
				otel.RecordError(err, span)
				logger.Error().Err(err).Object(constants.KeyEvent, e).Msg(err.Error())
			}
			span.End()
		}
	}
}
