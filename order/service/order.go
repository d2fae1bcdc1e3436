package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/metrics"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/order/event"
	"github.com/Alturino/storefront/order/internal/cache"
	"github.com/Alturino/storefront/order/internal/otel"
	"github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
)

type Repository interface {
	FindOrderById(c context.Context, id uuid.UUID) (response.Order, error)
	FindOrders(c context.Context) ([]response.Order, error)
	FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]response.Order, error)
	UpdateOrderStatus(c context.Context, id uuid.UUID, from status.Status, to status.Status) (response.Order, error)
}

type OrderService struct {
	repository Repository
	cache      *redis.Client
	publisher  Publisher
	metrics    *metrics.Metrics
	ttl        time.Duration
	now        func() time.Time
}

func NewOrderService(
	repository Repository,
	cache *redis.Client,
	publisher Publisher,
	m *metrics.Metrics,
	ttl time.Duration,
) *OrderService {
	return &OrderService{
		repository: repository,
		cache:      cache,
		publisher:  publisher,
		metrics:    m,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (svc *OrderService) FindOrderById(c context.Context, id uuid.UUID) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KeyOrder, id.String())
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderService FindOrderById").
		Str(constants.KeyOrderID, id.String()).
		Str(constants.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "finding order in cache").Logger()
	logger.Trace().Msg("finding order in cache")
	jsonCache, err := svc.cache.Get(c, cacheKey).Result()
	if err == nil {
		order := response.Order{}
		err = json.Unmarshal([]byte(jsonCache), &order)
		if err == nil {
			logger.Debug().Msg("found order in cache")
			return order, nil
		}
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Msg("failed finding order in cache")
	}

	logger = logger.With().Str(constants.KeyProcess, "finding order in database").Logger()
	logger.Trace().Msg("finding order in database")
	order, err := svc.repository.FindOrderById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding order in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("found order in database")

	logger = logger.With().Str(constants.KeyProcess, "inserting order to cache").Logger()
	value, err := json.Marshal(order)
	if err == nil {
		err = svc.cache.Set(c, cacheKey, value, svc.ttl).Err()
	}
	if err != nil {
		logger.Warn().Err(err).Msg("failed inserting order to cache")
	}

	return order, nil
}

func (svc *OrderService) FindOrders(c context.Context) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderService FindOrders").
		Str(constants.KeyProcess, "finding orders").
		Logger()

	orders, err := svc.repository.FindOrders(c)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(orders)).Msg("found orders")

	return orders, nil
}

func (svc *OrderService) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrdersByUserId")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderService FindOrdersByUserId").
		Str(constants.KeyUserID, userId.String()).
		Str(constants.KeyProcess, "finding orders").
		Logger()

	orders, err := svc.repository.FindOrdersByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(orders)).Msg("found orders")

	return orders, nil
}

// UpdateOrderStatus moves the order to the requested status when the status
// machine allows it. Requesting the current status returns the order unchanged.
func (svc *OrderService) UpdateOrderStatus(c context.Context, id uuid.UUID, requested string) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderService UpdateOrderStatus").
		Str(constants.KeyOrderID, id.String()).
		Str(constants.KeyStatus, requested).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "parsing status").Logger()
	next, err := status.Parse(requested)
	if err != nil {
		err = fmt.Errorf("failed parsing status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(constants.KeyProcess, "finding order").Logger()
	logger.Trace().Msg("finding order")
	order, err := svc.repository.FindOrderById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	prev := order.Status
	if prev == next {
		logger.Info().Msg("order already in requested status")
		return order, nil
	}

	logger = logger.With().Str(constants.KeyProcess, "transitioning status").Logger()
	_, err = prev.Transition(next)
	if err != nil {
		err = fmt.Errorf("failed transitioning from=%s to=%s with error=%w", prev, next, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(constants.KeyProcess, "updating order status").Logger()
	logger.Trace().Msg("updating order status")
	order, err = svc.repository.UpdateOrderStatus(c, id, prev, next)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	svc.metrics.StatusTransitions.WithLabelValues(prev.String(), next.String()).Inc()
	logger.Info().Str("prevStatus", prev.String()).Msg("updated order status")

	cacheKey := fmt.Sprintf(cache.KeyOrder, id.String())
	err = svc.cache.Del(c, cacheKey).Err()
	if err != nil {
		logger.Warn().Err(err).Str(constants.KeyCacheKey, cacheKey).Msg("failed invalidating order cache")
	}

	err = svc.publisher.Publish(c, event.OrderStatusUpdated(order, prev, svc.now()))
	if err != nil {
		logger.Warn().Err(err).Msg("failed publishing order status updated event")
	}

	return order, nil
}
