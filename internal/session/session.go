// Package session persists the per-visitor session value, which carries the
// shopping cart and the authenticated user if any.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/domain"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/otel"
)

const keySession = "session:"

type Session struct {
	ID     uuid.UUID     `json:"id"`
	UserID uuid.NullUUID `json:"userId"`
	Cart   domain.Cart   `json:"cart"`
}

type RedisStore struct {
	cache *redis.Client
	ttl   time.Duration
}

func NewRedisStore(cache *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: cache, ttl: ttl}
}

func Key(id uuid.UUID) string {
	return keySession + id.String()
}

// FindSession returns an empty session for an id that has no stored value yet.
func (s *RedisStore) FindSession(c context.Context, id uuid.UUID) (Session, error) {
	c, span := otel.Tracer.Start(c, "RedisStore FindSession")
	defer span.End()

	cacheKey := Key(id)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "RedisStore FindSession").
		Str(constants.KeyCacheKey, cacheKey).
		Str(constants.KeyProcess, "finding session in cache").
		Logger()

	logger.Trace().Msg("finding session in cache")
	jsonCache, err := s.cache.Get(c, cacheKey).Result()
	if errors.Is(err, redis.Nil) {
		logger.Debug().Msg("session not found in cache returning empty session")
		return Session{ID: id, Cart: domain.Cart{Items: []domain.LineItem{}}}, nil
	}
	if err != nil {
		err = fmt.Errorf("failed finding session in cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	logger.Trace().Msg("found session in cache")

	logger = logger.With().Str(constants.KeyProcess, "unmarshaling session").Logger()
	sess := Session{}
	err = json.Unmarshal([]byte(jsonCache), &sess)
	if err != nil {
		err = fmt.Errorf("failed unmarshaling session with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Session{}, err
	}
	if sess.Cart.Items == nil {
		sess.Cart.Items = []domain.LineItem{}
	}
	logger.Debug().Int(constants.KeyCartItems, len(sess.Cart.Items)).Msg("found session")

	return sess, nil
}

// SaveSession replaces the stored session wholesale and refreshes its ttl.
func (s *RedisStore) SaveSession(c context.Context, sess Session) error {
	c, span := otel.Tracer.Start(c, "RedisStore SaveSession")
	defer span.End()

	cacheKey := Key(sess.ID)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "RedisStore SaveSession").
		Str(constants.KeyCacheKey, cacheKey).
		Str(constants.KeyProcess, "marshaling session").
		Logger()

	value, err := json.Marshal(sess)
	if err != nil {
		err = fmt.Errorf("failed marshaling session with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(constants.KeyProcess, "saving session to cache").Logger()
	logger.Trace().Msg("saving session to cache")
	err = s.cache.Set(c, cacheKey, value, s.ttl).Err()
	if err != nil {
		err = fmt.Errorf("failed saving session to cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Debug().Int(constants.KeyCartItems, len(sess.Cart.Items)).Msg("saved session to cache")

	return nil
}

func (s *RedisStore) RemoveSession(c context.Context, id uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "RedisStore RemoveSession")
	defer span.End()

	cacheKey := Key(id)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "RedisStore RemoveSession").
		Str(constants.KeyCacheKey, cacheKey).
		Logger()

	err := s.cache.Del(c, cacheKey).Err()
	if err != nil {
		err = fmt.Errorf("failed removing session from cache with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Debug().Msg("removed session from cache")
	return nil
}

type sessionIDKey struct{}

func AttachSessionID(c context.Context, id uuid.UUID) context.Context {
	return context.WithValue(c, sessionIDKey{}, id)
}

// IDFromContext returns uuid.Nil when no session middleware ran.
func IDFromContext(c context.Context) uuid.UUID {
	id, _ := c.Value(sessionIDKey{}).(uuid.UUID)
	return id
}
