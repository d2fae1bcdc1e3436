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
	"github.com/sony/gobreaker/v2"

	"github.com/Alturino/storefront/internal/constants"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/product/internal/cache"
	"github.com/Alturino/storefront/product/internal/otel"
	"github.com/Alturino/storefront/product/response"
)

type Repository interface {
	FindProductById(c context.Context, id uuid.UUID) (response.Product, error)
	FindProducts(c context.Context) ([]response.Product, error)
	FindProductsByCategory(c context.Context, category string) ([]response.Product, error)
	CountProducts(c context.Context) (int64, error)
}

type ProductService struct {
	repository Repository
	cache      *redis.Client
	breaker    *gobreaker.CircuitBreaker[string]
	ttl        time.Duration
}

func NewProductService(repository Repository, cache *redis.Client, ttl time.Duration) *ProductService {
	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "product-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
	})
	return &ProductService{repository: repository, cache: cache, breaker: breaker, ttl: ttl}
}

func (svc *ProductService) FindProductById(
	c context.Context,
	id uuid.UUID,
) (product response.Product, err error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	cacheKey := fmt.Sprintf(cache.KeyProduct, id.String())
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "ProductService FindProductById").
		Str(constants.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	jsonCache, err := svc.breaker.Execute(func() (string, error) {
		return svc.cache.Get(c, cacheKey).Result()
	})
	if err == nil {
		err = json.Unmarshal([]byte(jsonCache), &product)
		if err == nil {
			span.AddEvent("found product in cache")
			logger.Debug().Msg("found product in cache")
			return product, nil
		}
		err = fmt.Errorf("failed unmarshaling product from cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	} else {
		logger.Debug().Err(err).Msg("product not served from cache")
	}

	logger = logger.With().Str(constants.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	product, err = svc.repository.FindProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding product in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Info().Msg("found product in database")

	logger = logger.With().Str(constants.KeyProcess, "inserting product to cache").Logger()
	value, err := json.Marshal(product)
	if err == nil {
		_, err = svc.breaker.Execute(func() (string, error) {
			return svc.cache.Set(c, cacheKey, value, svc.ttl).Result()
		})
	}
	if err != nil {
		err = fmt.Errorf("failed inserting product to cache with error=%w", err)
		logger.Warn().Err(err).Msg(err.Error())
	}

	return product, nil
}

// FindProducts returns the whole catalog, or one category when category is not empty.
func (svc *ProductService) FindProducts(c context.Context, category string) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "ProductService FindProducts").
		Str("category", category).
		Str(constants.KeyProcess, "finding products in database").
		Logger()

	logger.Trace().Msg("finding products in database")
	var (
		products []response.Product
		err      error
	)
	if category == "" {
		products, err = svc.repository.FindProducts(c)
	} else {
		products, err = svc.repository.FindProductsByCategory(c, category)
	}
	if err != nil {
		err = fmt.Errorf("failed finding products in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(products)).Msg("found products in database")

	return products, nil
}

func (svc *ProductService) CountProducts(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "ProductService CountProducts")
	defer span.End()

	count, err := svc.repository.CountProducts(c)
	if err != nil {
		err = fmt.Errorf("failed counting products with error=%w", err)
		inOtel.RecordError(err, span)
		zerolog.Ctx(c).Error().Err(err).Str(constants.KeyTag, "ProductService CountProducts").Msg(err.Error())
		return 0, err
	}
	return count, nil
}
