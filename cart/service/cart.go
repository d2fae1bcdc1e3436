package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/domain"
	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/request"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/metrics"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
	productResponse "github.com/Alturino/storefront/product/response"
)

type SessionStore interface {
	FindSession(c context.Context, id uuid.UUID) (session.Session, error)
	SaveSession(c context.Context, sess session.Session) error
}

type Catalog interface {
	FindProductById(c context.Context, id uuid.UUID) (productResponse.Product, error)
}

type CartService struct {
	sessions SessionStore
	catalog  Catalog
	metrics  *metrics.Metrics
}

func NewCartService(sessions SessionStore, catalog Catalog, m *metrics.Metrics) *CartService {
	return &CartService{sessions: sessions, catalog: catalog, metrics: m}
}

// AddItem checks the product against the catalog and merges the line into the
// session cart. Missing name, image or a non positive price fall back to the
// catalog values.
func (svc *CartService) AddItem(
	c context.Context,
	sessionID uuid.UUID,
	param request.AddToCart,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartService AddItem").
		Str(constants.KeySessionID, sessionID.String()).
		Object(constants.KeyRequest, param).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	product, err := svc.catalog.FindProductById(c, param.ProductID)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	logger.Trace().Msg("found product")

	item := param.LineItem()
	if item.Name == "" {
		item.Name = product.Name
	}
	if item.Image == "" {
		item.Image = product.Image
	}
	if !item.Price.IsPositive() {
		item.Price = product.Price
	}

	return svc.mutate(c, sessionID, "add", func(cart domain.Cart) (domain.Cart, error) {
		return domain.AddItem(cart, item), nil
	})
}

func (svc *CartService) GetCart(c context.Context, sessionID uuid.UUID) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartService GetCart").
		Str(constants.KeySessionID, sessionID.String()).
		Str(constants.KeyProcess, "finding session").
		Logger()

	sess, err := svc.sessions.FindSession(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed finding session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	logger.Debug().Int(constants.KeyCartItems, len(sess.Cart.Items)).Msg("found cart")

	return sess.Cart, nil
}

func (svc *CartService) RemoveItem(c context.Context, sessionID uuid.UUID, lineID uuid.UUID) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	return svc.mutate(c, sessionID, "remove", func(cart domain.Cart) (domain.Cart, error) {
		return domain.RemoveItem(cart, lineID)
	})
}

func (svc *CartService) UpdateQuantity(
	c context.Context,
	sessionID uuid.UUID,
	lineID uuid.UUID,
	direction domain.Direction,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	return svc.mutate(c, sessionID, string(direction), func(cart domain.Cart) (domain.Cart, error) {
		return domain.UpdateQuantity(cart, lineID, direction)
	})
}

// mutate loads the session, applies fn and saves the result. A failing fn leaves
// the stored session untouched.
func (svc *CartService) mutate(
	c context.Context,
	sessionID uuid.UUID,
	operation string,
	fn func(domain.Cart) (domain.Cart, error),
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService mutate")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartService mutate").
		Str(constants.KeySessionID, sessionID.String()).
		Str("operation", operation).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "finding session").Logger()
	logger.Trace().Msg("finding session")
	sess, err := svc.sessions.FindSession(c, sessionID)
	if err != nil {
		err = fmt.Errorf("failed finding session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	logger.Trace().Msg("found session")

	logger = logger.With().Str(constants.KeyProcess, "updating cart").Logger()
	cart, err := fn(sess.Cart)
	if err != nil {
		err = fmt.Errorf("failed updating cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return sess.Cart, err
	}

	logger = logger.With().Str(constants.KeyProcess, "saving session").Logger()
	logger.Trace().Msg("saving session")
	sess.Cart = cart
	err = svc.sessions.SaveSession(c, sess)
	if err != nil {
		err = fmt.Errorf("failed saving session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	svc.metrics.CartMutations.WithLabelValues(operation).Inc()
	logger.Info().Int(constants.KeyCartItems, len(cart.Items)).Msg("saved cart")

	return cart, nil
}
