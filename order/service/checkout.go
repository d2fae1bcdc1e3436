package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/domain"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/metrics"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/order/event"
	"github.com/Alturino/storefront/order/internal/otel"
	"github.com/Alturino/storefront/order/request"
	"github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
)

type SessionStore interface {
	FindSession(c context.Context, id uuid.UUID) (session.Session, error)
	SaveSession(c context.Context, sess session.Session) error
}

type OrderCreator interface {
	CreateOrder(c context.Context, param request.CreateOrder) (response.Order, error)
}

type Publisher interface {
	Publish(c context.Context, e event.Event) error
}

type CheckoutService struct {
	sessions      SessionStore
	orders        OrderCreator
	publisher     Publisher
	metrics       *metrics.Metrics
	validate      *validator.Validate
	surcharge     decimal.Decimal
	paymentMethod string
	now           func() time.Time
}

type CheckoutOption func(*CheckoutService)

func WithClock(now func() time.Time) CheckoutOption {
	return func(svc *CheckoutService) { svc.now = now }
}

func NewCheckoutService(
	sessions SessionStore,
	orders OrderCreator,
	publisher Publisher,
	m *metrics.Metrics,
	surcharge decimal.Decimal,
	paymentMethod string,
	opts ...CheckoutOption,
) *CheckoutService {
	svc := &CheckoutService{
		sessions:      sessions,
		orders:        orders,
		publisher:     publisher,
		metrics:       m,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		surcharge:     surcharge,
		paymentMethod: paymentMethod,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Total is the cart subtotal plus the flat surcharge.
func (svc *CheckoutService) Total(cart domain.Cart) decimal.Decimal {
	return cart.Subtotal().Add(svc.surcharge)
}

// PlaceOrder converts the session cart into a persisted Pending order and
// empties the cart. The order is persisted before the cart is cleared, so a
// failure to clear returns the created order together with an ErrClearCart error.
func (svc *CheckoutService) PlaceOrder(c context.Context, param request.PlaceOrder) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutService PlaceOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CheckoutService PlaceOrder").
		Str(constants.KeySessionID, param.SessionID.String()).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "validating shipping").Logger()
	logger.Trace().Msg("validating shipping")
	shipping := param.Shipping.Trim()
	err := svc.validate.StructCtx(c, shipping)
	if err != nil {
		err = fmt.Errorf("failed validating shipping with error=%w", errors.ErrValidation)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Object("shipping", shipping).Msg(err.Error())
		svc.metrics.CheckoutRejected.WithLabelValues("validation").Inc()
		return response.Order{}, err
	}
	logger.Trace().Msg("validated shipping")

	logger = logger.With().Str(constants.KeyProcess, "finding session").Logger()
	logger.Trace().Msg("finding session")
	sess, err := svc.sessions.FindSession(c, param.SessionID)
	if err != nil {
		err = fmt.Errorf("failed finding session with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if sess.Cart.IsEmpty() {
		err = fmt.Errorf("failed placing order with error=%w", errors.ErrEmptyCart)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		svc.metrics.CheckoutRejected.WithLabelValues("empty_cart").Inc()
		return response.Order{}, err
	}
	logger.Trace().Int(constants.KeyCartItems, len(sess.Cart.Items)).Msg("found session")

	userID := param.UserID
	if !userID.Valid {
		userID = sess.UserID
	}
	items := make([]request.OrderItem, 0, len(sess.Cart.Items))
	for _, line := range sess.Cart.Items {
		items = append(items, request.OrderItem{
			ID:        uuid.New(),
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.Price,
			Quantity:  line.Qty,
			Size:      line.Size,
			Color:     line.Color,
			Image:     line.Image,
		})
	}
	createOrder := request.CreateOrder{
		ID:            uuid.New(),
		UserID:        userID,
		Shipping:      shipping,
		Items:         items,
		TotalAmount:   svc.Total(sess.Cart),
		PaymentMethod: svc.paymentMethod,
		Status:        status.Pending,
		CreatedAt:     svc.now(),
	}

	logger = logger.With().
		Str(constants.KeyOrderID, createOrder.ID.String()).
		Str(constants.KeyProcess, "inserting order").
		Logger()
	logger.Trace().Str("totalAmount", createOrder.TotalAmount.String()).Msg("inserting order")
	order, err := svc.orders.CreateOrder(c, createOrder)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w: %w", errors.ErrPersistence, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		svc.metrics.CheckoutRejected.WithLabelValues("persistence").Inc()
		return response.Order{}, err
	}
	logger.Info().Msg("inserted order")
	svc.metrics.OrdersPlaced.Inc()
	svc.metrics.OrderRevenue.Add(order.TotalAmount.InexactFloat64())

	logger = logger.With().Str(constants.KeyProcess, "publishing order created").Logger()
	err = svc.publisher.Publish(c, event.OrderCreated(order, svc.now()))
	if err != nil {
		logger.Warn().Err(err).Msg("failed publishing order created event")
	}

	logger = logger.With().Str(constants.KeyProcess, "clearing cart").Logger()
	logger.Trace().Msg("clearing cart")
	sess.Cart = domain.Clear(sess.Cart)
	err = svc.sessions.SaveSession(c, sess)
	if err != nil {
		err = fmt.Errorf("failed clearing cart with error=%w: %w", errors.ErrClearCart, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return order, err
	}
	logger.Info().Msg("placed order")

	return order, nil
}
