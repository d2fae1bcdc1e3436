package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/domain"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/repository/memory"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/order/event"
	"github.com/Alturino/storefront/order/request"
	"github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
)

var (
	shipping = request.Shipping{Name: "Ann", Phone: "0800", Address: "Street 1", City: "Town"}
	fixedNow = time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
)

type failingCreator struct{}

func (failingCreator) CreateOrder(context.Context, request.CreateOrder) (response.Order, error) {
	return response.Order{}, errors.New("connection refused")
}

type failingSaveStore struct {
	*session.RedisStore
	fail bool
}

func (s *failingSaveStore) SaveSession(c context.Context, sess session.Session) error {
	if s.fail {
		return errors.New("connection refused")
	}
	return s.RedisStore.SaveSession(c, sess)
}

type checkoutFixture struct {
	client   *redis.Client
	sessions *failingSaveStore
	store    *memory.Store
	metrics  *metrics.Metrics
}

func newCheckoutFixture(t *testing.T) checkoutFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return checkoutFixture{
		client:   client,
		sessions: &failingSaveStore{RedisStore: session.NewRedisStore(client, time.Hour)},
		store:    memory.NewStore(),
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
}

func (f checkoutFixture) service(orders OrderCreator) *CheckoutService {
	return NewCheckoutService(
		f.sessions,
		orders,
		event.NewRedisPublisher(f.client, "orders"),
		f.metrics,
		decimal.NewFromInt(7),
		"Cash on Delivery",
		WithClock(func() time.Time { return fixedNow }),
	)
}

func (f checkoutFixture) seedCart(t *testing.T, items ...domain.LineItem) uuid.UUID {
	t.Helper()
	cart := domain.Cart{Items: []domain.LineItem{}}
	for _, item := range items {
		cart = domain.AddItem(cart, item)
	}
	id := uuid.New()
	require.NoError(t, f.sessions.RedisStore.SaveSession(context.Background(), session.Session{ID: id, Cart: cart}))
	return id
}

func twoLines() []domain.LineItem {
	return []domain.LineItem{
		{ProductID: uuid.New(), Name: "Tee", Price: decimal.NewFromInt(10), Qty: 2},
		{ProductID: uuid.New(), Name: "Cap", Price: decimal.NewFromInt(5), Qty: 1},
	}
}

func TestPlaceOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	c := context.Background()
	sessionID := f.seedCart(t, twoLines()...)

	order, err := f.service(f.store).PlaceOrder(c, request.PlaceOrder{SessionID: sessionID, Shipping: shipping})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(32).Equal(order.TotalAmount), order.TotalAmount.String())
	assert.Equal(t, status.Pending, order.Status)
	assert.Equal(t, "Cash on Delivery", order.PaymentMethod)
	assert.Equal(t, fixedNow, order.CreatedAt)
	assert.False(t, order.UserID.Valid)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Tee", order.Items[0].Name)
	assert.Equal(t, int32(2), order.Items[0].Quantity)

	stored, err := f.store.FindOrderById(c, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)

	sess, err := f.sessions.FindSession(c, sessionID)
	require.NoError(t, err)
	assert.True(t, sess.Cart.IsEmpty())
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.OrdersPlaced))
	assert.Equal(t, float64(32), testutil.ToFloat64(f.metrics.OrderRevenue))
}

func TestPlaceOrderUserID(t *testing.T) {
	f := newCheckoutFixture(t)
	c := context.Background()
	userID := uuid.NullUUID{UUID: uuid.New(), Valid: true}

	sessionID := uuid.New()
	cart := domain.AddItem(domain.Cart{}, twoLines()[0])
	require.NoError(t, f.sessions.SaveSession(c, session.Session{ID: sessionID, UserID: userID, Cart: cart}))

	order, err := f.service(f.store).PlaceOrder(c, request.PlaceOrder{SessionID: sessionID, Shipping: shipping})
	require.NoError(t, err)
	assert.Equal(t, userID, order.UserID)

	fromToken := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	require.NoError(t, f.sessions.SaveSession(c, session.Session{ID: sessionID, UserID: userID, Cart: cart}))
	order, err = f.service(f.store).PlaceOrder(c, request.PlaceOrder{SessionID: sessionID, UserID: fromToken, Shipping: shipping})
	require.NoError(t, err)
	assert.Equal(t, fromToken, order.UserID)
}

func TestPlaceOrderRejected(t *testing.T) {
	tests := []struct {
		name        string
		shipping    request.Shipping
		lines       []domain.LineItem
		expectedErr error
		reason      string
	}{
		{
			name:        "empty cart",
			shipping:    shipping,
			expectedErr: inErrors.ErrEmptyCart,
			reason:      "empty_cart",
		},
		{
			name:        "missing city",
			shipping:    request.Shipping{Name: "Ann", Phone: "0800", Address: "Street 1"},
			lines:       twoLines(),
			expectedErr: inErrors.ErrValidation,
			reason:      "validation",
		},
		{
			name:        "blank name",
			shipping:    request.Shipping{Name: "   ", Phone: "0800", Address: "Street 1", City: "Town"},
			lines:       twoLines(),
			expectedErr: inErrors.ErrValidation,
			reason:      "validation",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newCheckoutFixture(t)
			c := context.Background()
			sessionID := f.seedCart(t, test.lines...)

			_, err := f.service(f.store).PlaceOrder(c, request.PlaceOrder{SessionID: sessionID, Shipping: test.shipping})
			assert.ErrorIs(t, err, test.expectedErr)

			count, err := f.store.CountOrders(c)
			require.NoError(t, err)
			assert.Equal(t, int64(0), count)

			sess, err := f.sessions.FindSession(c, sessionID)
			require.NoError(t, err)
			assert.Len(t, sess.Cart.Items, len(test.lines))
			assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.CheckoutRejected.WithLabelValues(test.reason)))
		})
	}
}

func TestPlaceOrderPersistenceFailureKeepsCart(t *testing.T) {
	f := newCheckoutFixture(t)
	c := context.Background()
	sessionID := f.seedCart(t, twoLines()...)

	_, err := f.service(failingCreator{}).PlaceOrder(c, request.PlaceOrder{SessionID: sessionID, Shipping: shipping})
	assert.ErrorIs(t, err, inErrors.ErrPersistence)

	sess, err := f.sessions.FindSession(c, sessionID)
	require.NoError(t, err)
	assert.Len(t, sess.Cart.Items, 2)
	assert.Equal(t, float64(0), testutil.ToFloat64(f.metrics.OrdersPlaced))
}

func TestPlaceOrderClearCartFailureReturnsOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	c := context.Background()
	sessionID := f.seedCart(t, twoLines()...)
	f.sessions.fail = true

	order, err := f.service(f.store).PlaceOrder(c, request.PlaceOrder{SessionID: sessionID, Shipping: shipping})
	assert.ErrorIs(t, err, inErrors.ErrClearCart)
	assert.NotEqual(t, uuid.Nil, order.ID)

	count, err := f.store.CountOrders(c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
