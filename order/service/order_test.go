package service

import (
	"context"
	"encoding/json"
	"fmt"
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

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/repository/memory"
	"github.com/Alturino/storefront/order/event"
	"github.com/Alturino/storefront/order/internal/cache"
	"github.com/Alturino/storefront/order/request"
	"github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
)

type orderFixture struct {
	mr      *miniredis.Miniredis
	store   *memory.Store
	metrics *metrics.Metrics
	svc     *OrderService
}

func newOrderFixture(t *testing.T) orderFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := memory.NewStore()
	m := metrics.New(prometheus.NewRegistry())
	return orderFixture{
		mr:      mr,
		store:   store,
		metrics: m,
		svc:     NewOrderService(store, client, event.NewRedisPublisher(client, "orders"), m, time.Hour),
	}
}

func (f orderFixture) createOrder(t *testing.T, userID uuid.NullUUID, createdAt time.Time) response.Order {
	t.Helper()
	order, err := f.store.CreateOrder(context.Background(), request.CreateOrder{
		ID:       uuid.New(),
		UserID:   userID,
		Shipping: shipping,
		Items: []request.OrderItem{
			{ID: uuid.New(), ProductID: uuid.New(), Name: "Tee", Price: decimal.NewFromInt(10), Quantity: 1},
		},
		TotalAmount:   decimal.NewFromInt(17),
		PaymentMethod: "Cash on Delivery",
		Status:        status.Pending,
		CreatedAt:     createdAt,
	})
	require.NoError(t, err)
	return order
}

func TestFindOrderByIdCaches(t *testing.T) {
	f := newOrderFixture(t)
	c := context.Background()
	created := f.createOrder(t, uuid.NullUUID{}, fixedNow)

	order, err := f.svc.FindOrderById(c, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, order.ID)

	cacheKey := fmt.Sprintf(cache.KeyOrder, created.ID.String())
	require.True(t, f.mr.Exists(cacheKey))
	jsonCache, err := f.mr.Get(cacheKey)
	require.NoError(t, err)
	cached := response.Order{}
	require.NoError(t, json.Unmarshal([]byte(jsonCache), &cached))
	assert.Equal(t, status.Pending, cached.Status)

	_, err = f.svc.FindOrderById(c, uuid.New())
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
}

func TestFindOrders(t *testing.T) {
	f := newOrderFixture(t)
	c := context.Background()
	userID := uuid.NullUUID{UUID: uuid.New(), Valid: true}
	older := f.createOrder(t, userID, fixedNow.Add(-time.Hour))
	newer := f.createOrder(t, uuid.NullUUID{}, fixedNow)
	newest := f.createOrder(t, userID, fixedNow.Add(time.Hour))

	orders, err := f.svc.FindOrders(c)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []uuid.UUID{newest.ID, newer.ID, older.ID}, []uuid.UUID{orders[0].ID, orders[1].ID, orders[2].ID})

	mine, err := f.svc.FindOrdersByUserId(c, userID.UUID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newest.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)
}

func TestUpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name        string
		steps       []string
		expected    status.Status
		expectedErr error
	}{
		{name: "pending to processing", steps: []string{"processing"}, expected: status.Processing},
		{name: "forward through every state", steps: []string{"Processing", "Shipped", "Delivered"}, expected: status.Delivered},
		{name: "cancel from shipped", steps: []string{"Shipped", "Cancelled"}, expected: status.Cancelled},
		{name: "same status is a no-op", steps: []string{"Pending"}, expected: status.Pending},
		{name: "delivered is terminal", steps: []string{"Delivered", "Pending"}, expectedErr: inErrors.ErrInvalidTransition},
		{name: "cancelled is terminal", steps: []string{"Cancelled", "Processing"}, expectedErr: inErrors.ErrInvalidTransition},
		{name: "backwards is rejected", steps: []string{"Shipped", "Processing"}, expectedErr: inErrors.ErrInvalidTransition},
		{name: "unknown status", steps: []string{"Lost"}, expectedErr: inErrors.ErrInvalidStatus},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newOrderFixture(t)
			c := context.Background()
			created := f.createOrder(t, uuid.NullUUID{}, fixedNow)

			var (
				order response.Order
				err   error
			)
			for _, step := range test.steps {
				order, err = f.svc.UpdateOrderStatus(c, created.ID, step)
				if err != nil {
					break
				}
			}
			if test.expectedErr != nil {
				assert.ErrorIs(t, err, test.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, order.Status)

			stored, err := f.store.FindOrderById(c, created.ID)
			require.NoError(t, err)
			assert.Equal(t, test.expected, stored.Status)
		})
	}
}

func TestUpdateOrderStatusInvalidatesCache(t *testing.T) {
	f := newOrderFixture(t)
	c := context.Background()
	created := f.createOrder(t, uuid.NullUUID{}, fixedNow)

	_, err := f.svc.FindOrderById(c, created.ID)
	require.NoError(t, err)
	cacheKey := fmt.Sprintf(cache.KeyOrder, created.ID.String())
	require.True(t, f.mr.Exists(cacheKey))

	_, err = f.svc.UpdateOrderStatus(c, created.ID, "Processing")
	require.NoError(t, err)
	assert.False(t, f.mr.Exists(cacheKey))

	order, err := f.svc.FindOrderById(c, created.ID)
	require.NoError(t, err)
	assert.Equal(t, status.Processing, order.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.StatusTransitions.WithLabelValues("Pending", "Processing")))
}

func TestUpdateOrderStatusNotFound(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.UpdateOrderStatus(context.Background(), uuid.New(), "Processing")
	assert.ErrorIs(t, err, inErrors.ErrOrderNotFound)
}
