package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/repository/memory"
	"github.com/Alturino/storefront/order/request"
	"github.com/Alturino/storefront/order/status"
	productResponse "github.com/Alturino/storefront/product/response"
)

// Wednesday.
var now = time.Date(2025, time.March, 5, 15, 30, 0, 0, time.UTC)

func placeOrder(t *testing.T, store *memory.Store, createdAt time.Time, items ...request.OrderItem) {
	t.Helper()
	total := decimal.Zero
	for i := range items {
		items[i].ID = uuid.New()
		total = total.Add(items[i].Price.Mul(decimal.NewFromInt32(items[i].Quantity)))
	}
	_, err := store.CreateOrder(context.Background(), request.CreateOrder{
		ID:            uuid.New(),
		Shipping:      request.Shipping{Name: "Ann", Phone: "0800", Address: "Street 1", City: "Town"},
		Items:         items,
		TotalAmount:   total,
		PaymentMethod: "Cash on Delivery",
		Status:        status.Pending,
		CreatedAt:     createdAt,
	})
	require.NoError(t, err)
}

func newService(store Repository) *DashboardService {
	return NewDashboardService(
		store,
		metrics.New(prometheus.NewRegistry()),
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC),
	)
}

func TestDailyWindows(t *testing.T) {
	windows := DailyWindows(now, time.UTC, 7)
	require.Len(t, windows, 7)
	labels := []string{}
	for _, w := range windows {
		labels = append(labels, w.Label)
	}
	assert.Equal(t, []string{"Thu", "Fri", "Sat", "Sun", "Mon", "Tue", "Wed"}, labels)
	assert.Equal(t, time.Date(2025, time.February, 27, 0, 0, 0, 0, time.UTC), windows[0].Start)
	assert.Equal(t, time.Date(2025, time.March, 6, 0, 0, 0, 0, time.UTC), windows[6].End)
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
	}
}

func TestGroupByCategory(t *testing.T) {
	labels, data := GroupByCategory([]productResponse.Product{
		{ID: uuid.New(), Category: "shoes"},
		{ID: uuid.New(), Category: ""},
		{ID: uuid.New(), Category: "  "},
		{ID: uuid.New(), Category: " clothes"},
		{ID: uuid.New(), Category: "shoes"},
	})
	assert.Equal(t, []string{"Other", "clothes", "shoes"}, labels)
	assert.Equal(t, []int64{2, 1, 2}, data)
}

func TestDashboardEmpty(t *testing.T) {
	dashboard, err := newService(memory.NewStore()).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), dashboard.TotalOrders)
	assert.True(t, dashboard.SalesAmount.IsZero())
	assert.Empty(t, dashboard.TopProducts)
	assert.Empty(t, dashboard.RecentOrders)
	require.Len(t, dashboard.ChartLabels, 7)
	require.Len(t, dashboard.ChartData, 7)
	for _, point := range dashboard.ChartData {
		assert.True(t, point.IsZero())
	}
	assert.Empty(t, dashboard.CatLabels)
}

func TestDashboard(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()
	store := memory.NewStore(
		memory.WithProducts(
			productResponse.Product{ID: p1, Name: "Tee", Price: decimal.NewFromInt(10), Category: "clothes"},
			productResponse.Product{ID: p2, Name: "Cap", Price: decimal.NewFromInt(5)},
		),
		memory.WithUsers(uuid.New()),
	)
	placeOrder(t, store, now.Add(-2*time.Hour),
		request.OrderItem{ProductID: p1, Name: "Tee", Price: decimal.NewFromInt(10), Quantity: 3},
		request.OrderItem{ProductID: p2, Name: "Cap", Price: decimal.NewFromInt(5), Quantity: 1},
	)
	placeOrder(t, store, now.AddDate(0, 0, -1),
		request.OrderItem{ProductID: p1, Name: "Tee", Price: decimal.NewFromInt(10), Quantity: 3},
		request.OrderItem{ProductID: p2, Name: "Cap", Price: decimal.NewFromInt(5), Quantity: 1},
	)
	placeOrder(t, store, now.AddDate(0, 0, -30),
		request.OrderItem{ProductID: p2, Name: "Cap", Price: decimal.NewFromInt(5), Quantity: 0},
	)

	dashboard, err := newService(store).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), dashboard.TotalOrders)
	assert.Equal(t, int64(1), dashboard.TotalUsers)
	assert.Equal(t, int64(2), dashboard.TotalProducts)
	assert.True(t, decimal.NewFromInt(70).Equal(dashboard.SalesAmount), dashboard.SalesAmount.String())

	require.Len(t, dashboard.TopProducts, 2)
	assert.Equal(t, p1, dashboard.TopProducts[0].ProductID)
	assert.Equal(t, int64(6), dashboard.TopProducts[0].TotalSold)
	assert.True(t, decimal.NewFromInt(60).Equal(dashboard.TopProducts[0].Revenue))
	assert.Equal(t, p2, dashboard.TopProducts[1].ProductID)
	assert.Equal(t, int64(2), dashboard.TopProducts[1].TotalSold)

	require.Len(t, dashboard.RecentOrders, 3)
	assert.Equal(t, now.Add(-2*time.Hour), dashboard.RecentOrders[0].CreatedAt)

	require.Len(t, dashboard.ChartData, 7)
	assert.True(t, decimal.NewFromInt(35).Equal(dashboard.ChartData[6]), dashboard.ChartData[6].String())
	assert.True(t, decimal.NewFromInt(35).Equal(dashboard.ChartData[5]), dashboard.ChartData[5].String())
	assert.True(t, dashboard.ChartData[0].IsZero())

	assert.Equal(t, []string{"Other", "clothes"}, dashboard.CatLabels)
	assert.Equal(t, []int64{1, 1}, dashboard.CatData)
}

func TestDashboardCountsSalesAtEndOfDay(t *testing.T) {
	store := memory.NewStore()
	lastInstant := time.Date(2025, time.March, 4, 23, 59, 59, 999_500_000, time.UTC)
	placeOrder(t, store, lastInstant,
		request.OrderItem{ProductID: uuid.New(), Name: "Tee", Price: decimal.NewFromInt(10), Quantity: 1},
	)
	placeOrder(t, store, time.Date(2025, time.March, 5, 0, 0, 0, 0, time.UTC),
		request.OrderItem{ProductID: uuid.New(), Name: "Cap", Price: decimal.NewFromInt(5), Quantity: 1},
	)

	dashboard, err := newService(store).Dashboard(context.Background())
	require.NoError(t, err)

	chartSum := decimal.Zero
	for _, point := range dashboard.ChartData {
		chartSum = chartSum.Add(point)
	}
	assert.True(t, dashboard.SalesAmount.Equal(chartSum), chartSum.String())
	assert.True(t, decimal.NewFromInt(10).Equal(dashboard.ChartData[5]), dashboard.ChartData[5].String())
	assert.True(t, decimal.NewFromInt(5).Equal(dashboard.ChartData[6]), dashboard.ChartData[6].String())
}

type failingCatalog struct {
	*memory.Store
}

func (failingCatalog) FindProducts(context.Context) ([]productResponse.Product, error) {
	return nil, errors.New("connection refused")
}

func TestDashboardFailsWhenSectionFails(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewDashboardService(failingCatalog{memory.NewStore()}, m, WithClock(func() time.Time { return now }))

	_, err := svc.Dashboard(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(m.DashboardDuration))
}
