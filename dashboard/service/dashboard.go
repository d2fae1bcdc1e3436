package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Alturino/storefront/dashboard/internal/otel"
	"github.com/Alturino/storefront/dashboard/response"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/metrics"
	inOtel "github.com/Alturino/storefront/internal/otel"
	orderResponse "github.com/Alturino/storefront/order/response"
	productResponse "github.com/Alturino/storefront/product/response"
)

const (
	chartDays             = 7
	categoryOther         = "Other"
	defaultTopProducts    = 5
	defaultRecentOrders   = 5
	defaultDashboardLimit = 10 * time.Second
)

type Repository interface {
	CountOrders(c context.Context) (int64, error)
	CountUsers(c context.Context) (int64, error)
	CountProducts(c context.Context) (int64, error)
	SumOrderTotalAmount(c context.Context) (decimal.Decimal, error)
	SumOrderTotalAmountBetween(c context.Context, start time.Time, end time.Time) (decimal.Decimal, error)
	FindTopProducts(c context.Context, limit int32) ([]response.TopProduct, error)
	FindRecentOrders(c context.Context, limit int32) ([]orderResponse.Order, error)
	FindProducts(c context.Context) ([]productResponse.Product, error)
}

type DashboardService struct {
	repository   Repository
	metrics      *metrics.Metrics
	location     *time.Location
	timeout      time.Duration
	topProducts  int32
	recentOrders int32
	now          func() time.Time
}

type Option func(*DashboardService)

func WithClock(now func() time.Time) Option {
	return func(svc *DashboardService) { svc.now = now }
}

func WithLocation(location *time.Location) Option {
	return func(svc *DashboardService) { svc.location = location }
}

func WithTimeout(timeout time.Duration) Option {
	return func(svc *DashboardService) { svc.timeout = timeout }
}

func WithLimits(topProducts int, recentOrders int) Option {
	return func(svc *DashboardService) {
		svc.topProducts = int32(topProducts)
		svc.recentOrders = int32(recentOrders)
	}
}

func NewDashboardService(repository Repository, m *metrics.Metrics, opts ...Option) *DashboardService {
	svc := &DashboardService{
		repository:   repository,
		metrics:      m,
		location:     time.Local,
		timeout:      defaultDashboardLimit,
		topProducts:  defaultTopProducts,
		recentOrders: defaultRecentOrders,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Window is one local calendar day: Start is inclusive and End, the next
// local midnight, is exclusive.
type Window struct {
	Label string
	Start time.Time
	End   time.Time
}

// DailyWindows returns the days local calendar days ending on the day of now,
// oldest first.
func DailyWindows(now time.Time, location *time.Location, days int) []Window {
	local := now.In(location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
	windows := make([]Window, 0, days)
	for i := days - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		windows = append(windows, Window{
			Label: start.Format("Mon"),
			Start: start,
			End:   start.AddDate(0, 0, 1),
		})
	}
	return windows
}

// GroupByCategory counts products per category. Products without a category
// count as "Other". Labels are sorted ascending.
func GroupByCategory(products []productResponse.Product) ([]string, []int64) {
	counts := map[string]int64{}
	for _, p := range products {
		category := strings.TrimSpace(p.Category)
		if category == "" {
			category = categoryOther
		}
		counts[category]++
	}
	labels := make([]string, 0, len(counts))
	for category := range counts {
		labels = append(labels, category)
	}
	slices.Sort(labels)
	data := make([]int64, 0, len(labels))
	for _, label := range labels {
		data = append(data, counts[label])
	}
	return labels, data
}

// Dashboard computes a fresh snapshot. Every section runs concurrently and the
// first failing section fails the whole request.
func (svc *DashboardService) Dashboard(c context.Context) (response.Dashboard, error) {
	c, span := otel.Tracer.Start(c, "DashboardService Dashboard")
	defer span.End()

	start := time.Now()
	defer func() { svc.metrics.DashboardDuration.Observe(time.Since(start).Seconds()) }()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "DashboardService Dashboard").
		Str(constants.KeyProcess, "computing dashboard").
		Logger()

	c, cancel := context.WithTimeout(c, svc.timeout)
	defer cancel()

	windows := DailyWindows(svc.now(), svc.location, chartDays)
	dashboard := response.Dashboard{
		ChartLabels: make([]string, len(windows)),
		ChartData:   make([]decimal.Decimal, len(windows)),
	}

	logger.Trace().Msg("computing dashboard")
	g, gc := errgroup.WithContext(c)
	g.Go(func() (err error) {
		dashboard.TotalOrders, err = svc.repository.CountOrders(gc)
		return wrap("counting orders", err)
	})
	g.Go(func() (err error) {
		dashboard.TotalUsers, err = svc.repository.CountUsers(gc)
		return wrap("counting users", err)
	})
	g.Go(func() (err error) {
		dashboard.TotalProducts, err = svc.repository.CountProducts(gc)
		return wrap("counting products", err)
	})
	g.Go(func() (err error) {
		dashboard.SalesAmount, err = svc.repository.SumOrderTotalAmount(gc)
		return wrap("summing sales", err)
	})
	g.Go(func() (err error) {
		dashboard.TopProducts, err = svc.repository.FindTopProducts(gc, svc.topProducts)
		return wrap("finding top products", err)
	})
	g.Go(func() (err error) {
		dashboard.RecentOrders, err = svc.repository.FindRecentOrders(gc, svc.recentOrders)
		return wrap("finding recent orders", err)
	})
	for i, window := range windows {
		dashboard.ChartLabels[i] = window.Label
		g.Go(func() (err error) {
			dashboard.ChartData[i], err = svc.repository.SumOrderTotalAmountBetween(gc, window.Start, window.End)
			return wrap("summing daily sales", err)
		})
	}
	g.Go(func() error {
		products, err := svc.repository.FindProducts(gc)
		if err != nil {
			return wrap("finding products", err)
		}
		dashboard.CatLabels, dashboard.CatData = GroupByCategory(products)
		return nil
	})

	err := g.Wait()
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Dashboard{}, err
	}
	logger.Info().
		Int64("totalOrders", dashboard.TotalOrders).
		Str("salesAmount", dashboard.SalesAmount.String()).
		Msg("computed dashboard")

	return dashboard, nil
}

func wrap(step string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed %s with error=%w", step, err)
}
