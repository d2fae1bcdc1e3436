package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	cartController "github.com/Alturino/storefront/cart/controller"
	cartService "github.com/Alturino/storefront/cart/service"
	dashboardController "github.com/Alturino/storefront/dashboard/controller"
	dashboardService "github.com/Alturino/storefront/dashboard/service"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/internal/repository/memory"
	"github.com/Alturino/storefront/internal/session"
	orderController "github.com/Alturino/storefront/order/controller"
	"github.com/Alturino/storefront/order/event"
	orderService "github.com/Alturino/storefront/order/service"
	productController "github.com/Alturino/storefront/product/controller"
	productService "github.com/Alturino/storefront/product/service"
)

type store interface {
	productService.Repository
	orderService.OrderCreator
	orderService.Repository
	dashboardService.Repository
}

func RunStorefront(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "RunStorefront")
	defer span.End()

	cfg := config.Get(c, constants.AppStorefront)

	logger := log.Get(filepath.Join("/var/log/", constants.AppStorefront+".log"), cfg.Application).
		With().
		Str(constants.KeyAppName, constants.AppStorefront).
		Str(constants.KeyTag, "main RunStorefront").
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppStorefront, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		err := inOtel.ShutdownOtel(context.WithoutCancel(c), shutdownFuncs)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(constants.KeyProcess, "resolving timezone").Logger()
	location, err := cfg.Application.Location()
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}

	logger = logger.With().
		Str(constants.KeyProcess, "initializing database").
		Str("driver", cfg.Database.Driver).
		Logger()
	logger.Info().Msg("initializing database")
	var db store
	switch cfg.Database.Driver {
	case "memory":
		db = memory.NewStore(memory.WithProducts(seedProducts...))
	default:
		pool := infra.NewDatabaseClient(c, cfg.Database)
		defer func() {
			logger.Info().Msg("closing database")
			pool.Close()
			logger.Info().Msg("closed database")
		}()
		db = repository.NewStore(pool)
	}
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(constants.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("closing cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("closed cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(constants.KeyProcess, "initializing metrics").Logger()
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	logger.Info().Msg("initialized metrics")

	logger = logger.With().Str(constants.KeyProcess, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	sessions := session.NewRedisStore(cache, cfg.Session.TTL)
	publisher := event.NewRedisPublisher(cache, cfg.Event.Channel)
	products := productService.NewProductService(db, cache, cfg.Cache.TTL)
	carts := cartService.NewCartService(sessions, products, m)
	checkout := orderService.NewCheckoutService(
		sessions,
		db,
		publisher,
		m,
		decimal.NewFromFloat(cfg.Checkout.Surcharge),
		cfg.Checkout.PaymentMethod,
	)
	orders := orderService.NewOrderService(db, cache, publisher, m, cfg.Cache.TTL)
	dashboard := dashboardService.NewDashboardService(
		db,
		m,
		dashboardService.WithLocation(location),
		dashboardService.WithTimeout(cfg.Dashboard.Timeout),
		dashboardService.WithLimits(cfg.Dashboard.TopProducts, cfg.Dashboard.RecentOrders),
	)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(constants.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Handle(
		"/metrics",
		otelhttp.NewHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}), "metrics"),
	).Methods(http.MethodGet)

	api := router.PathPrefix("/").Subrouter()
	api.Use(
		otelmux.Middleware(constants.AppStorefront),
		middleware.Logging,
		middleware.RecoverPanic,
		middleware.Session(cfg.Session.CookieName, cfg.Session.TTL),
		middleware.Authenticate(cfg.Application.SecretKey),
	)
	productController.AttachProductController(api, products)
	cartController.AttachCartController(api, carts)
	orderController.AttachOrderController(api, checkout, orders)
	dashboardController.AttachDashboardController(api, dashboard)

	handler := cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Cors.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})(router)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(constants.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context {
			lg := logger.With().
				Reset().
				Timestamp().
				Caller().
				Stack().
				Str(constants.KeyAppName, constants.AppStorefront).
				Logger()
			return lg.WithContext(c)
		},
		Handler:      handler,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(constants.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(constants.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 15*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	if err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("shutdown server")
}
