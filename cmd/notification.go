package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/metrics"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/order/event"
)

// notify logs and counts every order event received on the channel.
func notify(m *metrics.Metrics) event.Handler {
	return func(c context.Context, e event.Event) error {
		m.EventsConsumed.WithLabelValues(string(e.Type)).Inc()
		logger := zerolog.Ctx(c).With().Str(constants.KeyTag, "notification notify").Object(constants.KeyEvent, e).Logger()
		switch e.Type {
		case event.TypeOrderCreated:
			logger.Info().Msg("order placed")
		case event.TypeOrderStatusUpdated:
			logger.Info().Str("prevStatus", e.PrevStatus.String()).Msg("order status changed")
		default:
			logger.Warn().Msg("unknown event type")
		}
		return nil
	}
}

func RunNotificationService(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "RunNotificationService")
	defer span.End()

	cfg := config.Get(c, constants.AppNotificationService)

	logger := log.Get(filepath.Join("/var/log/", constants.AppNotificationService+".log"), cfg.Application).
		With().
		Str(constants.KeyAppName, constants.AppNotificationService).
		Str(constants.KeyTag, "main RunNotificationService").
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppNotificationService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		if err := inOtel.ShutdownOtel(context.WithoutCancel(c), shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(constants.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer cache.Close()
	logger.Info().Msg("initialized cache")

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	logger = logger.With().Str(constants.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})).Methods(http.MethodGet)
	server := http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext:  func(net.Listener) context.Context { return c },
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(constants.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("error=%w occured while server is running", err)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	logger = logger.With().Str(constants.KeyProcess, "listening events").Logger()
	logger.Info().Msg("listening events")
	err = event.Listen(c, cache, cfg.Event.Channel, notify(m))
	if err != nil {
		err = fmt.Errorf("failed listening events with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}

	logger = logger.With().Str(constants.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("shutdown server")
}
