package controller

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/dashboard/internal/otel"
	"github.com/Alturino/storefront/dashboard/service"
	"github.com/Alturino/storefront/internal/constants"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
)

type DashboardController struct {
	service *service.DashboardService
}

func AttachDashboardController(mux *mux.Router, service *service.DashboardService) {
	controller := DashboardController{service: service}

	router := mux.PathPrefix("/admin/dashboard").Subrouter()
	router.Use(middleware.RequireAdmin)
	router.HandleFunc("", controller.Dashboard).Methods(http.MethodGet)
}

func (ctrl *DashboardController) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "DashboardController Dashboard")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "DashboardController Dashboard").
		Str(constants.KeyProcess, "computing dashboard").
		Logger()

	dashboard, err := ctrl.service.Dashboard(logger.WithContext(c))
	if err != nil {
		err = fmt.Errorf("failed computing dashboard with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("computed dashboard")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "computed dashboard",
		"data":       dashboard,
	})
}
