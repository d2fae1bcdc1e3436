package controller

import (
	"encoding/json"
	goErrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/internal/token"
	"github.com/Alturino/storefront/order/internal/otel"
	"github.com/Alturino/storefront/order/request"
	"github.com/Alturino/storefront/order/service"
)

type OrderController struct {
	checkout *service.CheckoutService
	orders   *service.OrderService
	validate *validator.Validate
}

func AttachOrderController(
	mux *mux.Router,
	checkout *service.CheckoutService,
	orders *service.OrderService,
) {
	controller := OrderController{
		checkout: checkout,
		orders:   orders,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	router := mux.PathPrefix("/orders").Subrouter()
	router.HandleFunc("/checkout", controller.PlaceOrder).Methods(http.MethodPost)
	router.Handle("", middleware.RequireUser(http.HandlerFunc(controller.FindMyOrders))).Methods(http.MethodGet)

	admin := mux.PathPrefix("/admin/orders").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	admin.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
	admin.HandleFunc("/{orderId}/status", controller.UpdateOrderStatus).Methods(http.MethodPost)
}

func writeFailed(w http.ResponseWriter, r *http.Request, err error) {
	inHttp.WriteErrorResponse(r.Context(), w, err)
}

func (ctrl *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController PlaceOrder")
	defer span.End()

	sessionID := session.IDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderController PlaceOrder").
		Str(constants.KeySessionID, sessionID.String()).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	shipping := request.Shipping{}
	err := json.NewDecoder(r.Body).Decode(&shipping)
	if err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w: %w", errors.ErrInvalidBody, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	logger.Trace().Object("shipping", shipping).Msg("decoded request body")

	param := request.PlaceOrder{SessionID: sessionID, Shipping: shipping}
	if claims := token.ClaimsFromContext(c); claims != nil {
		userId, err := claims.UserID()
		if err == nil {
			param.UserID = uuid.NullUUID{UUID: userId, Valid: true}
			logger = logger.With().Str(constants.KeyUserID, userId.String()).Logger()
		}
	}

	logger = logger.With().Str(constants.KeyProcess, "placing order").Logger()
	logger.Trace().Msg("placing order")
	order, err := ctrl.checkout.PlaceOrder(logger.WithContext(c), param)
	if err != nil && !(goErrors.Is(err, errors.ErrClearCart) && order.ID != uuid.Nil) {
		err = fmt.Errorf("failed placing order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	if err != nil {
		logger.Warn().Err(err).Str(constants.KeyOrderID, order.ID.String()).Msg("placed order but cart was not cleared")
	}
	logger.Info().Str(constants.KeyOrderID, order.ID.String()).Msg("placed order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusCreated,
		"message":    "placed order",
		"data":       map[string]interface{}{constants.KeyOrder: order},
	})
}

func (ctrl *OrderController) FindMyOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindMyOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderController FindMyOrders").
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "getting userId").Logger()
	userId, err := token.UserIdFromContext(c)
	if err != nil {
		err = fmt.Errorf("failed getting userId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}

	logger = logger.With().
		Str(constants.KeyUserID, userId.String()).
		Str(constants.KeyProcess, "finding orders").
		Logger()
	orders, err := ctrl.orders.FindOrdersByUserId(logger.WithContext(c), userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	logger.Info().Int("count", len(orders)).Msg("found orders")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "found orders",
		"data":       map[string]interface{}{constants.KeyOrders: orders},
	})
}

func (ctrl *OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderController FindOrders").
		Str(constants.KeyProcess, "finding orders").
		Logger()

	orders, err := ctrl.orders.FindOrders(logger.WithContext(c))
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	logger.Info().Int("count", len(orders)).Msg("found orders")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "found orders",
		"data":       map[string]interface{}{constants.KeyOrders: orders},
	})
}

func orderIdFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["orderId"]
	orderId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed validating orderId=%s with error=%w", raw, errors.ErrInvalidID)
	}
	return orderId, nil
}

func (ctrl *OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderController FindOrderById").
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "validating orderId").Logger()
	orderId, err := orderIdFromPath(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}

	logger = logger.With().
		Str(constants.KeyOrderID, orderId.String()).
		Str(constants.KeyProcess, "finding order").
		Logger()
	order, err := ctrl.orders.FindOrderById(logger.WithContext(c), orderId)
	if err != nil {
		err = fmt.Errorf("failed finding order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	logger.Info().Msg("found order")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "found order",
		"data":       map[string]interface{}{constants.KeyOrder: order},
	})
}

func (ctrl *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "OrderController UpdateOrderStatus").
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "validating orderId").Logger()
	orderId, err := orderIdFromPath(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	logger = logger.With().Str(constants.KeyOrderID, orderId.String()).Logger()

	logger = logger.With().Str(constants.KeyProcess, "decoding request body").Logger()
	param := request.UpdateStatus{}
	err = json.NewDecoder(r.Body).Decode(&param)
	if err == nil {
		err = ctrl.validate.StructCtx(c, param)
	}
	if err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w: %w", errors.ErrInvalidStatus, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}

	logger = logger.With().
		Str(constants.KeyStatus, param.Status).
		Str(constants.KeyProcess, "updating order status").
		Logger()
	order, err := ctrl.orders.UpdateOrderStatus(logger.WithContext(c), orderId, param.Status)
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeFailed(w, r.WithContext(c), err)
		return
	}
	logger.Info().Msg("updated order status")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    "updated order status",
		"data":       map[string]interface{}{constants.KeyOrder: order},
	})
}
