package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/domain"
	"github.com/Alturino/storefront/cart/internal/otel"
	"github.com/Alturino/storefront/cart/request"
	"github.com/Alturino/storefront/cart/response"
	"github.com/Alturino/storefront/cart/service"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/errors"
	inHttp "github.com/Alturino/storefront/internal/http"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/session"
)

type CartController struct {
	service  *service.CartService
	validate *validator.Validate
}

func AttachCartController(mux *mux.Router, service *service.CartService) {
	controller := CartController{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	router := mux.PathPrefix("/cart").Subrouter()
	router.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	router.HandleFunc("/items", controller.AddItem).Methods(http.MethodPost)
	router.HandleFunc("/items/{lineId}", controller.RemoveItem).Methods(http.MethodDelete)
	router.HandleFunc("/items/{lineId}", controller.UpdateQuantity).Methods(http.MethodPatch)
}

func writeCart(w http.ResponseWriter, r *http.Request, message string, cart domain.Cart) {
	inHttp.WriteJsonResponse(r.Context(), w, map[string]string{}, map[string]interface{}{
		"status":     inHttp.StatusSuccess,
		"statusCode": http.StatusOK,
		"message":    message,
		"success":    true,
		"data":       map[string]interface{}{constants.KeyCart: response.FromDomain(cart)},
	})
}

func lineIdFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["lineId"]
	lineId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed validating lineId=%s with error=%w", raw, errors.ErrInvalidID)
	}
	return lineId, nil
}

func (ctrl *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	sessionID := session.IDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartController AddItem").
		Str(constants.KeySessionID, sessionID.String()).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	param := request.AddToCart{}
	err := json.NewDecoder(r.Body).Decode(&param)
	if err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w: %w", errors.ErrInvalidBody, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Trace().Object(constants.KeyRequest, param).Msg("decoded request body")

	logger = logger.With().Str(constants.KeyProcess, "validating request body").Logger()
	err = ctrl.validate.StructCtx(c, param)
	if err != nil {
		err = fmt.Errorf("failed validating request body with error=%w: %w", errors.ErrInvalidBody, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(constants.KeyProcess, "adding item to cart").Logger()
	cart, err := ctrl.service.AddItem(logger.WithContext(c), sessionID, param)
	if err != nil {
		err = fmt.Errorf("failed adding item to cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Int32("count", cart.Count()).Msg("added item to cart")

	writeCart(w, r.WithContext(c), "added item to cart", cart)
}

func (ctrl *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	sessionID := session.IDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartController GetCart").
		Str(constants.KeySessionID, sessionID.String()).
		Str(constants.KeyProcess, "finding cart").
		Logger()

	cart, err := ctrl.service.GetCart(logger.WithContext(c), sessionID)
	if err != nil {
		err = fmt.Errorf("failed finding cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	writeCart(w, r.WithContext(c), "found cart", cart)
}

func (ctrl *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	sessionID := session.IDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartController RemoveItem").
		Str(constants.KeySessionID, sessionID.String()).
		Logger()

	lineId, err := lineIdFromPath(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().
		Str(constants.KeyLineID, lineId.String()).
		Str(constants.KeyProcess, "removing item from cart").
		Logger()
	cart, err := ctrl.service.RemoveItem(logger.WithContext(c), sessionID, lineId)
	if err != nil {
		err = fmt.Errorf("failed removing item from cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Msg("removed item from cart")

	writeCart(w, r.WithContext(c), "removed item from cart", cart)
}

func (ctrl *CartController) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateQuantity")
	defer span.End()

	sessionID := session.IDFromContext(c)
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "CartController UpdateQuantity").
		Str(constants.KeySessionID, sessionID.String()).
		Logger()

	lineId, err := lineIdFromPath(r)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger = logger.With().Str(constants.KeyLineID, lineId.String()).Logger()

	logger = logger.With().Str(constants.KeyProcess, "decoding request body").Logger()
	param := request.UpdateQuantity{}
	err = json.NewDecoder(r.Body).Decode(&param)
	if err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w: %w", errors.ErrInvalidBody, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	direction, err := param.ParseDirection()
	if err != nil {
		err = fmt.Errorf("failed parsing direction=%s with error=%w", param.Direction, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}

	logger = logger.With().Str(constants.KeyProcess, "updating item quantity").Logger()
	cart, err := ctrl.service.UpdateQuantity(logger.WithContext(c), sessionID, lineId, direction)
	if err != nil {
		err = fmt.Errorf("failed updating item quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteErrorResponse(c, w, err)
		return
	}
	logger.Info().Str("direction", string(direction)).Msg("updated item quantity")

	writeCart(w, r.WithContext(c), "updated item quantity", cart)
}
