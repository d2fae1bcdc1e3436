package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	dashboardResponse "github.com/Alturino/storefront/dashboard/response"
	"github.com/Alturino/storefront/internal/constants"
	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/order/request"
	orderResponse "github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
	productResponse "github.com/Alturino/storefront/product/response"
)

// Store is the postgres backed order repository and product catalog.
type Store struct {
	pool    *pgxpool.Pool
	queries *Queries
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, queries: New(pool)}
}

// CreateOrder inserts the order and its line items in one transaction.
func (s *Store) CreateOrder(c context.Context, param request.CreateOrder) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Store CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KeyTag, "Store CreateOrder").
		Str(constants.KeyOrderID, param.ID.String()).
		Logger()

	logger = logger.With().Str(constants.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			otel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	logger.Trace().Msg("initialized transaction")

	queries := s.queries.WithTx(tx)

	logger = logger.With().Str(constants.KeyProcess, "inserting order").Logger()
	logger.Trace().Msg("inserting order")
	_, err = queries.InsertOrder(c, InsertOrderParams{
		ID:            param.ID,
		UserID:        param.UserID,
		Name:          param.Shipping.Name,
		Phone:         param.Shipping.Phone,
		Address:       param.Shipping.Address,
		City:          param.Shipping.City,
		TotalAmount:   Numeric(param.TotalAmount),
		PaymentMethod: param.PaymentMethod,
		Status:        param.Status.String(),
		CreatedAt:     Timestamptz(param.CreatedAt),
	})
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger.Trace().Msg("inserted order")

	logger = logger.With().Str(constants.KeyProcess, "inserting order items").Logger()
	logger.Trace().Msg("inserting order items")
	items := make([]InsertOrderItemsParams, 0, len(param.Items))
	for i, item := range param.Items {
		items = append(items, InsertOrderItemsParams{
			ID:        item.ID,
			OrderID:   param.ID,
			Position:  int32(i),
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     Numeric(item.Price),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Image:     item.Image,
		})
	}
	inserted, err := queries.InsertOrderItems(c, items)
	if err != nil {
		err = fmt.Errorf("failed inserting order items with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger.Trace().Int64("inserted", inserted).Msg("inserted order items")

	logger = logger.With().Str(constants.KeyProcess, "finding inserted order").Logger()
	row, err := queries.FindOrderById(c, param.ID)
	if err != nil {
		err = fmt.Errorf("failed finding inserted order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	order, err := row.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping order with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	logger = logger.With().Str(constants.KeyProcess, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger.Info().Msg("created order")

	return order, nil
}

func (s *Store) FindOrderById(c context.Context, id uuid.UUID) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Store FindOrderById")
	defer span.End()

	row, err := s.queries.FindOrderById(c, id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("id=%s %w", id, inErrors.ErrOrderNotFound)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding order by id with error=%w", err)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	return row.Response()
}

func (s *Store) FindOrders(c context.Context) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Store FindOrders")
	defer span.End()

	rows, err := s.queries.FindOrders(c)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		otel.RecordError(err, span)
		return nil, err
	}
	return ordersResponse(rows)
}

func (s *Store) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Store FindOrdersByUserId")
	defer span.End()

	rows, err := s.queries.FindOrdersByUserId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders by userId=%s with error=%w", userId, err)
		otel.RecordError(err, span)
		return nil, err
	}
	return ordersResponse(rows)
}

func (s *Store) FindRecentOrders(c context.Context, limit int32) ([]orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Store FindRecentOrders")
	defer span.End()

	rows, err := s.queries.FindRecentOrders(c, limit)
	if err != nil {
		err = fmt.Errorf("failed finding recent orders with error=%w", err)
		otel.RecordError(err, span)
		return nil, err
	}
	return ordersResponse(rows)
}

// UpdateOrderStatus moves the order from one status to another. It fails with
// ErrInvalidTransition when the stored status is no longer from.
func (s *Store) UpdateOrderStatus(
	c context.Context,
	id uuid.UUID,
	from status.Status,
	to status.Status,
) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "Store UpdateOrderStatus")
	defer span.End()

	affected, err := s.queries.UpdateOrderStatus(c, UpdateOrderStatusParams{
		ID:         id,
		FromStatus: from.String(),
		ToStatus:   to.String(),
	})
	if err != nil {
		err = fmt.Errorf("failed updating order status with error=%w", err)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	if affected == 0 {
		current, err := s.FindOrderById(c, id)
		if err != nil {
			return orderResponse.Order{}, err
		}
		err = fmt.Errorf(
			"order status changed to=%s while updating from=%s %w",
			current.Status,
			from,
			inErrors.ErrInvalidTransition,
		)
		otel.RecordError(err, span)
		return orderResponse.Order{}, err
	}
	return s.FindOrderById(c, id)
}

func (s *Store) CountOrders(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "Store CountOrders")
	defer span.End()
	count, err := s.queries.CountOrders(c)
	if err != nil {
		err = fmt.Errorf("failed counting orders with error=%w", err)
		otel.RecordError(err, span)
	}
	return count, err
}

func (s *Store) SumOrderTotalAmount(c context.Context) (decimal.Decimal, error) {
	c, span := otel.Tracer.Start(c, "Store SumOrderTotalAmount")
	defer span.End()
	sum, err := s.queries.SumOrderTotalAmount(c)
	if err != nil {
		err = fmt.Errorf("failed summing order total amount with error=%w", err)
		otel.RecordError(err, span)
		return decimal.Zero, err
	}
	return Decimal(sum), nil
}

func (s *Store) SumOrderTotalAmountBetween(c context.Context, start time.Time, end time.Time) (decimal.Decimal, error) {
	c, span := otel.Tracer.Start(c, "Store SumOrderTotalAmountBetween")
	defer span.End()
	sum, err := s.queries.SumOrderTotalAmountBetween(c, start, end)
	if err != nil {
		err = fmt.Errorf("failed summing order total amount between start=%s end=%s with error=%w", start, end, err)
		otel.RecordError(err, span)
		return decimal.Zero, err
	}
	return Decimal(sum), nil
}

func (s *Store) FindTopProducts(c context.Context, limit int32) ([]dashboardResponse.TopProduct, error) {
	c, span := otel.Tracer.Start(c, "Store FindTopProducts")
	defer span.End()
	rows, err := s.queries.FindTopProducts(c, limit)
	if err != nil {
		err = fmt.Errorf("failed finding top products with error=%w", err)
		otel.RecordError(err, span)
		return nil, err
	}
	products := make([]dashboardResponse.TopProduct, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Response())
	}
	return products, nil
}

func (s *Store) FindProductById(c context.Context, id uuid.UUID) (productResponse.Product, error) {
	c, span := otel.Tracer.Start(c, "Store FindProductById")
	defer span.End()
	product, err := s.queries.FindProductById(c, id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("id=%s %w", id, inErrors.ErrProductNotFound)
		otel.RecordError(err, span)
		return productResponse.Product{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding product by id with error=%w", err)
		otel.RecordError(err, span)
		return productResponse.Product{}, err
	}
	return product.Response(), nil
}

func (s *Store) FindProducts(c context.Context) ([]productResponse.Product, error) {
	c, span := otel.Tracer.Start(c, "Store FindProducts")
	defer span.End()
	rows, err := s.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		otel.RecordError(err, span)
		return nil, err
	}
	return productsResponse(rows), nil
}

func (s *Store) FindProductsByCategory(c context.Context, category string) ([]productResponse.Product, error) {
	c, span := otel.Tracer.Start(c, "Store FindProductsByCategory")
	defer span.End()
	rows, err := s.queries.FindProductsByCategory(c, category)
	if err != nil {
		err = fmt.Errorf("failed finding products by category=%s with error=%w", category, err)
		otel.RecordError(err, span)
		return nil, err
	}
	return productsResponse(rows), nil
}

func (s *Store) CountProducts(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "Store CountProducts")
	defer span.End()
	count, err := s.queries.CountProducts(c)
	if err != nil {
		err = fmt.Errorf("failed counting products with error=%w", err)
		otel.RecordError(err, span)
	}
	return count, err
}

func (s *Store) CountUsers(c context.Context) (int64, error) {
	c, span := otel.Tracer.Start(c, "Store CountUsers")
	defer span.End()
	count, err := s.queries.CountUsers(c)
	if err != nil {
		err = fmt.Errorf("failed counting users with error=%w", err)
		otel.RecordError(err, span)
	}
	return count, err
}

func productsResponse(rows []Product) []productResponse.Product {
	products := make([]productResponse.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.Response())
	}
	return products
}
