package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `
    o.id, o.user_id, o.name, o.phone, o.address, o.city, o.total_amount,
    o.payment_method, o.status, o.created_at, o.updated_at,
    COALESCE(
        json_agg(
            json_build_object(
                'id', oi.id,
                'orderId', oi.order_id,
                'productId', oi.product_id,
                'name', oi.name,
                'price', oi.price,
                'qty', oi.quantity,
                'size', oi.size,
                'color', oi.color,
                'image', oi.image
            ) ORDER BY oi.position
        ) FILTER (WHERE oi.id IS NOT NULL),
        '[]'
    )::json AS order_items`

type OrderWithItemsRow struct {
	ID            uuid.UUID
	UserID        uuid.NullUUID
	Name          string
	Phone         string
	Address       string
	City          string
	TotalAmount   pgtype.Numeric
	PaymentMethod string
	Status        string
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
	OrderItems    []byte
}

func scanOrderWithItems(row pgx.Row) (OrderWithItemsRow, error) {
	var i OrderWithItemsRow
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Phone,
		&i.Address,
		&i.City,
		&i.TotalAmount,
		&i.PaymentMethod,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
		&i.OrderItems,
	)
	return i, err
}

func collectOrdersWithItems(rows pgx.Rows) ([]OrderWithItemsRow, error) {
	defer rows.Close()
	items := []OrderWithItemsRow{}
	for rows.Next() {
		i, err := scanOrderWithItems(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertOrder = `-- name: InsertOrder :one
INSERT INTO orders (
    id, user_id, name, phone, address, city, total_amount, payment_method, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
RETURNING id, user_id, name, phone, address, city, total_amount, payment_method, status, created_at, updated_at`

type InsertOrderParams struct {
	ID            uuid.UUID
	UserID        uuid.NullUUID
	Name          string
	Phone         string
	Address       string
	City          string
	TotalAmount   pgtype.Numeric
	PaymentMethod string
	Status        string
	CreatedAt     pgtype.Timestamptz
}

func (q *Queries) InsertOrder(ctx context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, insertOrder,
		arg.ID,
		arg.UserID,
		arg.Name,
		arg.Phone,
		arg.Address,
		arg.City,
		arg.TotalAmount,
		arg.PaymentMethod,
		arg.Status,
		arg.CreatedAt,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Phone,
		&i.Address,
		&i.City,
		&i.TotalAmount,
		&i.PaymentMethod,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type InsertOrderItemsParams struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	Position  int32
	ProductID uuid.UUID
	Name      string
	Price     pgtype.Numeric
	Quantity  int32
	Size      string
	Color     string
	Image     string
}

// InsertOrderItems bulk loads the line items with the copy protocol.
func (q *Queries) InsertOrderItems(ctx context.Context, arg []InsertOrderItemsParams) (int64, error) {
	return q.db.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"id", "order_id", "position", "product_id", "name", "price", "quantity", "size", "color", "image"},
		pgx.CopyFromSlice(len(arg), func(i int) ([]interface{}, error) {
			return []interface{}{
				arg[i].ID,
				arg[i].OrderID,
				arg[i].Position,
				arg[i].ProductID,
				arg[i].Name,
				arg[i].Price,
				arg[i].Quantity,
				arg[i].Size,
				arg[i].Color,
				arg[i].Image,
			}, nil
		}),
	)
}

const findOrderById = `-- name: FindOrderById :one
SELECT` + orderColumns + `
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
WHERE o.id = $1
GROUP BY o.id`

func (q *Queries) FindOrderById(ctx context.Context, id uuid.UUID) (OrderWithItemsRow, error) {
	return scanOrderWithItems(q.db.QueryRow(ctx, findOrderById, id))
}

const findOrders = `-- name: FindOrders :many
SELECT` + orderColumns + `
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
GROUP BY o.id
ORDER BY o.created_at DESC, o.id ASC`

func (q *Queries) FindOrders(ctx context.Context) ([]OrderWithItemsRow, error) {
	rows, err := q.db.Query(ctx, findOrders)
	if err != nil {
		return nil, err
	}
	return collectOrdersWithItems(rows)
}

const findOrdersByUserId = `-- name: FindOrdersByUserId :many
SELECT` + orderColumns + `
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
WHERE o.user_id = $1
GROUP BY o.id
ORDER BY o.created_at DESC, o.id ASC`

func (q *Queries) FindOrdersByUserId(ctx context.Context, userID uuid.UUID) ([]OrderWithItemsRow, error) {
	rows, err := q.db.Query(ctx, findOrdersByUserId, userID)
	if err != nil {
		return nil, err
	}
	return collectOrdersWithItems(rows)
}

const findRecentOrders = `-- name: FindRecentOrders :many
SELECT` + orderColumns + `
FROM orders o
LEFT JOIN order_items oi ON oi.order_id = o.id
GROUP BY o.id
ORDER BY o.created_at DESC, o.id ASC
LIMIT $1`

func (q *Queries) FindRecentOrders(ctx context.Context, limit int32) ([]OrderWithItemsRow, error) {
	rows, err := q.db.Query(ctx, findRecentOrders, limit)
	if err != nil {
		return nil, err
	}
	return collectOrdersWithItems(rows)
}

const updateOrderStatus = `-- name: UpdateOrderStatus :execrows
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2`

type UpdateOrderStatusParams struct {
	ID         uuid.UUID
	FromStatus string
	ToStatus   string
}

// UpdateOrderStatus only updates when the stored status still equals FromStatus.
func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateOrderStatus, arg.ID, arg.FromStatus, arg.ToStatus)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countOrders = `-- name: CountOrders :one
SELECT COUNT(*) FROM orders`

func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countOrders).Scan(&count)
	return count, err
}

const sumOrderTotalAmount = `-- name: SumOrderTotalAmount :one
SELECT COALESCE(SUM(total_amount), 0)::numeric FROM orders`

func (q *Queries) SumOrderTotalAmount(ctx context.Context) (pgtype.Numeric, error) {
	var sum pgtype.Numeric
	err := q.db.QueryRow(ctx, sumOrderTotalAmount).Scan(&sum)
	return sum, err
}

const sumOrderTotalAmountBetween = `-- name: SumOrderTotalAmountBetween :one
SELECT COALESCE(SUM(total_amount), 0)::numeric
FROM orders
WHERE created_at >= $1 AND created_at < $2`

// SumOrderTotalAmountBetween sums orders created inside [start, end).
func (q *Queries) SumOrderTotalAmountBetween(ctx context.Context, start time.Time, end time.Time) (pgtype.Numeric, error) {
	var sum pgtype.Numeric
	err := q.db.QueryRow(ctx, sumOrderTotalAmountBetween, start, end).Scan(&sum)
	return sum, err
}

const findTopProducts = `-- name: FindTopProducts :many
SELECT
    oi.product_id,
    (array_agg(oi.name ORDER BY o.created_at ASC, oi.position ASC))[1]::text AS name,
    SUM(oi.quantity)::bigint AS total_sold,
    SUM(oi.price * oi.quantity)::numeric AS revenue
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
GROUP BY oi.product_id
ORDER BY total_sold DESC, oi.product_id ASC
LIMIT $1`

type FindTopProductsRow struct {
	ProductID uuid.UUID
	Name      string
	TotalSold int64
	Revenue   pgtype.Numeric
}

func (q *Queries) FindTopProducts(ctx context.Context, limit int32) ([]FindTopProductsRow, error) {
	rows, err := q.db.Query(ctx, findTopProducts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindTopProductsRow{}
	for rows.Next() {
		var i FindTopProductsRow
		if err := rows.Scan(&i.ProductID, &i.Name, &i.TotalSold, &i.Revenue); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
