package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func scanProduct(row pgx.Row) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.Category,
		&i.Image,
		&i.Description,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		i, err := scanProduct(rows)
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

const findProductById = `-- name: FindProductById :one
SELECT id, name, price, category, image, description, created_at, updated_at
FROM products
WHERE id = $1`

func (q *Queries) FindProductById(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, findProductById, id))
}

const findProducts = `-- name: FindProducts :many
SELECT id, name, price, category, image, description, created_at, updated_at
FROM products
ORDER BY created_at DESC, id ASC`

func (q *Queries) FindProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, findProducts)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

const findProductsByCategory = `-- name: FindProductsByCategory :many
SELECT id, name, price, category, image, description, created_at, updated_at
FROM products
WHERE lower(category) = lower($1)
ORDER BY created_at DESC, id ASC`

func (q *Queries) FindProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := q.db.Query(ctx, findProductsByCategory, category)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

const countProducts = `-- name: CountProducts :one
SELECT COUNT(*) FROM products`

func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countProducts).Scan(&count)
	return count, err
}
