package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Order struct {
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
}

type OrderItem struct {
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

type Product struct {
	ID          uuid.UUID
	Name        string
	Price       pgtype.Numeric
	Category    string
	Image       string
	Description string
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}
