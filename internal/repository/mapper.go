package repository

import (
	"encoding/json"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	dashboardResponse "github.com/Alturino/storefront/dashboard/response"
	orderResponse "github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
	productResponse "github.com/Alturino/storefront/product/response"
)

func Numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              new(big.Int).Set(d.Coefficient()),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Valid:            true,
	}
}

func Decimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func Timestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, InfinityModifier: pgtype.Finite, Valid: true}
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       Decimal(p.Price),
		Category:    p.Category,
		Image:       p.Image,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
	}
}

func (o OrderWithItemsRow) Response() (orderResponse.Order, error) {
	orderItems := []orderResponse.OrderItem{}
	err := json.Unmarshal(o.OrderItems, &orderItems)
	if err != nil {
		return orderResponse.Order{}, err
	}
	orderStatus, err := status.Parse(o.Status)
	if err != nil {
		return orderResponse.Order{}, err
	}
	return orderResponse.Order{
		ID:            o.ID,
		UserID:        o.UserID,
		Name:          o.Name,
		Phone:         o.Phone,
		Address:       o.Address,
		City:          o.City,
		Items:         orderItems,
		TotalAmount:   Decimal(o.TotalAmount),
		PaymentMethod: o.PaymentMethod,
		Status:        orderStatus,
		CreatedAt:     o.CreatedAt.Time,
	}, nil
}

func ordersResponse(rows []OrderWithItemsRow) ([]orderResponse.Order, error) {
	orders := make([]orderResponse.Order, 0, len(rows))
	for _, row := range rows {
		order, err := row.Response()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (f FindTopProductsRow) Response() dashboardResponse.TopProduct {
	return dashboardResponse.TopProduct{
		ProductID: f.ProductID,
		Name:      f.Name,
		TotalSold: f.TotalSold,
		Revenue:   Decimal(f.Revenue),
	}
}
