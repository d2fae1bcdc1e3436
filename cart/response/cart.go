package response

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/domain"
)

type CartItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Qty       int32           `json:"qty"`
	Total     decimal.Decimal `json:"total"`
}

type Cart struct {
	Items    []CartItem      `json:"items"`
	Count    int32           `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

func FromDomain(cart domain.Cart) Cart {
	items := make([]CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Image:     item.Image,
			Size:      item.Size,
			Color:     item.Color,
			Qty:       item.Qty,
			Total:     item.Total(),
		})
	}
	return Cart{Items: items, Count: cart.Count(), Subtotal: cart.Subtotal()}
}
