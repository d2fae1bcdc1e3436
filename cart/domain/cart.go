// Package domain holds the shopping cart value and the pure operations that
// merge, remove and adjust its lines.
package domain

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/internal/errors"
)

type Direction string

const (
	Increment Direction = "increment"
	Decrement Direction = "decrement"
)

// MaxQty is the largest quantity a single line can hold.
const MaxQty int32 = 999

type LineItem struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Qty       int32           `json:"qty"`
}

// Key is the identity of a line: two adds with the same key collapse into one line.
type Key struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

func (l LineItem) Key() Key {
	return Key{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt32(l.Qty))
}

type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.Items {
		subtotal = subtotal.Add(item.Total())
	}
	return subtotal
}

func (c Cart) Count() int32 {
	var count int32
	for _, item := range c.Items {
		count += item.Qty
	}
	return count
}

func (c Cart) indexOf(lineID uuid.UUID) int {
	return slices.IndexFunc(c.Items, func(l LineItem) bool { return l.ID == lineID })
}

// AddItem merges item into the line with the same key or appends it as a new line.
// A quantity below one is treated as one and the line saturates at MaxQty.
func AddItem(cart Cart, item LineItem) Cart {
	item.Qty = clampQty(int64(item.Qty))
	items := slices.Clone(cart.Items)
	idx := slices.IndexFunc(items, func(l LineItem) bool { return l.Key() == item.Key() })
	if idx >= 0 {
		items[idx].Qty = clampQty(int64(items[idx].Qty) + int64(item.Qty))
		return Cart{Items: items}
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return Cart{Items: append(items, item)}
}

func RemoveItem(cart Cart, lineID uuid.UUID) (Cart, error) {
	idx := cart.indexOf(lineID)
	if idx < 0 {
		return cart, errors.ErrCartItemNotFound
	}
	return Cart{Items: slices.Delete(slices.Clone(cart.Items), idx, idx+1)}, nil
}

// UpdateQuantity moves the line quantity by one. Decrement never goes below one
// and increment past MaxQty fails with ErrInvalidQuantity.
func UpdateQuantity(cart Cart, lineID uuid.UUID, direction Direction) (Cart, error) {
	if direction != Increment && direction != Decrement {
		return cart, errors.ErrInvalidQuantity
	}
	idx := cart.indexOf(lineID)
	if idx < 0 {
		return cart, errors.ErrCartItemNotFound
	}
	items := slices.Clone(cart.Items)
	switch direction {
	case Increment:
		if items[idx].Qty >= MaxQty {
			return cart, errors.ErrInvalidQuantity
		}
		items[idx].Qty++
	case Decrement:
		if items[idx].Qty > 1 {
			items[idx].Qty--
		}
	}
	return Cart{Items: items}, nil
}

func clampQty(qty int64) int32 {
	switch {
	case qty < 1:
		return 1
	case qty > int64(MaxQty):
		return MaxQty
	default:
		return int32(qty)
	}
}

func Clear(Cart) Cart {
	return Cart{Items: []LineItem{}}
}
