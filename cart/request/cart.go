package request

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/cart/domain"
	"github.com/Alturino/storefront/internal/errors"
)

// Quantity accepts a JSON number or string. Anything that is not a positive
// integer decodes as 1 and values above domain.MaxQty decode as domain.MaxQty.
type Quantity int32

func (q *Quantity) UnmarshalJSON(data []byte) error {
	*q = 1
	raw := strings.TrimSpace(string(bytes.Trim(data, `"`)))
	n, err := strconv.ParseFloat(raw, 64)
	switch {
	case err != nil || math.IsNaN(n) || n < 1:
	case n > float64(domain.MaxQty):
		*q = Quantity(domain.MaxQty)
	default:
		*q = Quantity(int32(n))
	}
	return nil
}

type AddToCart struct {
	ProductID uuid.UUID       `validate:"required"              json:"productId"`
	Name      string          `validate:"omitempty,max=255"     json:"name"`
	Price     decimal.Decimal `                                 json:"price"`
	Image     string          `validate:"omitempty,max=2048"    json:"image"`
	Size      string          `validate:"omitempty,max=32"      json:"size"`
	Color     string          `validate:"omitempty,max=32"      json:"color"`
	Qty       Quantity        `                                 json:"qty"`
}

func (a AddToCart) LineItem() domain.LineItem {
	qty := int32(a.Qty)
	if qty < 1 {
		qty = 1
	}
	return domain.LineItem{
		ProductID: a.ProductID,
		Name:      strings.TrimSpace(a.Name),
		Price:     a.Price.Round(2),
		Image:     a.Image,
		Size:      strings.TrimSpace(a.Size),
		Color:     strings.TrimSpace(a.Color),
		Qty:       qty,
	}
}

func (a AddToCart) MarshalZerologObject(e *zerolog.Event) {
	e.Str("productId", a.ProductID.String()).
		Str("name", a.Name).
		Str("price", a.Price.String()).
		Str("size", a.Size).
		Str("color", a.Color).
		Int32("qty", int32(a.Qty))
}

type UpdateQuantity struct {
	Direction string `validate:"required" json:"direction"`
}

func (u UpdateQuantity) ParseDirection() (domain.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(u.Direction)) {
	case "increment", "inc":
		return domain.Increment, nil
	case "decrement", "dec":
		return domain.Decrement, nil
	default:
		return "", errors.ErrInvalidQuantity
	}
}
