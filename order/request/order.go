package request

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/storefront/order/status"
)

type Shipping struct {
	Name    string `validate:"required,max=255"  json:"name"`
	Phone   string `validate:"required,max=64"   json:"phone"`
	Address string `validate:"required,max=1024" json:"address"`
	City    string `validate:"required,max=255"  json:"city"`
}

// Trim strips surrounding whitespace so blank fields fail the required check.
func (s Shipping) Trim() Shipping {
	return Shipping{
		Name:    strings.TrimSpace(s.Name),
		Phone:   strings.TrimSpace(s.Phone),
		Address: strings.TrimSpace(s.Address),
		City:    strings.TrimSpace(s.City),
	}
}

func (s Shipping) MarshalZerologObject(e *zerolog.Event) {
	e.Str("name", s.Name).Str("phone", "***").Str("city", s.City)
}

type PlaceOrder struct {
	SessionID uuid.UUID
	UserID    uuid.NullUUID
	Shipping  Shipping
}

type CreateOrder struct {
	ID            uuid.UUID
	UserID        uuid.NullUUID
	Shipping      Shipping
	Items         []OrderItem
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Status        status.Status
	CreatedAt     time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	Name      string
	Price     decimal.Decimal
	Quantity  int32
	Size      string
	Color     string
	Image     string
}

type UpdateStatus struct {
	Status string `validate:"required" json:"status"`
}
