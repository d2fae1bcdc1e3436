// Package memory is an in-process twin of the postgres repository with the
// same method set and ordering rules.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	dashboardResponse "github.com/Alturino/storefront/dashboard/response"
	"github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/order/request"
	orderResponse "github.com/Alturino/storefront/order/response"
	"github.com/Alturino/storefront/order/status"
	productResponse "github.com/Alturino/storefront/product/response"
)

type Store struct {
	mu       sync.RWMutex
	orders   map[uuid.UUID]orderResponse.Order
	products map[uuid.UUID]productResponse.Product
	users    map[uuid.UUID]struct{}
}

type Option func(*Store)

func WithProducts(products ...productResponse.Product) Option {
	return func(s *Store) {
		for _, p := range products {
			s.products[p.ID] = p
		}
	}
}

func WithUsers(ids ...uuid.UUID) Option {
	return func(s *Store) {
		for _, id := range ids {
			s.users[id] = struct{}{}
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		orders:   map[uuid.UUID]orderResponse.Order{},
		products: map[uuid.UUID]productResponse.Product{},
		users:    map[uuid.UUID]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func compareUUID(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

func cloneOrder(o orderResponse.Order) orderResponse.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// newestFirst orders by createdAt descending then id ascending.
func newestFirst(a, b orderResponse.Order) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return compareUUID(a.ID, b.ID)
}

func (s *Store) sortedOrders(cmp func(a, b orderResponse.Order) int) []orderResponse.Order {
	orders := make([]orderResponse.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, cloneOrder(o))
	}
	slices.SortFunc(orders, cmp)
	return orders
}

func (s *Store) CreateOrder(c context.Context, param request.CreateOrder) (orderResponse.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[param.ID]; ok {
		return orderResponse.Order{}, fmt.Errorf("order id=%s already exists", param.ID)
	}
	items := make([]orderResponse.OrderItem, 0, len(param.Items))
	for _, item := range param.Items {
		items = append(items, orderResponse.OrderItem{
			ID:        item.ID,
			OrderID:   param.ID,
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Image:     item.Image,
		})
	}
	order := orderResponse.Order{
		ID:            param.ID,
		UserID:        param.UserID,
		Name:          param.Shipping.Name,
		Phone:         param.Shipping.Phone,
		Address:       param.Shipping.Address,
		City:          param.Shipping.City,
		Items:         items,
		TotalAmount:   param.TotalAmount,
		PaymentMethod: param.PaymentMethod,
		Status:        param.Status,
		CreatedAt:     param.CreatedAt,
	}
	s.orders[order.ID] = order
	return cloneOrder(order), nil
}

func (s *Store) FindOrderById(c context.Context, id uuid.UUID) (orderResponse.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return orderResponse.Order{}, fmt.Errorf("id=%s %w", id, errors.ErrOrderNotFound)
	}
	return cloneOrder(order), nil
}

func (s *Store) FindOrders(c context.Context) ([]orderResponse.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedOrders(newestFirst), nil
}

func (s *Store) FindOrdersByUserId(c context.Context, userId uuid.UUID) ([]orderResponse.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := slices.DeleteFunc(s.sortedOrders(newestFirst), func(o orderResponse.Order) bool {
		return !o.UserID.Valid || o.UserID.UUID != userId
	})
	return orders, nil
}

func (s *Store) FindRecentOrders(c context.Context, limit int32) ([]orderResponse.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := s.sortedOrders(newestFirst)
	if limit >= 0 && int(limit) < len(orders) {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Store) UpdateOrderStatus(
	c context.Context,
	id uuid.UUID,
	from status.Status,
	to status.Status,
) (orderResponse.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return orderResponse.Order{}, fmt.Errorf("id=%s %w", id, errors.ErrOrderNotFound)
	}
	if order.Status != from {
		return orderResponse.Order{}, fmt.Errorf(
			"order status changed to=%s while updating from=%s %w",
			order.Status,
			from,
			errors.ErrInvalidTransition,
		)
	}
	order.Status = to
	s.orders[id] = order
	return cloneOrder(order), nil
}

func (s *Store) CountOrders(c context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.orders)), nil
}

func (s *Store) SumOrderTotalAmount(c context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, o := range s.orders {
		sum = sum.Add(o.TotalAmount)
	}
	return sum, nil
}

func (s *Store) SumOrderTotalAmountBetween(c context.Context, start time.Time, end time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, o := range s.orders {
		if o.CreatedAt.Before(start) || !o.CreatedAt.Before(end) {
			continue
		}
		sum = sum.Add(o.TotalAmount)
	}
	return sum, nil
}

// FindTopProducts names each product after the first line seen in the oldest order.
func (s *Store) FindTopProducts(c context.Context, limit int32) ([]dashboardResponse.TopProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	oldestFirst := func(a, b orderResponse.Order) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(a.ID, b.ID)
	}
	grouped := map[uuid.UUID]*dashboardResponse.TopProduct{}
	products := []*dashboardResponse.TopProduct{}
	for _, o := range s.sortedOrders(oldestFirst) {
		for _, item := range o.Items {
			p, ok := grouped[item.ProductID]
			if !ok {
				p = &dashboardResponse.TopProduct{ProductID: item.ProductID, Name: item.Name, Revenue: decimal.Zero}
				grouped[item.ProductID] = p
				products = append(products, p)
			}
			p.TotalSold += int64(item.Quantity)
			p.Revenue = p.Revenue.Add(item.Price.Mul(decimal.NewFromInt32(item.Quantity)))
		}
	}
	slices.SortFunc(products, func(a, b *dashboardResponse.TopProduct) int {
		if a.TotalSold != b.TotalSold {
			if a.TotalSold > b.TotalSold {
				return -1
			}
			return 1
		}
		return compareUUID(a.ProductID, b.ProductID)
	})
	if limit >= 0 && int(limit) < len(products) {
		products = products[:limit]
	}
	result := make([]dashboardResponse.TopProduct, 0, len(products))
	for _, p := range products {
		result = append(result, *p)
	}
	return result, nil
}

func (s *Store) FindProductById(c context.Context, id uuid.UUID) (productResponse.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return productResponse.Product{}, fmt.Errorf("id=%s %w", id, errors.ErrProductNotFound)
	}
	return product, nil
}

func (s *Store) sortedProducts(keep func(productResponse.Product) bool) []productResponse.Product {
	products := make([]productResponse.Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			products = append(products, p)
		}
	}
	slices.SortFunc(products, func(a, b productResponse.Product) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareUUID(a.ID, b.ID)
	})
	return products
}

func (s *Store) FindProducts(c context.Context) ([]productResponse.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProducts(func(productResponse.Product) bool { return true }), nil
}

func (s *Store) FindProductsByCategory(c context.Context, category string) ([]productResponse.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedProducts(func(p productResponse.Product) bool {
		return strings.EqualFold(p.Category, category)
	}), nil
}

func (s *Store) CountProducts(c context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.products)), nil
}

func (s *Store) CountUsers(c context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}
