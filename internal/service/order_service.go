package service

import (
	"context"
	"errors"
	"time"

	"santafe-store/internal/cart"
	"santafe-store/internal/domain"
	"santafe-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one submitted cart line
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
	Price     decimal.Decimal
}

// PlacedOrder identifies a freshly created order
type PlacedOrder struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// OrderService defines the interface for order business logic
type OrderService interface {
	Create(ctx context.Context, caller domain.Identity, lines []OrderLine, total decimal.Decimal) (*PlacedOrder, error)
	Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.OrderDetail, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// Create validates the submitted cart and stores the order header and every
// line in a single transaction
func (s *orderService) Create(ctx context.Context, caller domain.Identity, lines []OrderLine, total decimal.Decimal) (*PlacedOrder, error) {
	if caller.UserID == uuid.Nil {
		return nil, unauthenticated("authentication required")
	}

	entries := make([]cart.Entry, 0, len(lines))
	for _, line := range lines {
		entries = append(entries, cart.Entry{
			ProductID: line.ProductID,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}

	c := cart.FromEntries(entries)
	if err := c.Validate(); err != nil {
		return nil, invalidInput(err.Error(), err)
	}
	if err := domain.CheckAmount(total); err != nil {
		return nil, invalidInput("total "+err.Error(), err)
	}
	if !c.MatchesTotal(total) {
		return nil, invalidInput("total does not match the cart items", nil)
	}

	order := &domain.Order{
		ID:     uuid.New(),
		UserID: caller.UserID,
		Total:  total.Round(2),
		Items:  make([]*domain.OrderItem, 0, c.Len()),
	}
	for _, e := range c.Entries() {
		order.Items = append(order.Items, &domain.OrderItem{
			ID:        uuid.New(),
			ProductID: uuid.NullUUID{UUID: e.ProductID, Valid: true},
			Quantity:  e.Quantity,
			UnitPrice: e.Price,
		})
	}

	// an unknown product aborts the transaction like any other store failure
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, persistenceFailure(err)
	}

	return &PlacedOrder{ID: order.ID, CreatedAt: order.CreatedAt}, nil
}

// Get returns an order to its owner or to an admin
func (s *orderService) Get(ctx context.Context, caller domain.Identity, id uuid.UUID) (*domain.OrderDetail, error) {
	if caller.UserID == uuid.Nil {
		return nil, unauthenticated("authentication required")
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, notFound("order not found", err)
		}
		return nil, persistenceFailure(err)
	}

	if !caller.CanAccess(order.UserID) {
		return nil, forbidden("access denied")
	}

	return order, nil
}
