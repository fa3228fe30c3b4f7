package transport

import (
	"net/http"

	"santafe-store/internal/middleware"
	"santafe-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderItemRequest is one cart line in a checkout
type OrderItemRequest struct {
	ProductID uuid.UUID        `json:"productId" validate:"required"`
	Quantity  int              `json:"quantity" validate:"gte=1"`
	Price     *decimal.Decimal `json:"price" validate:"required,gte=0"`
}

// CreateOrderRequest represents the checkout payload
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
	Total *decimal.Decimal   `json:"total" validate:"required,gte=0"`
}

// OrderHandler handles HTTP requests for orders
type OrderHandler struct {
	orderService service.OrderService
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(guards.Authenticated)
		r.Post("/", h.CreateOrder)
		r.Get("/{id}", h.GetOrder)
	})
}

// CreateOrder places an order for the signed-in user
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Order validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	lines := make([]service.OrderLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, service.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     *item.Price,
		})
	}

	caller := identity(r)
	order, err := h.orderService.Create(r.Context(), caller, lines, *req.Total)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	h.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", caller.UserID.String()),
		zap.Int("items", len(lines)),
	)
	middleware.RespondWithData(w, http.StatusCreated, map[string]interface{}{
		"order": order,
	})
}

// GetOrder returns an order to its owner or an admin
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), identity(r), id)
	if err != nil {
		middleware.RespondWithServiceError(w, r, err, h.logger)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]interface{}{
		"order": newOrderView(order),
	})
}
