package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the header row created once per checkout
type Order struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	UserID           uuid.UUID       `json:"user_id" db:"user_id"`
	Total            decimal.Decimal `json:"total" db:"total"`
	NotificationSent bool            `json:"notification_sent" db:"notification_sent"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	Items            []*OrderItem    `json:"items,omitempty"`
}

// OrderItem is one line of an order. Quantity and UnitPrice are snapshots
// taken at checkout; ProductID becomes null if the product is deleted.
type OrderItem struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	OrderID   uuid.UUID       `json:"order_id" db:"order_id"`
	LineNo    int             `json:"line_no" db:"line_no"`
	ProductID uuid.NullUUID   `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// OrderDetail is an order joined with its owner and live product fields
type OrderDetail struct {
	ID               uuid.UUID          `json:"id"`
	UserID           uuid.UUID          `json:"user_id"`
	UserName         string             `json:"user_name"`
	UserEmail        string             `json:"user_email"`
	Total            decimal.Decimal    `json:"total"`
	NotificationSent bool               `json:"notification_sent"`
	CreatedAt        time.Time          `json:"created_at"`
	Items            []*OrderItemDetail `json:"items"`
}

// OrderItemDetail carries the current product name and image next to the snapshot
type OrderItemDetail struct {
	OrderItem
	ProductName *string `json:"product_name"`
	ImageURL    *string `json:"image_url"`
}
