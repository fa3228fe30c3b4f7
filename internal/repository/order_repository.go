package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"santafe-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrUnknownProduct = errors.New("product does not exist")
)

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create writes the order header and every line item in one transaction.
// Either all rows are committed or none are.
func (r *orderRepository) Create(ctx context.Context, order *domain.Order) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
	}()

	headerQuery := `
		INSERT INTO orders (id, user_id, total, notification_sent)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err = tx.QueryRowContext(
		ctx,
		headerQuery,
		order.ID,
		order.UserID,
		order.Total,
		order.NotificationSent,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, line_no, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, item := range order.Items {
		item.OrderID = order.ID
		item.LineNo = i + 1

		_, err = tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			item.OrderID,
			item.LineNo,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
		)
		if err != nil {
			if isForeignKeyViolation(err, "fk_order_items_product") {
				return fmt.Errorf("item %d: %w", item.LineNo, ErrUnknownProduct)
			}
			return fmt.Errorf("failed to create order item %d: %w", item.LineNo, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

// FindByID loads an order with its owner's display fields and its line items
// in submission order, each joined with the product's current name and image
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.OrderDetail, error) {
	headerQuery := `
		SELECT o.id, o.user_id, u.name, u.email, o.total, o.notification_sent, o.created_at
		FROM orders o
		JOIN users u ON o.user_id = u.id
		WHERE o.id = $1
	`

	order := &domain.OrderDetail{}
	err := r.db.QueryRowContext(ctx, headerQuery, id).Scan(
		&order.ID,
		&order.UserID,
		&order.UserName,
		&order.UserEmail,
		&order.Total,
		&order.NotificationSent,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}

	itemsQuery := `
		SELECT oi.id, oi.order_id, oi.line_no, oi.product_id, oi.quantity, oi.unit_price,
		       p.name, p.image_url
		FROM order_items oi
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = $1
		ORDER BY oi.line_no ASC
	`

	rows, err := r.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	order.Items = []*domain.OrderItemDetail{}
	for rows.Next() {
		item := &domain.OrderItemDetail{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.LineNo,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPrice,
			&item.ProductName,
			&item.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return order, nil
}
