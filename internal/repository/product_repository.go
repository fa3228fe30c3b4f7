package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"santafe-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownCategory = errors.New("category does not exist")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `p.id, p.name, p.category_id, c.name, p.description, p.price, p.stock, p.image_url, p.created_at, p.updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.CategoryID,
		&product.CategoryName,
		&product.Description,
		&product.Price,
		&product.Stock,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	return product, err
}

// Create inserts a new product and reloads it joined with its category name
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		WITH p AS (
			INSERT INTO products (id, name, category_id, description, price, stock, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + productColumns + `
		FROM p
		LEFT JOIN categories c ON p.category_id = c.id
	`

	created, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.CategoryID,
		product.Description,
		product.Price,
		product.Stock,
		product.ImageURL,
	))

	if err != nil {
		if isForeignKeyViolation(err, "fk_products_category") {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	*product = *created
	return nil
}

// Update replaces every mutable column. A nil ImageURL keeps the stored image.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	query := `
		WITH p AS (
			UPDATE products
			SET name = $2, category_id = $3, description = $4, price = $5, stock = $6,
			    image_url = COALESCE($7, image_url)
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + productColumns + `
		FROM p
		LEFT JOIN categories c ON p.category_id = c.id
	`

	updated, err := scanProduct(r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.CategoryID,
		product.Description,
		product.Price,
		product.Stock,
		product.ImageURL,
	))

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if isForeignKeyViolation(err, "fk_products_category") {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	*product = *updated
	return nil
}

// Delete removes a product. Order items that reference it are detached by
// the ON DELETE SET NULL constraint and keep their snapshot values.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product with its category name
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id = $1
	`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List returns products newest first, optionally filtered by a text search
// over name and description and by exact category name
func (r *productRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if q := strings.TrimSpace(filter.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+escapeLike(q)+"%")
		argIndex++
	}

	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("c.name = $%d", argIndex))
		args = append(args, filter.Category)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		%s
		ORDER BY p.created_at DESC, p.id
		LIMIT $%d OFFSET $%d
	`, productColumns, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
