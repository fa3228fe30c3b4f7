// Package cart models the client-held shopping cart and the checkout
// snapshot derived from it. The server never persists a cart; it rebuilds
// one from submitted lines to validate them and recompute the total.
package cart

import (
	"errors"
	"fmt"

	"santafe-store/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrMissingProduct  = errors.New("product is required")
)

// Entry is one cart line
type Entry struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal returns price times quantity
func (e Entry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Cart is an ordered list of entries
type Cart struct {
	entries []Entry
}

// New returns an empty cart
func New() *Cart {
	return &Cart{}
}

// FromEntries builds a cart that keeps every line as given, duplicates included
func FromEntries(entries []Entry) *Cart {
	c := &Cart{entries: make([]Entry, len(entries))}
	copy(c.entries, entries)
	return c
}

// Add puts one unit of a product in the cart, merging with an existing line
func (c *Cart) Add(productID uuid.UUID, name string, price decimal.Decimal) {
	for i := range c.entries {
		if c.entries[i].ProductID == productID {
			c.entries[i].Quantity++
			return
		}
	}

	c.entries = append(c.entries, Entry{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  1,
	})
}

// Remove drops every line for the product
func (c *Cart) Remove(productID uuid.UUID) {
	kept := c.entries[:0]
	for _, e := range c.entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}
	c.entries = kept
}

// UpdateQuantity changes a line's quantity by delta; a result of zero or
// less removes the line
func (c *Cart) UpdateQuantity(productID uuid.UUID, delta int) {
	for i := range c.entries {
		if c.entries[i].ProductID != productID {
			continue
		}

		c.entries[i].Quantity += delta
		if c.entries[i].Quantity <= 0 {
			c.Remove(productID)
		}
		return
	}
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.entries = nil
}

// Entries returns a copy of the lines in insertion order
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of lines
func (c *Cart) Len() int {
	return len(c.entries)
}

// Count returns the number of units across all lines
func (c *Cart) Count() int {
	count := 0
	for _, e := range c.entries {
		count += e.Quantity
	}
	return count
}

// Total returns the sum of all line subtotals
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// Validate checks the cart is fit for checkout
func (c *Cart) Validate() error {
	if len(c.entries) == 0 {
		return ErrEmptyCart
	}

	for i, e := range c.entries {
		if e.ProductID == uuid.Nil {
			return fmt.Errorf("item %d: %w", i+1, ErrMissingProduct)
		}
		if e.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
		if e.Quantity > domain.MaxQuantity {
			return fmt.Errorf("item %d: quantity %w", i+1, domain.ErrQuantityTooLarge)
		}
		if e.Price.IsNegative() {
			return fmt.Errorf("item %d: %w", i+1, ErrNegativePrice)
		}
		if err := domain.CheckAmount(e.Price); err != nil {
			return fmt.Errorf("item %d: price %w", i+1, err)
		}
	}

	return nil
}

// MatchesTotal reports whether a caller-supplied total equals the computed
// total once both are rounded to cents
func (c *Cart) MatchesTotal(total decimal.Decimal) bool {
	return c.Total().Round(2).Equal(total.Round(2))
}
