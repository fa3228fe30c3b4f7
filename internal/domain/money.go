package domain

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Column limits: money is DECIMAL(10,2), counts are INTEGER
const MaxQuantity = math.MaxInt32

// MaxAmount is the largest value a DECIMAL(10,2) column holds
var MaxAmount = decimal.RequireFromString("99999999.99")

var (
	ErrNegativeAmount   = errors.New("must not be negative")
	ErrTooManyDecimals  = errors.New("must have at most 2 decimal places")
	ErrAmountTooLarge   = errors.New("must not exceed 99999999.99")
	ErrQuantityTooLarge = errors.New("must not exceed 2147483647")
)

// CheckAmount reports whether d can be stored as a price or total unchanged
func CheckAmount(d decimal.Decimal) error {
	switch {
	case d.IsNegative():
		return ErrNegativeAmount
	case !d.Equal(d.Truncate(2)):
		return ErrTooManyDecimals
	case d.GreaterThan(MaxAmount):
		return ErrAmountTooLarge
	}
	return nil
}
