package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is the additive identity used for empty carts.
var Zero = decimal.Zero

// Parse reads a non-negative amount such as "129.90".
func Parse(value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse amount %q: %w", value, err)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %q must not be negative", value)
	}
	return amount, nil
}

// LineTotal returns price multiplied by quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Format renders amount with two decimals behind the currency symbol.
func Format(amount decimal.Decimal, symbol string) string {
	return symbol + amount.StringFixed(2)
}
