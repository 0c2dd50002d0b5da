package store

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ammasidli/storefront/internal/errors"
)

// CurrencyGlyph prefixes every display price, e.g. "₹40".
const CurrencyGlyph = "₹"

// CartItem is one cart line. Items are keyed by (ID, Size): the same
// product in two sizes occupies two lines. Price is the display string the
// catalog hands out, glyph prefix included.
type CartItem struct {
	ID       string `validate:"required"      json:"id"`
	Name     string `validate:"required"      json:"name"`
	Size     string `json:"size"`
	Price    string `validate:"required"      json:"price"`
	Quantity int32  `validate:"required,gte=1" json:"quantity"`
	ImageURL string `json:"image_url"`
	Category string `json:"category,omitempty"`
}

// ParsePrice strips the currency glyph and parses the remainder as a
// decimal. A malformed price is an error, not a NaN that silently poisons
// totals downstream.
func ParsePrice(price string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(price), CurrencyGlyph))
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf(
			"failed parsing price=%q with error=%w",
			price,
			errors.ErrMalformedPrice,
		)
	}
	return value, nil
}

func (i CartItem) unitPrice() (decimal.Decimal, error) {
	return ParsePrice(i.Price)
}
