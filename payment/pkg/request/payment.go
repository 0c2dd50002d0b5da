package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateIntent is the body of the create-intent request: the amount is the
// sum over the order's (per-unit expanded) product prices, and the category
// totals travel with the intent as metadata so the webhook can split the
// settled funds without recomputing anything.
type CreateIntent struct {
	OrderID        uuid.UUID                  `validate:"required" json:"orderId"`
	Amount         decimal.Decimal            `validate:"required" json:"amount"`
	CategoryTotals map[string]decimal.Decimal `json:"categoryTotals"`
}
