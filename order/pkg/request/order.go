package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
)

// CreateOrder is the order-creation input derived from a cart. Products
// carries one row per purchased unit, already expanded from the cart's
// quantities, so summing Price over Products yields the order amount.
type CreateOrder struct {
	UserID         uuid.UUID                  `validate:"required"       json:"user_id"`
	Products       []Product                  `validate:"required,dive"  json:"products"`
	Status         Status                     `validate:"required"       json:"status"`
	CategoryTotals map[string]decimal.Decimal `json:"category_totals,omitempty"`
}

type Product struct {
	Name    string          `validate:"required" json:"name"`
	Price   decimal.Decimal `validate:"required" json:"price"`
	OrderID *uuid.UUID      `json:"order_id,omitempty"`
}

func (o CreateOrder) Amount() decimal.Decimal {
	amount := decimal.Zero
	for _, p := range o.Products {
		amount = amount.Add(p.Price)
	}
	return amount
}
