package response

import (
	"github.com/google/uuid"

	"github.com/ammasidli/storefront/cart/pkg/store"
)

type Cart struct {
	Items []store.CartItem `json:"items"`
	Total string           `json:"total"`
	Count int32            `json:"count"`
}

type Checkout struct {
	OrderID uuid.UUID              `json:"order_id"`
	Intent  map[string]interface{} `json:"intent"`
}
