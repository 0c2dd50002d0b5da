package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	orderRequest "github.com/ammasidli/storefront/order/pkg/request"
)

// LoadState reports what Open found in the slot, so a discarded corrupt
// snapshot is visible to the caller instead of silently becoming an empty
// cart.
type LoadState int

const (
	LoadEmpty LoadState = iota
	LoadRestored
	LoadDiscarded
)

func (s LoadState) String() string {
	switch s {
	case LoadRestored:
		return "restored"
	case LoadDiscarded:
		return "discarded"
	default:
		return "empty"
	}
}

// Store holds the authoritative cart state for one owner. It is built
// explicitly by whoever owns the slot; there is no package-level instance.
// Every mutation writes the full serialized cart through to the slot before
// returning. A Store is confined to a single goroutine.
type Store struct {
	slot  Slot
	items []CartItem
}

// Open constructs a Store from a prior snapshot in slot. A missing snapshot
// yields an empty cart (LoadEmpty); an unparsable one is dropped but
// reported as LoadDiscarded and logged. Only infrastructure failures return
// an error.
func Open(c context.Context, slot Slot) (*Store, LoadState, error) {
	s := &Store{slot: slot, items: []CartItem{}}

	data, found, err := slot.Load(c)
	if err != nil {
		return nil, LoadEmpty, fmt.Errorf("failed opening cart store with error=%w", err)
	}
	if !found {
		return s, LoadEmpty, nil
	}

	items := []CartItem{}
	if err := json.Unmarshal(data, &items); err != nil {
		zerolog.Ctx(c).
			Warn().
			Err(err).
			Str("tag", "store Open").
			Msg("discarding corrupt cart snapshot")
		return s, LoadDiscarded, nil
	}
	s.items = items
	return s, LoadRestored, nil
}

func (s *Store) persist(c context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	if err := s.slot.Store(c, data); err != nil {
		return fmt.Errorf("failed persisting cart with error=%w", err)
	}
	return nil
}

// AddToCart merges item into an existing (ID, Size) line by summing
// quantities, or appends a new line. No stock ceiling is enforced here.
func (s *Store) AddToCart(c context.Context, item CartItem) error {
	merged := false
	for i := range s.items {
		if s.items[i].ID == item.ID && s.items[i].Size == item.Size {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	return s.persist(c)
}

// RemoveFromCart drops every line matching (id, size). Removing an absent
// key is a no-op, not an error.
func (s *Store) RemoveFromCart(c context.Context, id string, size string) error {
	kept := s.items[:0]
	for _, item := range s.items {
		if item.ID == id && item.Size == size {
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	return s.persist(c)
}

// UpdateQuantity replaces the matching line's quantity. A quantity of zero
// or less removes the line.
func (s *Store) UpdateQuantity(c context.Context, id string, size string, quantity int32) error {
	if quantity <= 0 {
		return s.RemoveFromCart(c, id, size)
	}
	for i := range s.items {
		if s.items[i].ID == id && s.items[i].Size == size {
			s.items[i].Quantity = quantity
		}
	}
	return s.persist(c)
}

func (s *Store) ClearCart(c context.Context) error {
	s.items = []CartItem{}
	return s.persist(c)
}

// CartTotal sums unit price times quantity over all lines. A malformed
// price surfaces as an error rather than corrupting the sum.
func (s *Store) CartTotal() (decimal.Decimal, error) {
	total := decimal.Zero
	for _, item := range s.items {
		price, err := item.unitPrice()
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
	}
	return total, nil
}

func (s *Store) CartItemsCount() int32 {
	var count int32
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the cart lines.
func (s *Store) Items() []CartItem {
	return append([]CartItem(nil), s.items...)
}

// ToOrderInput expands the cart into an order-creation input: one product
// row per purchased unit, named "Name (Size)", status PENDING. Per-category
// totals are accumulated alongside; lines without a category fall under
// "default".
func (s *Store) ToOrderInput(userID uuid.UUID) (orderRequest.CreateOrder, error) {
	products := []orderRequest.Product{}
	categoryTotals := map[string]decimal.Decimal{}
	for _, item := range s.items {
		price, err := item.unitPrice()
		if err != nil {
			return orderRequest.CreateOrder{}, err
		}

		name := item.Name
		if item.Size != "" {
			name = fmt.Sprintf("%s (%s)", item.Name, item.Size)
		}
		for range item.Quantity {
			products = append(products, orderRequest.Product{Name: name, Price: price})
		}

		category := item.Category
		if category == "" {
			category = "default"
		}
		lineTotal := price.Mul(decimal.NewFromInt32(item.Quantity))
		categoryTotals[category] = categoryTotals[category].Add(lineTotal)
	}

	return orderRequest.CreateOrder{
		UserID:         userID,
		Products:       products,
		Status:         orderRequest.StatusPending,
		CategoryTotals: categoryTotals,
	}, nil
}
