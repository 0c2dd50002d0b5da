package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ammasidli/storefront/cart/internal/otel"
	"github.com/ammasidli/storefront/cart/pkg/request"
	"github.com/ammasidli/storefront/cart/pkg/response"
	"github.com/ammasidli/storefront/cart/pkg/store"
	inErrors "github.com/ammasidli/storefront/internal/errors"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/internal/repository"
	orderRequest "github.com/ammasidli/storefront/order/pkg/request"
)

var ErrEmptyCart = errors.New("cart is empty")

// SlotFactory yields the persistence slot backing one owner's cart.
type SlotFactory func(owner string) store.Slot

type OrderInserter interface {
	InsertOrder(c context.Context, orderID uuid.UUID, param orderRequest.CreateOrder) (repository.Order, error)
}

type IntentRequester interface {
	CreateIntent(c context.Context, orderID uuid.UUID, order orderRequest.CreateOrder) (map[string]interface{}, error)
}

type CartService struct {
	slots     SlotFactory
	orders    OrderInserter
	requester IntentRequester
}

func NewCartService(
	slots SlotFactory,
	orders OrderInserter,
	requester IntentRequester,
) *CartService {
	return &CartService{slots: slots, orders: orders, requester: requester}
}

func (s *CartService) open(c context.Context, userID uuid.UUID) (*store.Store, error) {
	cart, state, err := store.Open(c, s.slots(userID.String()))
	if err != nil {
		return nil, err
	}
	if state == store.LoadDiscarded {
		zerolog.Ctx(c).
			Warn().
			Str(log.KeyUserID, userID.String()).
			Msg("previous cart snapshot was corrupt and has been discarded")
	}
	return cart, nil
}

func (s *CartService) AddItem(
	c context.Context,
	userID uuid.UUID,
	param request.AddItem,
) ([]store.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cart, err := s.open(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	item := store.CartItem{
		ID:       param.ID,
		Name:     param.Name,
		Size:     param.Size,
		Price:    param.Price,
		Quantity: param.Quantity,
		ImageURL: param.ImageURL,
		Category: param.Category,
	}
	if err := cart.AddToCart(c, item); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int32("quantity", param.Quantity).Msg("added item to cart")

	return cart.Items(), nil
}

func (s *CartService) RemoveItem(
	c context.Context,
	userID uuid.UUID,
	id string,
	size string,
) ([]store.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cart, err := s.open(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if err := cart.RemoveFromCart(c, id, size); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Msg("removed item from cart")

	return cart.Items(), nil
}

func (s *CartService) UpdateQuantity(
	c context.Context,
	userID uuid.UUID,
	param request.UpdateQuantity,
) ([]store.CartItem, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cart, err := s.open(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if err := cart.UpdateQuantity(c, param.ID, param.Size, param.Quantity); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int32("quantity", param.Quantity).Msg("updated item quantity")

	return cart.Items(), nil
}

func (s *CartService) Clear(c context.Context, userID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	cart, err := s.open(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		return err
	}
	return cart.ClearCart(c)
}

func (s *CartService) GetCart(c context.Context, userID uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cart, err := s.open(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	total, err := cart.CartTotal()
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	return response.Cart{
		Items: cart.Items(),
		Total: total.String(),
		Count: cart.CartItemsCount(),
	}, nil
}

// Checkout turns the cart into a persisted PENDING order, requests a
// payment intent for it, and clears the cart. The intent payload is handed
// back verbatim for the client to complete the payment with.
func (s *CartService) Checkout(c context.Context, userID uuid.UUID) (response.Checkout, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService Checkout").
		Str(log.KeyUserID, userID.String()).
		Logger()

	cart, err := s.open(c, userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	if cart.CartItemsCount() == 0 {
		inErrors.HandleError(ErrEmptyCart, span)
		logger.Error().Err(ErrEmptyCart).Msg(ErrEmptyCart.Error())
		return response.Checkout{}, ErrEmptyCart
	}

	logger = logger.With().Str(log.KeyProcess, "mapping cart to order").Logger()
	orderInput, err := cart.ToOrderInput(userID)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}

	orderID := uuid.New()
	logger = logger.With().
		Str(log.KeyProcess, "inserting order").
		Str(log.KeyOrderID, orderID.String()).
		Logger()
	logger.Info().Msg("inserting order")
	order, err := s.orders.InsertOrder(c, orderID, orderInput)
	if err != nil {
		err = fmt.Errorf("failed inserting order with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "requesting payment intent").Logger()
	logger.Info().Msg("requesting payment intent")
	c = logger.WithContext(c)
	intent, err := s.requester.CreateIntent(c, order.ID, orderInput)
	if err != nil {
		err = fmt.Errorf("failed requesting payment intent with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Info().Msg("requested payment intent")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	if err := cart.ClearCart(c); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Info().Msg("cleared cart")

	return response.Checkout{OrderID: order.ID, Intent: intent}, nil
}
