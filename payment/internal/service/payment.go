package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"

	"github.com/ammasidli/storefront/internal/common/constants"
	"github.com/ammasidli/storefront/internal/config"
	inErrors "github.com/ammasidli/storefront/internal/errors"
	"github.com/ammasidli/storefront/internal/log"
	orderRequest "github.com/ammasidli/storefront/order/pkg/request"
	"github.com/ammasidli/storefront/payment/internal/otel"
	"github.com/ammasidli/storefront/payment/pkg/request"
	"github.com/ammasidli/storefront/payment/pkg/response"
)

// Ledger tracks which per-category transfers already settled for an order.
type Ledger interface {
	IsCompleted(c context.Context, orderID string, category string) (bool, error)
	MarkPending(c context.Context, orderID string, category string, destination string, amountMinor int64) error
	MarkCompleted(c context.Context, orderID string, category string, transferID string) error
}

// OrderMarker flips an order's status once its payment settles.
type OrderMarker interface {
	UpdateOrderStatus(c context.Context, id uuid.UUID, status orderRequest.Status) error
}

type PaymentService struct {
	intents   IntentCreator
	transfers TransferCreator
	ledger    Ledger
	orders    OrderMarker
	cfg       config.Stripe
}

func NewPaymentService(
	intents IntentCreator,
	transfers TransferCreator,
	ledger Ledger,
	orders OrderMarker,
	cfg config.Stripe,
) *PaymentService {
	return &PaymentService{
		intents:   intents,
		transfers: transfers,
		ledger:    ledger,
		orders:    orders,
		cfg:       cfg,
	}
}

func (s *PaymentService) currency() string {
	if s.cfg.Currency == "" {
		return string(stripe.CurrencyINR)
	}
	return s.cfg.Currency
}

// minorUnits converts a major-unit decimal amount into rounded minor
// currency units, e.g. ₹50 -> 5000 paise.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateIntent requests a payment intent from the processor. The whole
// category-totals map rides along as intent metadata; the webhook reads it
// back verbatim, it is never recomputed server side.
func (s *PaymentService) CreateIntent(
	c context.Context,
	param request.CreateIntent,
) (response.Intent, error) {
	c, span := otel.Tracer.Start(c, "PaymentService CreateIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService CreateIntent").
		Str(log.KeyOrderID, param.OrderID.String()).
		Str(log.KeyAmount, param.Amount.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "marshaling category totals").Logger()
	totals := map[string]string{}
	for category, amount := range param.CategoryTotals {
		totals[category] = amount.String()
	}
	totalsJson, err := json.Marshal(totals)
	if err != nil {
		err = fmt.Errorf("failed marshaling category totals with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Intent{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "creating payment intent").Logger()
	logger.Info().Msg("creating payment intent")
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits(param.Amount)),
		Currency:      stripe.String(s.currency()),
		TransferGroup: stripe.String(param.OrderID.String()),
	}
	params.AddMetadata(constants.MetadataKeyOrderID, param.OrderID.String())
	params.AddMetadata(constants.MetadataKeyCategories, string(totalsJson))
	intent, err := s.intents.New(params)
	if err != nil {
		err = fmt.Errorf("failed creating payment intent with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Intent{}, err
	}
	logger.Info().Str("intentId", intent.ID).Msg("created payment intent")

	return response.Intent{
		ID:            intent.ID,
		ClientSecret:  intent.ClientSecret,
		Amount:        intent.Amount,
		Currency:      string(intent.Currency),
		Status:        string(intent.Status),
		TransferGroup: intent.TransferGroup,
	}, nil
}

// HandleEvent dispatches a verified webhook event. Everything except
// payment_intent.succeeded is acknowledged without side effect.
func (s *PaymentService) HandleEvent(c context.Context, event stripe.Event) error {
	c, span := otel.Tracer.Start(c, "PaymentService HandleEvent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService HandleEvent").
		Str(log.KeyEventID, event.ID).
		Str(log.KeyEventType, string(event.Type)).
		Logger()

	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		logger.Info().Msg("ignoring event type")
		return nil
	}

	logger = logger.With().Str(log.KeyProcess, "unmarshaling payment intent").Logger()
	intent := stripe.PaymentIntent{}
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		err = fmt.Errorf("failed unmarshaling payment intent with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	c = logger.WithContext(c)
	return s.reconcile(c, intent)
}

// reconcile splits the settled amount across the category accounts, one
// transfer per category, sequentially and in deterministic order. The
// ledger is written before each transfer goes out so a retried webhook
// skips categories that already completed; a mid-batch failure aborts the
// remainder and leaves the retry to finish the job.
func (s *PaymentService) reconcile(c context.Context, intent stripe.PaymentIntent) error {
	c, span := otel.Tracer.Start(c, "PaymentService reconcile")
	defer span.End()

	orderID := intent.Metadata[constants.MetadataKeyOrderID]
	transferGroup := intent.TransferGroup

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService reconcile").
		Str(log.KeyOrderID, orderID).
		Str(log.KeyTransferGroup, transferGroup).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing category totals").Logger()
	totals, err := parseCategoryTotals(intent.Metadata[constants.MetadataKeyCategories])
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	categories := make([]string, 0, len(totals))
	for category := range totals {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		amountMinor := minorUnits(totals[category])
		destination, ok := s.cfg.CategoryAccounts[category]
		if !ok {
			destination = s.cfg.DefaultAccount
		}

		lg := logger.With().
			Str(log.KeyProcess, "issuing transfer").
			Str(log.KeyCategory, category).
			Str(log.KeyDestination, destination).
			Int64(log.KeyAmountMinor, amountMinor).
			Logger()

		if destination == "" {
			lg.Warn().Msg("no destination account resolved, skipping category")
			continue
		}

		done, err := s.ledger.IsCompleted(c, orderID, category)
		if err != nil {
			err = fmt.Errorf("failed checking transfer ledger with error=%w", err)
			inErrors.HandleError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return err
		}
		if done {
			lg.Info().Msg("transfer already completed, skipping category")
			continue
		}

		err = s.ledger.MarkPending(c, orderID, category, destination, amountMinor)
		if err != nil {
			inErrors.HandleError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return err
		}

		lg.Info().Msg("issuing transfer")
		params := &stripe.TransferParams{
			Amount:        stripe.Int64(amountMinor),
			Currency:      stripe.String(s.currency()),
			Destination:   stripe.String(destination),
			TransferGroup: stripe.String(transferGroup),
		}
		params.AddMetadata(constants.MetadataKeyCategory, category)
		params.AddMetadata(constants.MetadataKeyOrderID, orderID)
		transfer, err := s.transfers.New(params)
		if err != nil {
			err = fmt.Errorf(
				"failed issuing transfer for category=%s with error=%w",
				category,
				err,
			)
			inErrors.HandleError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return err
		}

		err = s.ledger.MarkCompleted(c, orderID, category, transfer.ID)
		if err != nil {
			inErrors.HandleError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return err
		}
		transfersIssued.WithLabelValues(category).Inc()
		lg.Info().Str(log.KeyTransferID, transfer.ID).Msg("issued transfer")
	}

	s.markOrderPaid(c, orderID)
	return nil
}

// markOrderPaid is best effort: the funds already moved, and a webhook
// retry would re-enter through the ledger anyway.
func (s *PaymentService) markOrderPaid(c context.Context, orderID string) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentService markOrderPaid").
		Str(log.KeyOrderID, orderID).
		Logger()

	id, err := uuid.Parse(orderID)
	if err != nil {
		logger.Warn().Err(err).Msg("order id in intent metadata is not a uuid")
		return
	}
	if err := s.orders.UpdateOrderStatus(c, id, orderRequest.StatusPaid); err != nil {
		logger.Warn().Err(err).Msg("failed marking order paid")
		return
	}
	logger.Info().Msg("marked order paid")
}

// parseCategoryTotals decodes the category_totals metadata value. Absence
// defaults to an empty mapping; a malformed non-empty value is an error and
// fails the whole webhook.
func parseCategoryTotals(raw string) (map[string]decimal.Decimal, error) {
	if raw == "" {
		raw = "{}"
	}
	parsed := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed parsing category totals with error=%w", err)
	}

	totals := map[string]decimal.Decimal{}
	for category, value := range parsed {
		switch v := value.(type) {
		case string:
			amount, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf(
					"failed parsing category=%s total=%q with error=%w",
					category,
					v,
					err,
				)
			}
			totals[category] = amount
		case float64:
			totals[category] = decimal.NewFromFloat(v)
		default:
			return nil, fmt.Errorf("failed parsing category=%s total: unsupported type", category)
		}
	}
	return totals, nil
}
