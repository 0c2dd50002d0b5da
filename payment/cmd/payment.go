package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ammasidli/storefront/internal/config"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/internal/repository"
	"github.com/ammasidli/storefront/payment/internal/controller"
	"github.com/ammasidli/storefront/payment/internal/service"
)

// Attach wires the payment service, the transfer ledger, and the processor
// client onto router.
func Attach(c context.Context, router *mux.Router, pool *pgxpool.Pool, cfg config.Stripe) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "payment Attach").
		Logger()

	stripeClient := service.NewStripeClient(cfg.SecretKey)
	paymentService := service.NewPaymentService(
		stripeClient.PaymentIntents,
		stripeClient.Transfers,
		repository.NewTransferLedger(pool),
		repository.New(pool),
		cfg,
	)
	controller.AttachPaymentController(router, paymentService, cfg.WebhookSecret)

	logger.Info().Msg("attached payment controller")
}
