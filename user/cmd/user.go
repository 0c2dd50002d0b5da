package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ammasidli/storefront/internal/config"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/internal/repository"
	"github.com/ammasidli/storefront/notification"
	"github.com/ammasidli/storefront/user/internal/controller"
	"github.com/ammasidli/storefront/user/internal/service"
)

// Attach wires the phone OTP sign-in service and its routes onto router.
func Attach(
	c context.Context,
	router *mux.Router,
	pool *pgxpool.Pool,
	cache *redis.Client,
	sender notification.Sender,
	cfg config.Application,
	sms config.Sms,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "user Attach").
		Logger()

	userService := service.NewUserService(repository.New(pool), cache, sender, cfg, sms)
	controller.AttachUserController(router, userService)

	logger.Info().Msg("attached user controller")
}
