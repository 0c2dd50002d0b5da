package cmd

import (
	"context"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ammasidli/storefront/cart/internal/controller"
	"github.com/ammasidli/storefront/cart/internal/service"
	"github.com/ammasidli/storefront/cart/pkg/store"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/internal/repository"
	"github.com/ammasidli/storefront/payment/pkg/client"
)

// Attach wires the cart service and its routes onto router. Carts persist
// in cache keyed by owner; checkout inserts orders through the shared
// repository and requests intents from intentURL.
func Attach(
	c context.Context,
	router *mux.Router,
	pool *pgxpool.Pool,
	cache *redis.Client,
	intentURL string,
) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "cart Attach").
		Logger()

	slots := func(owner string) store.Slot { return store.NewRedisSlot(cache, owner) }
	cartService := service.NewCartService(slots, repository.New(pool), client.NewRequester(intentURL))
	controller.AttachCartController(router, cartService)

	logger.Info().Msg("attached cart controller")
}
