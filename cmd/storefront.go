package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	cartCmd "github.com/ammasidli/storefront/cart/cmd"
	"github.com/ammasidli/storefront/internal/common/constants"
	inOtelCommon "github.com/ammasidli/storefront/internal/common/otel"
	"github.com/ammasidli/storefront/internal/config"
	inErrors "github.com/ammasidli/storefront/internal/errors"
	"github.com/ammasidli/storefront/internal/infra"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/internal/middleware"
	inOtel "github.com/ammasidli/storefront/internal/otel"
	"github.com/ammasidli/storefront/notification"
	paymentCmd "github.com/ammasidli/storefront/payment/cmd"
	userCmd "github.com/ammasidli/storefront/user/cmd"
)

func runStorefrontService(c context.Context) {
	c, span := inOtelCommon.Tracer.Start(c, "runStorefrontService")
	defer span.End()

	cfg := config.InitConfig(c, constants.AppStorefrontService)

	logger := log.InitLogger(
		filepath.Join("/var/log/", constants.AppStorefrontService+".log"),
		cfg.Application.Env,
	).With().
		Str(log.KeyAppName, constants.AppStorefrontService).
		Str(log.KeyTag, "main runStorefrontService").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.AppStorefrontService),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler())
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.AppStorefrontService, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		if err := inOtel.ShutdownOtel(c, shutdownFuncs); err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(log.KeyProcess, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	c = logger.WithContext(c)
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger.Info().Msg("closing database")
		db.Close()
		logger.Info().Msg("closed database")
	}()
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(log.KeyProcess, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger.Info().Msg("closing cache")
		if err := cache.Close(); err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("closed cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(log.KeyProcess, "attaching controllers").Logger()
	logger.Info().Msg("attaching controllers")
	c = logger.WithContext(c)
	api := router.PathPrefix("/api").Subrouter()
	userCmd.Attach(c, api, db, cache, notification.NewLogSender(cfg.Sms.Sender), cfg.Application, cfg.Sms)
	paymentCmd.Attach(c, api, db, cfg.Stripe)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth(cfg.Application))
	cartCmd.Attach(c, protected, db, cache, cfg.Stripe.IntentURL)
	logger.Info().Msg("attached controllers")

	logger = logger.With().Str(log.KeyProcess, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context {
			lg := logger.With().
				Reset().
				Timestamp().
				Caller().
				Stack().
				Str(log.KeyAppName, constants.AppStorefrontService).
				Logger()
			c = lg.WithContext(c)
			return c
		},
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	defer func() {
		logger = logger.With().Str(log.KeyProcess, "shutting down server").Logger()
		logger.Info().Msg("shutting down server")
		if err := server.Shutdown(c); err != nil {
			err = fmt.Errorf("failed shutting down server with error=%w", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown server")
	}()
	logger.Info().Msg("initialized server")

	go func() {
		logger = logger.With().Str(log.KeyProcess, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(log.KeyProcess, "shutdown server").Logger()
	logger.Info().Msg("received interuption signal shutting down")
}
