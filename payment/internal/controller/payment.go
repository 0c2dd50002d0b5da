package controller

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82/webhook"

	inErrors "github.com/ammasidli/storefront/internal/errors"
	inHttp "github.com/ammasidli/storefront/internal/http"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/payment/internal/otel"
	"github.com/ammasidli/storefront/payment/internal/service"
	"github.com/ammasidli/storefront/payment/pkg/request"
)

type PaymentController struct {
	service       *service.PaymentService
	webhookSecret string
}

func AttachPaymentController(
	router *mux.Router,
	svc *service.PaymentService,
	webhookSecret string,
) {
	controller := PaymentController{service: svc, webhookSecret: webhookSecret}

	sub := router.PathPrefix("/payments").Subrouter()
	sub.HandleFunc("/intents", controller.CreateIntent).Methods(http.MethodPost)
	sub.HandleFunc("/webhook", controller.Webhook).Methods(http.MethodPost)
}

// CreateIntent responds in the processor-facing shape rather than the
// storefront envelope: the intent payload itself on success and
// {"error": ...} on failure, which is what the checkout-side requester
// parses.
func (t PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController CreateIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController CreateIntent").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.CreateIntent{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeIntentError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeIntentError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating payment intent").Logger()
	c = logger.WithContext(c)
	intent, err := t.service.CreateIntent(c, reqBody)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeIntentError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(intent)
}

func writeIntentError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// Webhook authenticates and processes processor callbacks. The responses
// here follow the processor's conventions, not the storefront envelope: 200
// {"received": true} on success and 400 {"error": ...} on any failure, so
// the processor keeps retrying until a delivery fully succeeds.
func (t PaymentController) Webhook(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "PaymentController Webhook")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "PaymentController Webhook").
		Logger()

	signature := r.Header.Get(inHttp.KeyHeaderStripeSignature)
	if signature == "" {
		inErrors.HandleError(inErrors.ErrMissingSignature, span)
		logger.Error().
			Err(inErrors.ErrMissingSignature).
			Msg(inErrors.ErrMissingSignature.Error())
		writeWebhookError(w, inErrors.ErrMissingSignature.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "reading raw body").Logger()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		err = fmt.Errorf("failed reading request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeWebhookError(w, err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "verifying signature").Logger()
	event, err := webhook.ConstructEvent(body, signature, t.webhookSecret)
	if err != nil {
		err = fmt.Errorf("failed verifying webhook signature with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeWebhookError(w, err.Error())
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "handling event").
		Str(log.KeyEventID, event.ID).
		Str(log.KeyEventType, string(event.Type)).
		Logger()
	logger.Info().Msg("handling event")
	c = logger.WithContext(c)
	if err := t.service.HandleEvent(c, event); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeWebhookError(w, err.Error())
		return
	}
	logger.Info().Msg("handled event")

	w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	json.NewEncoder(w).Encode(map[string]interface{}{"received": true})
}

func writeWebhookError(w http.ResponseWriter, message string) {
	w.Header().Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
