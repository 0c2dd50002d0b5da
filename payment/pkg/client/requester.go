package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inErrors "github.com/ammasidli/storefront/internal/errors"
	inHttp "github.com/ammasidli/storefront/internal/http"
	"github.com/ammasidli/storefront/internal/log"
	orderRequest "github.com/ammasidli/storefront/order/pkg/request"
	"github.com/ammasidli/storefront/payment/internal/otel"
	"github.com/ammasidli/storefront/payment/pkg/request"
)

const fallbackIntentError = "failed to create payment intent"

// Requester asks the processor-facing endpoint for a payment intent on
// behalf of a checkout. One request per attempt, no retries; a failure
// surfaces straight to the caller.
type Requester struct {
	endpoint string
	client   *http.Client
}

func NewRequester(endpoint string) *Requester {
	return &Requester{endpoint: endpoint, client: otelhttp.DefaultClient}
}

// CreateIntent posts the order-derived amount and category totals for a
// pre-assigned order id. On a non-success response the error body's message
// is surfaced, falling back to a generic message when absent. The success
// payload is returned verbatim.
func (r *Requester) CreateIntent(
	c context.Context,
	orderID uuid.UUID,
	order orderRequest.CreateOrder,
) (map[string]interface{}, error) {
	c, span := otel.Tracer.Start(c, "Requester CreateIntent")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Requester CreateIntent").
		Str(log.KeyOrderID, orderID.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "marshaling intent request").Logger()
	body, err := json.Marshal(request.CreateIntent{
		OrderID:        orderID,
		Amount:         order.Amount(),
		CategoryTotals: order.CategoryTotals,
	})
	if err != nil {
		err = fmt.Errorf("failed marshaling intent request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "sending intent request").Logger()
	logger.Info().Msg("sending intent request")
	req, err := http.NewRequestWithContext(c, http.MethodPost, r.endpoint, bytes.NewBuffer(body))
	if err != nil {
		err = fmt.Errorf("failed creating intent request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	req.Header.Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	resp, err := r.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending intent request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	defer resp.Body.Close()
	logger.Info().Int("statusCode", resp.StatusCode).Msg("sent intent request")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody := struct {
			Error string `json:"error"`
		}{}
		json.NewDecoder(resp.Body).Decode(&errBody)
		message := errBody.Error
		if message == "" {
			message = fallbackIntentError
		}
		err = fmt.Errorf("%s", message)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "decoding intent response").Logger()
	intent := map[string]interface{}{}
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		err = fmt.Errorf("failed decoding intent response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	return intent, nil
}
