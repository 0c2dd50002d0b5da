package service

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// IntentCreator and TransferCreator are the two slices of the processor API
// this service touches; the stripe client satisfies both, tests substitute
// fakes.
type IntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type TransferCreator interface {
	New(params *stripe.TransferParams) (*stripe.Transfer, error)
}

func NewStripeClient(secretKey string) *client.API {
	return client.New(secretKey, nil)
}
