package http

const (
	KeyHeaderContentType       = "Content-Type"
	KeyHeaderRequestID         = "X-Request-Id"
	KeyHeaderStripeSignature   = "Stripe-Signature"
	ValueHeaderApplicationJson = "application/json"
)
