package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth        = errors.New("missing authorization")
	ErrEmptySubject     = errors.New("missing subject")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrMissingSignature = errors.New("missing stripe-signature header")
	ErrOtpNotFound      = errors.New("otp not found or expired")
	ErrOtpMismatch      = errors.New("otp mismatch")
	ErrMalformedPrice   = errors.New("malformed price")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
