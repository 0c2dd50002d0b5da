package notification

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/ammasidli/storefront/internal/log"
)

// Sender delivers a one-time code to a phone number.
type Sender interface {
	Send(c context.Context, phoneNumber string, code string) error
}

// LogSender writes the code to the application log instead of an SMS
// gateway. It stands in for a real provider in development.
type LogSender struct {
	sender string
}

func NewLogSender(sender string) LogSender {
	return LogSender{sender: sender}
}

func (s LogSender) Send(c context.Context, phoneNumber string, code string) error {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "LogSender Send").
		Str(log.KeyPhoneNumber, phoneNumber).
		Logger()

	logger.Info().
		Str("sender", s.sender).
		Str("code", code).
		Msg("sending one-time code")

	return nil
}
