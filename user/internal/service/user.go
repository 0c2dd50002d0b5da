package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/ammasidli/storefront/internal/common"
	"github.com/ammasidli/storefront/internal/config"
	inErrors "github.com/ammasidli/storefront/internal/errors"
	"github.com/ammasidli/storefront/internal/log"
	"github.com/ammasidli/storefront/internal/repository"
	"github.com/ammasidli/storefront/notification"
	inOtel "github.com/ammasidli/storefront/user/internal/otel"
)

const otpTTL = 5 * time.Minute

type UserService struct {
	queries *repository.Queries
	cache   *redis.Client
	sender  notification.Sender
	config  config.Application
	sms     config.Sms
}

func NewUserService(
	queries *repository.Queries,
	cache *redis.Client,
	sender notification.Sender,
	cfg config.Application,
	sms config.Sms,
) *UserService {
	return &UserService{queries: queries, cache: cache, sender: sender, config: cfg, sms: sms}
}

func otpKey(phoneNumber string) string {
	return fmt.Sprintf("otp:%s", phoneNumber)
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed generating one-time code with error=%w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func (u *UserService) RequestOtp(c context.Context, phoneNumber string) error {
	c, span := inOtel.Tracer.Start(c, "UserService RequestOtp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService RequestOtp").
		Str(log.KeyPhoneNumber, phoneNumber).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "generating code").Logger()
	code, err := generateCode()
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "hashing code").Logger()
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing one-time code with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "storing code").Logger()
	err = u.cache.Set(c, otpKey(phoneNumber), string(hashed), otpTTL).Err()
	if err != nil {
		err = fmt.Errorf("failed storing one-time code with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}

	logger = logger.With().Str(log.KeyProcess, "sending code").Logger()
	c = logger.WithContext(c)
	if err := u.sender.Send(c, phoneNumber, code); err != nil {
		err = fmt.Errorf("failed sending one-time code with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("sent one-time code")

	return nil
}

// VerifyOtp checks the submitted code against the stored hash, deletes it
// so the code is single use, and signs in the user. A first-time caller
// gets a placeholder profile derived from their phone number; they can
// update it later.
func (u *UserService) VerifyOtp(
	c context.Context,
	phoneNumber string,
	code string,
) (string, repository.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService VerifyOtp")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService VerifyOtp").
		Str(log.KeyPhoneNumber, phoneNumber).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "loading stored code").Logger()
	hashed, err := u.cache.Get(c, otpKey(phoneNumber)).Result()
	if errors.Is(err, redis.Nil) {
		inErrors.HandleError(inErrors.ErrOtpNotFound, span)
		logger.Error().Err(inErrors.ErrOtpNotFound).Msg(inErrors.ErrOtpNotFound.Error())
		return "", repository.User{}, inErrors.ErrOtpNotFound
	} else if err != nil {
		err = fmt.Errorf("failed loading stored one-time code with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", repository.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "verifying code").Logger()
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(code)); err != nil {
		inErrors.HandleError(inErrors.ErrOtpMismatch, span)
		logger.Error().Err(inErrors.ErrOtpMismatch).Msg(inErrors.ErrOtpMismatch.Error())
		return "", repository.User{}, inErrors.ErrOtpMismatch
	}

	logger = logger.With().Str(log.KeyProcess, "deleting stored code").Logger()
	if err := u.cache.Del(c, otpKey(phoneNumber)).Err(); err != nil {
		err = fmt.Errorf("failed deleting stored one-time code with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", repository.User{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "upserting user").Logger()
	email := fmt.Sprintf("%s@%s", strings.TrimPrefix(phoneNumber, "+"), u.sms.EmailDomain)
	user, err := u.queries.UpsertUserByPhone(c, phoneNumber, email, phoneNumber)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", repository.User{}, err
	}

	logger = logger.With().
		Str(log.KeyProcess, "signing token").
		Str(log.KeyUserID, user.ID.String()).
		Logger()
	token, err := common.CreateToken(user.ID, u.config)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", repository.User{}, err
	}
	logger.Info().Msg("signed in user")

	return token, user, nil
}
