package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ammasidli/storefront/internal/common"
	"github.com/ammasidli/storefront/internal/config"
	inErrors "github.com/ammasidli/storefront/internal/errors"
	"github.com/ammasidli/storefront/internal/repository"
)

type recordingSender struct {
	phoneNumbers []string
	codes        []string
}

func (s *recordingSender) Send(_ context.Context, phoneNumber string, code string) error {
	s.phoneNumbers = append(s.phoneNumbers, phoneNumber)
	s.codes = append(s.codes, code)
	return nil
}

func setupUserService(t *testing.T, c context.Context) (*UserService, *recordingSender) {
	t.Helper()

	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "..", "migrations", "20250810090000_create_table_users.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}
	pool, err := pgxpool.New(c, connStr)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	t.Cleanup(pool.Close)

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	cache := redis.NewClient(redisOpt)
	t.Cleanup(func() { cache.Close() })

	sender := &recordingSender{}
	svc := NewUserService(
		repository.New(pool),
		cache,
		sender,
		config.Application{SecretKey: "test-secret"},
		config.Sms{Sender: "AMMASIDLI", EmailDomain: "ammasidli.in"},
	)
	return svc, sender
}

func TestOtpSignInFlow(t *testing.T) {
	c := context.Background()
	svc, sender := setupUserService(t, c)
	phone := "+911234567890"

	require.NoError(t, svc.RequestOtp(c, phone))
	require.Len(t, sender.codes, 1)
	assert.Len(t, sender.codes[0], 6)
	assert.EqualValues(t, phone, sender.phoneNumbers[0])

	token, user, err := svc.VerifyOtp(c, phone, sender.codes[0])
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.EqualValues(t, phone, user.PhoneNumber)
	// placeholder profile until the user updates it
	assert.EqualValues(t, phone, user.Name)
	assert.EqualValues(t, "911234567890@ammasidli.in", user.Email)

	parsed, err := common.VerifyToken(c, token, config.Application{SecretKey: "test-secret"})
	require.NoError(t, err)
	subject, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.EqualValues(t, user.ID.String(), subject)
}

func TestOtpSignInReturnsSameUser(t *testing.T) {
	c := context.Background()
	svc, sender := setupUserService(t, c)
	phone := "+911234567890"

	require.NoError(t, svc.RequestOtp(c, phone))
	_, first, err := svc.VerifyOtp(c, phone, sender.codes[0])
	require.NoError(t, err)

	require.NoError(t, svc.RequestOtp(c, phone))
	_, second, err := svc.VerifyOtp(c, phone, sender.codes[1])
	require.NoError(t, err)

	assert.EqualValues(t, first.ID, second.ID)
}

func TestVerifyOtpWrongCode(t *testing.T) {
	c := context.Background()
	svc, sender := setupUserService(t, c)
	phone := "+911234567890"

	require.NoError(t, svc.RequestOtp(c, phone))
	wrong := "000000"
	if sender.codes[0] == wrong {
		wrong = "000001"
	}

	_, _, err := svc.VerifyOtp(c, phone, wrong)

	assert.ErrorIs(t, err, inErrors.ErrOtpMismatch)
}

func TestVerifyOtpCodeIsSingleUse(t *testing.T) {
	c := context.Background()
	svc, sender := setupUserService(t, c)
	phone := "+911234567890"

	require.NoError(t, svc.RequestOtp(c, phone))
	_, _, err := svc.VerifyOtp(c, phone, sender.codes[0])
	require.NoError(t, err)

	_, _, err = svc.VerifyOtp(c, phone, sender.codes[0])

	assert.ErrorIs(t, err, inErrors.ErrOtpNotFound)
}

func TestVerifyOtpWithoutRequest(t *testing.T) {
	c := context.Background()
	svc, _ := setupUserService(t, c)

	_, _, err := svc.VerifyOtp(c, "+911234567890", "123456")

	assert.ErrorIs(t, err, inErrors.ErrOtpNotFound)
}
