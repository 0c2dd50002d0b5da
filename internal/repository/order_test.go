package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/ammasidli/storefront/order/pkg/request"
)

func setupPool(t *testing.T, c context.Context) *pgxpool.Pool {
	t.Helper()

	migrations := filepath.Join("..", "..", "migrations")
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join(migrations, "20250810090000_create_table_users.up.sql"),
			filepath.Join(migrations, "20250810090100_create_table_orders.up.sql"),
			filepath.Join(migrations, "20250810090200_create_table_order_products.up.sql"),
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
	if err := pool.Ping(c); err != nil {
		t.Fatalf("failed pinging postgres pool with error: %s", err)
	}
	return pool
}

func seedUser(t *testing.T, c context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	userID := uuid.New()
	_, err := pool.Exec(
		c,
		"insert into users (id, name, email, phone_number) values ($1, $2, $3, $4)",
		userID,
		"+911234567890",
		"911234567890@ammasidli.in",
		"+911234567890",
	)
	require.NoError(t, err)
	return userID
}

func TestInsertOrderPersistsOrderAndProducts(t *testing.T) {
	c := context.Background()
	pool := setupPool(t, c)
	queries := New(pool)
	userID := seedUser(t, c, pool)

	orderID := uuid.New()
	order, err := queries.InsertOrder(c, orderID, request.CreateOrder{
		UserID: userID,
		Products: []request.Product{
			{Name: "Plain Idli (M)", Price: decimal.RequireFromString("20")},
			{Name: "Plain Idli (M)", Price: decimal.RequireFromString("20")},
			{Name: "Filter Coffee", Price: decimal.RequireFromString("25")},
		},
		Status: request.StatusPending,
	})
	require.NoError(t, err)
	assert.EqualValues(t, orderID, order.ID)
	assert.EqualValues(t, userID, order.UserID)
	assert.EqualValues(t, request.StatusPending, order.Status)

	found, err := queries.FindOrderById(c, orderID)
	require.NoError(t, err)
	assert.EqualValues(t, order.ID, found.ID)
	assert.EqualValues(t, request.StatusPending, found.Status)

	products, err := queries.FindOrderProducts(c, orderID)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.EqualValues(t, "Filter Coffee", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("25")))
	assert.EqualValues(t, "Plain Idli (M)", products[1].Name)
	assert.EqualValues(t, "Plain Idli (M)", products[2].Name)
}

func TestUpdateOrderStatus(t *testing.T) {
	c := context.Background()
	pool := setupPool(t, c)
	queries := New(pool)
	userID := seedUser(t, c, pool)

	orderID := uuid.New()
	_, err := queries.InsertOrder(c, orderID, request.CreateOrder{
		UserID:   userID,
		Products: []request.Product{{Name: "Plain Idli", Price: decimal.RequireFromString("40")}},
		Status:   request.StatusPending,
	})
	require.NoError(t, err)

	require.NoError(t, queries.UpdateOrderStatus(c, orderID, request.StatusPaid))

	found, err := queries.FindOrderById(c, orderID)
	require.NoError(t, err)
	assert.EqualValues(t, request.StatusPaid, found.Status)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	c := context.Background()
	pool := setupPool(t, c)
	queries := New(pool)

	err := queries.UpdateOrderStatus(c, uuid.New(), request.StatusPaid)

	assert.Error(t, err)
}
