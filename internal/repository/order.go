package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ammasidli/storefront/order/pkg/request"
)

type Order struct {
	ID        uuid.UUID      `json:"id"`
	UserID    uuid.UUID      `json:"user_id"`
	Status    request.Status `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type OrderProduct struct {
	ID      uuid.UUID       `json:"id"`
	OrderID uuid.UUID       `json:"order_id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const insertOrder = `
INSERT INTO orders (id, user_id, status)
VALUES ($1, $2, $3)
RETURNING id, user_id, status, created_at, updated_at
`

const insertOrderProduct = `
INSERT INTO order_products (id, order_id, name, price)
VALUES ($1, $2, $3, $4)
`

const findOrderById = `
SELECT id, user_id, status, created_at, updated_at
FROM orders
WHERE id = $1
`

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = now()
WHERE id = $1
`

// InsertOrder writes the order row and one row per purchased unit inside a
// single transaction.
func (q *Queries) InsertOrder(
	c context.Context,
	orderID uuid.UUID,
	param request.CreateOrder,
) (Order, error) {
	tx, err := q.pool.Begin(c)
	if err != nil {
		return Order{}, fmt.Errorf("failed beginning transaction with error=%w", err)
	}
	defer tx.Rollback(c)

	order := Order{}
	err = tx.QueryRow(c, insertOrder, orderID, param.UserID, string(param.Status)).
		Scan(&order.ID, &order.UserID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}

	for _, product := range param.Products {
		_, err = tx.Exec(c, insertOrderProduct, uuid.New(), order.ID, product.Name, product.Price)
		if err != nil {
			return Order{}, fmt.Errorf("failed inserting order product with error=%w", err)
		}
	}

	if err := tx.Commit(c); err != nil {
		return Order{}, fmt.Errorf("failed committing transaction with error=%w", err)
	}
	return order, nil
}

func (q *Queries) FindOrderById(c context.Context, id uuid.UUID) (Order, error) {
	order := Order{}
	err := q.pool.QueryRow(c, findOrderById, id).
		Scan(&order.ID, &order.UserID, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("failed finding order by id=%s with error=%w", id, err)
	}
	return order, nil
}

const findOrderProducts = `
SELECT id, order_id, name, price
FROM order_products
WHERE order_id = $1
ORDER BY name
`

func (q *Queries) FindOrderProducts(c context.Context, orderID uuid.UUID) ([]OrderProduct, error) {
	rows, err := q.pool.Query(c, findOrderProducts, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed finding order products with error=%w", err)
	}
	defer rows.Close()

	products := []OrderProduct{}
	for rows.Next() {
		p := OrderProduct{}
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("failed scanning order product with error=%w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating order products with error=%w", err)
	}
	return products, nil
}

func (q *Queries) UpdateOrderStatus(
	c context.Context,
	id uuid.UUID,
	status request.Status,
) error {
	tag, err := q.pool.Exec(c, updateOrderStatus, id, string(status))
	if err != nil {
		return fmt.Errorf("failed updating order status with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed updating order status: order id=%s not found", id)
	}
	return nil
}
