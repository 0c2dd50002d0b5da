package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TransferStatusPending   = "PENDING"
	TransferStatusCompleted = "COMPLETED"
)

// TransferLedger records per-category transfer progress for one order so a
// retried webhook skips transfers that already went out. Rows are keyed
// (order_id, category).
type TransferLedger struct {
	pool *pgxpool.Pool
}

func NewTransferLedger(pool *pgxpool.Pool) *TransferLedger {
	return &TransferLedger{pool: pool}
}

const findTransferStatus = `
SELECT status
FROM transfers
WHERE order_id = $1 AND category = $2
`

const upsertPendingTransfer = `
INSERT INTO transfers (id, order_id, category, destination, amount_minor, status)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (order_id, category)
DO UPDATE SET destination = $4, amount_minor = $5, updated_at = now()
`

const completeTransfer = `
UPDATE transfers
SET status = $3, stripe_transfer_id = $4, updated_at = now()
WHERE order_id = $1 AND category = $2
`

func (l *TransferLedger) IsCompleted(
	c context.Context,
	orderID string,
	category string,
) (bool, error) {
	var status string
	err := l.pool.QueryRow(c, findTransferStatus, orderID, category).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed finding transfer status with error=%w", err)
	}
	return status == TransferStatusCompleted, nil
}

func (l *TransferLedger) MarkPending(
	c context.Context,
	orderID string,
	category string,
	destination string,
	amountMinor int64,
) error {
	_, err := l.pool.Exec(
		c,
		upsertPendingTransfer,
		uuid.New(),
		orderID,
		category,
		destination,
		amountMinor,
		TransferStatusPending,
	)
	if err != nil {
		return fmt.Errorf("failed marking transfer pending with error=%w", err)
	}
	return nil
}

func (l *TransferLedger) MarkCompleted(
	c context.Context,
	orderID string,
	category string,
	transferID string,
) error {
	tag, err := l.pool.Exec(
		c,
		completeTransfer,
		orderID,
		category,
		TransferStatusCompleted,
		transferID,
	)
	if err != nil {
		return fmt.Errorf("failed marking transfer completed with error=%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf(
			"failed marking transfer completed: no ledger row for orderId=%s category=%s",
			orderID,
			category,
		)
	}
	return nil
}
