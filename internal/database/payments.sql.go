package database

import (
	"context"

	"github.com/google/uuid"
)

const createPayment = `-- name: CreatePayment :one
INSERT INTO payments (id, user_id, checkout_id, amount_cents, currency, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, user_id, checkout_id, amount_cents, currency, status, created_at, updated_at
`

type CreatePaymentParams struct {
	ID          uuid.UUID
	UserID      string
	CheckoutID  string
	AmountCents int64
	Currency    string
	Status      string
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRowContext(ctx, createPayment,
		arg.ID,
		arg.UserID,
		arg.CheckoutID,
		arg.AmountCents,
		arg.Currency,
		arg.Status,
	)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CheckoutID,
		&i.AmountCents,
		&i.Currency,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPayment = `-- name: GetPayment :one
SELECT id, user_id, checkout_id, amount_cents, currency, status, created_at, updated_at FROM payments WHERE id=$1
`

func (q *Queries) GetPayment(ctx context.Context, id uuid.UUID) (Payment, error) {
	row := q.db.QueryRowContext(ctx, getPayment, id)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CheckoutID,
		&i.AmountCents,
		&i.Currency,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updatePaymentStatus = `-- name: UpdatePaymentStatus :one
UPDATE payments
SET status=$1, updated_at=CURRENT_TIMESTAMP
WHERE id=$2
RETURNING id, user_id, checkout_id, amount_cents, currency, status, created_at, updated_at
`

type UpdatePaymentStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error) {
	row := q.db.QueryRowContext(ctx, updatePaymentStatus, arg.Status, arg.ID)
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CheckoutID,
		&i.AmountCents,
		&i.Currency,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
