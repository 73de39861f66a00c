package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const getCVByUser = `-- name: GetCVByUser :one
SELECT id, user_id, document, created_at, updated_at FROM cvs WHERE user_id=$1
`

func (q *Queries) GetCVByUser(ctx context.Context, userID string) (Cv, error) {
	row := q.db.QueryRowContext(ctx, getCVByUser, userID)
	var i Cv
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const upsertCV = `-- name: UpsertCV :one
INSERT INTO cvs (id, user_id, document)
VALUES ($1, $2, $3)
ON CONFLICT (user_id)
DO UPDATE SET
    document = EXCLUDED.document,
    updated_at = CURRENT_TIMESTAMP
RETURNING id, user_id, document, created_at, updated_at
`

type UpsertCVParams struct {
	ID       uuid.UUID
	UserID   string
	Document json.RawMessage
}

func (q *Queries) UpsertCV(ctx context.Context, arg UpsertCVParams) (Cv, error) {
	row := q.db.QueryRowContext(ctx, upsertCV, arg.ID, arg.UserID, arg.Document)
	var i Cv
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Document,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
