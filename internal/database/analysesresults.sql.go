package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createOrUpdateAnalysesResult = `-- name: CreateOrUpdateAnalysesResult :exec
INSERT INTO analyses_results (
result, application_id)
VALUES ( $1, $2)
ON CONFLICT (application_id)
DO UPDATE SET
    result = EXCLUDED.result,
    updated_at = CURRENT_TIMESTAMP
`

type CreateOrUpdateAnalysesResultParams struct {
	Result        json.RawMessage
	ApplicationID uuid.UUID
}

func (q *Queries) CreateOrUpdateAnalysesResult(ctx context.Context, arg CreateOrUpdateAnalysesResultParams) error {
	_, err := q.db.ExecContext(ctx, createOrUpdateAnalysesResult, arg.Result, arg.ApplicationID)
	return err
}

const getAnalysesResultByApplication = `-- name: GetAnalysesResultByApplication :one
SELECT id, application_id, result, created_at, updated_at FROM analyses_results WHERE application_id=$1
`

func (q *Queries) GetAnalysesResultByApplication(ctx context.Context, applicationID uuid.UUID) (AnalysesResult, error) {
	row := q.db.QueryRowContext(ctx, getAnalysesResultByApplication, applicationID)
	var i AnalysesResult
	err := row.Scan(
		&i.ID,
		&i.ApplicationID,
		&i.Result,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
