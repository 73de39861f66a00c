package database

import (
	"context"

	"github.com/google/uuid"
)

const createApplication = `-- name: CreateApplication :one
INSERT INTO applications (id, job_id, user_id, upload_id, status)
VALUES ($1, $2, $3, $4, 'queued')
RETURNING id, job_id, user_id, upload_id, status, created_at
`

type CreateApplicationParams struct {
	ID       uuid.UUID
	JobID    uuid.UUID
	UserID   string
	UploadID uuid.NullUUID
}

func (q *Queries) CreateApplication(ctx context.Context, arg CreateApplicationParams) (Application, error) {
	row := q.db.QueryRowContext(ctx, createApplication,
		arg.ID,
		arg.JobID,
		arg.UserID,
		arg.UploadID,
	)
	var i Application
	err := row.Scan(
		&i.ID,
		&i.JobID,
		&i.UserID,
		&i.UploadID,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const getApplication = `-- name: GetApplication :one
SELECT id, job_id, user_id, upload_id, status, created_at FROM applications WHERE id=$1
`

func (q *Queries) GetApplication(ctx context.Context, id uuid.UUID) (Application, error) {
	row := q.db.QueryRowContext(ctx, getApplication, id)
	var i Application
	err := row.Scan(
		&i.ID,
		&i.JobID,
		&i.UserID,
		&i.UploadID,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const updateApplicationStatus = `-- name: UpdateApplicationStatus :exec
UPDATE applications
SET status=$1
WHERE id=$2
`

type UpdateApplicationStatusParams struct {
	Status string
	ID     uuid.UUID
}

func (q *Queries) UpdateApplicationStatus(ctx context.Context, arg UpdateApplicationStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateApplicationStatus, arg.Status, arg.ID)
	return err
}
