package database

import (
	"context"

	"github.com/google/uuid"
)

const createUpload = `-- name: CreateUpload :one
INSERT INTO uploads (id, user_id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, user_id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at
`

type CreateUploadParams struct {
	ID               uuid.UUID
	UserID           string
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	StorageUrl       string
	UploadStatus     string
}

func (q *Queries) CreateUpload(ctx context.Context, arg CreateUploadParams) (Upload, error) {
	row := q.db.QueryRowContext(ctx, createUpload,
		arg.ID,
		arg.UserID,
		arg.OriginalFilename,
		arg.Mime,
		arg.SizeBytes,
		arg.StorageProvider,
		arg.ObjectKey,
		arg.StorageUrl,
		arg.UploadStatus,
	)
	var i Upload
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.StorageUrl,
		&i.UploadStatus,
		&i.CreatedAt,
	)
	return i, err
}

const getUpload = `-- name: GetUpload :one
SELECT id, user_id, original_filename, mime, size_bytes, storage_provider, object_key, storage_url, upload_status, created_at FROM uploads WHERE id=$1
`

func (q *Queries) GetUpload(ctx context.Context, id uuid.UUID) (Upload, error) {
	row := q.db.QueryRowContext(ctx, getUpload, id)
	var i Upload
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.OriginalFilename,
		&i.Mime,
		&i.SizeBytes,
		&i.StorageProvider,
		&i.ObjectKey,
		&i.StorageUrl,
		&i.UploadStatus,
		&i.CreatedAt,
	)
	return i, err
}
