package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AnalysesResult struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Result        json.RawMessage
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Application struct {
	ID        uuid.UUID
	JobID     uuid.UUID
	UserID    string
	UploadID  uuid.NullUUID
	Status    string
	CreatedAt time.Time
}

type Cv struct {
	ID        uuid.UUID
	UserID    string
	Document  json.RawMessage
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Job struct {
	ID          uuid.UUID
	Title       string
	Company     string
	Location    string
	Description string
	CreatedBy   string
	CreatedAt   time.Time
}

type Payment struct {
	ID          uuid.UUID
	UserID      string
	CheckoutID  string
	AmountCents int64
	Currency    string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Upload struct {
	ID               uuid.UUID
	UserID           string
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	StorageProvider  string
	ObjectKey        string
	StorageUrl       string
	UploadStatus     string
	CreatedAt        time.Time
}
