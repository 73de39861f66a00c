package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/muhammadolammi/cvboard/internal/auth"
	"github.com/muhammadolammi/cvboard/internal/database"
	"github.com/muhammadolammi/cvboard/internal/generation"
	"github.com/muhammadolammi/cvboard/internal/payment"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
)

// ObjectStore keeps uploaded files.
type ObjectStore interface {
	Upload(ctx context.Context, key, mime string, data []byte) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// PaymentGateway creates and queries checkouts.
type PaymentGateway interface {
	CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.Checkout, error)
	Status(ctx context.Context, reference string) (string, error)
}

// Publisher hands applications to the match workers.
type Publisher interface {
	PublishApplication(ctx context.Context, msg ApplicationMessage) error
}

type ApiConfig struct {
	DB        *database.Queries
	DBConn    *sql.DB
	Invoker   *generation.Invoker
	Storage   ObjectStore
	Payments  PaymentGateway
	Publisher Publisher
	Auth      *auth.Verifier
	Logger    *zap.Logger

	// AI endpoints are limited per client IP.
	AIRatePerSec float64
	AIRateBurst  int

	// X-Forwarded-For is only honoured from these peers.
	TrustedProxies []netip.Prefix
}

type WorkerConfig struct {
	DB                  *database.Queries
	Storage             ObjectStore
	RabbitConn          *amqp.Connection
	RABBITMQUrl         string
	AgentRunner         *runner.Runner
	AgentSessionService session.Service
	AgentName           string
	Logger              *zap.Logger
}

// ApplicationMessage is the body published on the applications queue.
type ApplicationMessage struct {
	ApplicationID uuid.UUID  `json:"application_id"`
	JobID         uuid.UUID  `json:"job_id"`
	UserID        string     `json:"user_id"`
	UploadID      *uuid.UUID `json:"upload_id,omitempty"`
}

type AnalysesResult struct {
	CandidateEmail      string   `json:"candidate_email"`
	MatchScore          int      `json:"match_score"`
	RelevantExperiences []string `json:"relevant_experiences"`
	RelevantSkills      []string `json:"relevant_skills"`
	MissingSkills       []string `json:"missing_skills"`
	Summary             string   `json:"summary"`
	Recomendation       string   `json:"recommendation"`
	// Error result entry
	IsErrorResult bool   `json:"is_error_result"`
	Error         string `json:"error,omitempty"`
}

// Application statuses.
const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Job struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func jobFromDB(j database.Job) Job {
	return Job{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.Company,
		Location:    j.Location,
		Description: j.Description,
		CreatedBy:   j.CreatedBy,
		CreatedAt:   j.CreatedAt,
	}
}

type Application struct {
	ID        uuid.UUID       `json:"id"`
	JobID     uuid.UUID       `json:"job_id"`
	UserID    string          `json:"user_id"`
	UploadID  *uuid.UUID      `json:"upload_id,omitempty"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Analysis  *AnalysesResult `json:"analysis,omitempty"`
}

func applicationFromDB(a database.Application) Application {
	app := Application{
		ID:        a.ID,
		JobID:     a.JobID,
		UserID:    a.UserID,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
	if a.UploadID.Valid {
		id := a.UploadID.UUID
		app.UploadID = &id
	}
	return app
}

type CV struct {
	ID        uuid.UUID       `json:"id"`
	Document  json.RawMessage `json:"document"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Upload struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Mime      string    `json:"mime"`
	SizeBytes int64     `json:"size_bytes"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type Payment struct {
	ID          uuid.UUID `json:"id"`
	CheckoutID  string    `json:"checkout_id"`
	CheckoutURL string    `json:"checkout_url,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func paymentFromDB(p database.Payment) Payment {
	return Payment{
		ID:          p.ID,
		CheckoutID:  p.CheckoutID,
		AmountCents: p.AmountCents,
		Currency:    p.Currency,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}
