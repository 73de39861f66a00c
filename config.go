package main

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"

	"github.com/muhammadolammi/cvboard/internal/payment"
	"github.com/muhammadolammi/cvboard/internal/storage"
)

type serverEnv struct {
	Port         string
	AppEnv       string
	DBUrl        string
	RabbitMQUrl  string
	GoogleAPIKey string
	TaskConfig   string
	AuthSecret   string
	AuthIssuer   string
	R2           storage.R2Config
	Payment      payment.Config
	AIRatePerSec   float64
	AIRateBurst    int
	TrustedProxies []netip.Prefix
}

type workerEnv struct {
	AppEnv       string
	DBUrl        string
	RabbitMQUrl  string
	GoogleAPIKey string
	MatchModel   string
	Workers      int
	R2           storage.R2Config
}

// envReader collects every missing required key so startup reports them all
// at once.
type envReader struct {
	errs []error
}

func (e *envReader) required(key string) string {
	v := os.Getenv(key)
	if v == "" {
		e.errs = append(e.errs, fmt.Errorf("empty %s in environment", key))
	}
	return v
}

func (e *envReader) optional(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) positiveInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s must be a positive integer", key))
		return def
	}
	return n
}

func (e *envReader) positiveFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		e.errs = append(e.errs, fmt.Errorf("%s must be a positive number", key))
		return def
	}
	return f
}

func (e *envReader) proxies(key string) []netip.Prefix {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	p, err := parseTrustedProxies(v)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return nil
	}
	return p
}

func (e *envReader) r2() storage.R2Config {
	return storage.R2Config{
		AccountID:     e.required("R2_ACCOUNT_ID"),
		Bucket:        e.required("R2_BUCKET"),
		AccessKey:     e.required("R2_ACCESS_KEY"),
		SecretKey:     e.required("R2_SECRET_KEY"),
		PublicBaseURL: e.optional("R2_PUBLIC_URL", ""),
	}
}

func (e *envReader) err() error {
	return errors.Join(e.errs...)
}

func loadServerEnv() (serverEnv, error) {
	e := &envReader{}
	cfg := serverEnv{
		Port:         e.optional("PORT", "8080"),
		AppEnv:       e.optional("APP_ENV", "production"),
		DBUrl:        e.required("DB_URL"),
		RabbitMQUrl:  e.required("RABBITMQ_URL"),
		GoogleAPIKey: e.required("GOOGLE_API_KEY"),
		TaskConfig:   e.optional("TASK_CONFIG_PATH", ""),
		AuthSecret:   e.required("AUTH_SECRET"),
		AuthIssuer:   e.optional("AUTH_ISSUER", ""),
		R2:           e.r2(),
		Payment: payment.Config{
			AccessToken:     e.required("PAYMENT_ACCESS_TOKEN"),
			NotificationURL: e.optional("PAYMENT_NOTIFICATION_URL", ""),
		},
		AIRatePerSec:   e.positiveFloat("AI_RATE_PER_SEC", 1),
		AIRateBurst:    e.positiveInt("AI_RATE_BURST", 5),
		TrustedProxies: e.proxies("TRUSTED_PROXIES"),
	}
	return cfg, e.err()
}

func loadWorkerEnv() (workerEnv, error) {
	e := &envReader{}
	cfg := workerEnv{
		AppEnv:       e.optional("APP_ENV", "production"),
		DBUrl:        e.required("DB_URL"),
		RabbitMQUrl:  e.required("RABBITMQ_URL"),
		GoogleAPIKey: e.required("GOOGLE_API_KEY"),
		MatchModel:   e.optional("MATCH_MODEL", defaultMatchModel),
		Workers:      e.positiveInt("WORKER_COUNT", 3),
		R2:           e.r2(),
	}
	return cfg, e.err()
}
