package main

import (
	"net/http"
	"time"

	"github.com/muhammadolammi/cvboard/internal/obs"
)

const maxRequestBytes = maxUploadBytes + 1<<20

func (cfg *ApiConfig) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", cfg.handlerHealthz)
	mux.HandleFunc("GET /readyz", cfg.handlerReadyz)
	mux.Handle("GET /metrics", obs.Handler())

	limiter := newIPLimiter(cfg.AIRatePerSec, cfg.AIRateBurst, cfg.TrustedProxies)
	mux.Handle("POST /api/ai/achievements", limiter.wrap(cfg.handlerSuggestAchievements))
	mux.Handle("POST /api/ai/skills", limiter.wrap(cfg.handlerSuggestSkills))
	mux.Handle("POST /api/ai/summary/alternatives", limiter.wrap(cfg.handlerSummaryAlternatives))
	mux.Handle("POST /api/ai/improve", limiter.wrap(cfg.handlerImproveStream))

	mux.Handle("GET /api/cvs/me", cfg.requireAuth(cfg.handlerGetCV))
	mux.Handle("PUT /api/cvs/me", cfg.requireAuth(cfg.handlerSaveCV))
	mux.Handle("POST /api/uploads", cfg.requireAuth(cfg.handlerUpload))

	mux.HandleFunc("GET /api/jobs", cfg.handlerListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", cfg.handlerGetJob)
	mux.Handle("POST /api/jobs", cfg.requireAuth(cfg.handlerCreateJob))
	mux.Handle("POST /api/jobs/{id}/apply", cfg.requireAuth(cfg.handlerApply))
	mux.Handle("GET /api/applications/{id}", cfg.requireAuth(cfg.handlerGetApplication))

	mux.Handle("POST /api/payments", cfg.requireAuth(cfg.handlerCreatePayment))
	mux.Handle("GET /api/payments/{id}", cfg.requireAuth(cfg.handlerGetPayment))

	return obs.Instrument(cfg.logRequests(maxBodyBytes(mux, maxRequestBytes)))
}

func (cfg *ApiConfig) handlerHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (cfg *ApiConfig) handlerReadyz(w http.ResponseWriter, r *http.Request) {
	if cfg.DBConn != nil {
		if err := cfg.DBConn.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// the improve endpoint streams, so writes get more room than reads
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}
