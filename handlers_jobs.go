package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/muhammadolammi/cvboard/internal/auth"
	"github.com/muhammadolammi/cvboard/internal/database"
	"go.uber.org/zap"
)

const (
	defaultJobsLimit = 20
	maxJobsLimit     = 50
)

type createJobRequest struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (cfg *ApiConfig) handlerCreateJob(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req createJobRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := requireFields(
		field{"title", req.Title},
		field{"company", req.Company},
		field{"description", req.Description},
	); err != nil {
		respondValidation(w, err)
		return
	}

	job, err := cfg.DB.CreateJob(r.Context(), database.CreateJobParams{
		ID:          uuid.New(),
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		Description: req.Description,
		CreatedBy:   userID,
	})
	if err != nil {
		cfg.Logger.Error("create job", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not create job", "")
		return
	}
	writeJSON(w, http.StatusCreated, jobFromDB(job))
}

func (cfg *ApiConfig) handlerListJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultJobsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = min(n, maxJobsLimit)
	}

	rows, err := cfg.DB.ListJobs(r.Context(), int32(limit))
	if err != nil {
		cfg.Logger.Error("list jobs", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not list jobs", "")
		return
	}
	jobs := make([]Job, 0, len(rows))
	for _, j := range rows {
		jobs = append(jobs, jobFromDB(j))
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (cfg *ApiConfig) handlerGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	job, err := cfg.DB.GetJob(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "job not found", "")
		return
	}
	if err != nil {
		cfg.Logger.Error("get job", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load job", "")
		return
	}
	writeJSON(w, http.StatusOK, jobFromDB(job))
}

type applyRequest struct {
	UploadID *uuid.UUID `json:"upload_id"`
}

// handlerApply records an application and queues it for CV matching. The
// body is optional; without an upload the worker uses the saved CV.
func (cfg *ApiConfig) handlerApply(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	jobID, ok := pathUUID(w, r)
	if !ok {
		return
	}
	var req applyRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r.Body, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	if _, err := cfg.DB.GetJob(r.Context(), jobID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusNotFound, "job not found", "")
			return
		}
		cfg.Logger.Error("get job", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load job", "")
		return
	}

	uploadID := uuid.NullUUID{}
	if req.UploadID != nil {
		up, err := cfg.DB.GetUpload(r.Context(), *req.UploadID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && up.UserID != userID) {
			respondError(w, http.StatusNotFound, "upload not found", "")
			return
		}
		if err != nil {
			cfg.Logger.Error("get upload", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "could not load upload", "")
			return
		}
		uploadID = uuid.NullUUID{UUID: up.ID, Valid: true}
	}

	app, err := cfg.DB.CreateApplication(r.Context(), database.CreateApplicationParams{
		ID:       uuid.New(),
		JobID:    jobID,
		UserID:   userID,
		UploadID: uploadID,
	})
	if err != nil {
		cfg.Logger.Error("create application", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not create application", "")
		return
	}

	msg := ApplicationMessage{ApplicationID: app.ID, JobID: jobID, UserID: userID, UploadID: req.UploadID}
	if err := cfg.Publisher.PublishApplication(r.Context(), msg); err != nil {
		cfg.Logger.Error("publish application", zap.String("application_id", app.ID.String()), zap.Error(err))
		if err := cfg.DB.UpdateApplicationStatus(r.Context(), database.UpdateApplicationStatusParams{Status: StatusFailed, ID: app.ID}); err != nil {
			cfg.Logger.Error("mark application failed", zap.String("application_id", app.ID.String()), zap.Error(err))
		}
		respondError(w, http.StatusServiceUnavailable, "could not queue application", "")
		return
	}
	writeJSON(w, http.StatusAccepted, applicationFromDB(app))
}

// handlerGetApplication is visible to the applicant and to the job's poster.
func (cfg *ApiConfig) handlerGetApplication(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	id, ok := pathUUID(w, r)
	if !ok {
		return
	}
	row, err := cfg.DB.GetApplication(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "application not found", "")
		return
	}
	if err != nil {
		cfg.Logger.Error("get application", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load application", "")
		return
	}
	if row.UserID != userID {
		job, err := cfg.DB.GetJob(r.Context(), row.JobID)
		if err != nil || job.CreatedBy != userID {
			respondError(w, http.StatusNotFound, "application not found", "")
			return
		}
	}

	app := applicationFromDB(row)
	res, err := cfg.DB.GetAnalysesResultByApplication(r.Context(), id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		cfg.Logger.Error("get analysis", zap.Error(err))
	default:
		var analysis AnalysesResult
		if err := json.Unmarshal(res.Result, &analysis); err != nil {
			cfg.Logger.Warn("stored analysis unreadable", zap.String("application_id", id.String()), zap.Error(err))
		} else {
			app.Analysis = &analysis
		}
	}
	writeJSON(w, http.StatusOK, app)
}

func pathUUID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id", "")
		return uuid.Nil, false
	}
	return id, true
}
