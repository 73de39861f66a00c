package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/muhammadolammi/cvboard/internal/auth"
	"github.com/muhammadolammi/cvboard/internal/database"
	"github.com/muhammadolammi/cvboard/internal/storage"
	"go.uber.org/zap"
)

const maxUploadBytes = 5 << 20

func (cfg *ApiConfig) handlerGetCV(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	cv, err := cfg.DB.GetCVByUser(r.Context(), userID)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "cv not found", "")
		return
	}
	if err != nil {
		cfg.Logger.Error("get cv", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not load cv", "")
		return
	}
	writeJSON(w, http.StatusOK, CV{ID: cv.ID, Document: cv.Document, UpdatedAt: cv.UpdatedAt})
}

// handlerSaveCV stores the request body, which must be a JSON object, as the
// user's CV document.
func (cfg *ApiConfig) handlerSaveCV(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read body", err.Error())
		return
	}
	body = bytes.TrimSpace(body)
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil || doc == nil {
		respondError(w, http.StatusBadRequest, "cv document must be a JSON object", "")
		return
	}

	cv, err := cfg.DB.UpsertCV(r.Context(), database.UpsertCVParams{
		ID:       uuid.New(),
		UserID:   userID,
		Document: json.RawMessage(body),
	})
	if err != nil {
		cfg.Logger.Error("save cv", zap.String("user_id", userID), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "could not save cv", "")
		return
	}
	writeJSON(w, http.StatusOK, CV{ID: cv.ID, Document: cv.Document, UpdatedAt: cv.UpdatedAt})
}

// handlerUpload stores a CV file and returns its extracted text.
func (cfg *ApiConfig) handlerUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondValidation(w, &ValidationError{Field: "file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read file", err.Error())
		return
	}
	if len(data) > maxUploadBytes {
		respondError(w, http.StatusRequestEntityTooLarge, "file too large", "maximum size is 5 MiB")
		return
	}
	if len(data) == 0 {
		respondValidation(w, &ValidationError{Field: "file"})
		return
	}

	mime := uploadMime(header.Header.Get("Content-Type"), header.Filename)
	text, err := ExtractCVText(mime, data)
	if errors.Is(err, errUnsupportedType) {
		respondError(w, http.StatusUnsupportedMediaType, "unsupported file type", "use PDF, DOCX or plain text")
		return
	}
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, "could not read document", err.Error())
		return
	}

	key := storage.ObjectKey(userID, header.Filename)
	if err := cfg.Storage.Upload(r.Context(), key, mime, data); err != nil {
		cfg.Logger.Error("upload to storage", zap.String("key", key), zap.Error(err))
		respondError(w, http.StatusBadGateway, "could not store file", "")
		return
	}

	up, err := cfg.DB.CreateUpload(r.Context(), database.CreateUploadParams{
		ID:               uuid.New(),
		UserID:           userID,
		OriginalFilename: header.Filename,
		Mime:             mime,
		SizeBytes:        int64(len(data)),
		StorageProvider:  storage.ProviderName,
		ObjectKey:        key,
		StorageUrl:       cfg.Storage.URL(key),
		UploadStatus:     "uploaded",
	})
	if err != nil {
		cfg.Logger.Error("record upload", zap.String("key", key), zap.Error(err))
		if err := cfg.Storage.Delete(context.WithoutCancel(r.Context()), key); err != nil {
			cfg.Logger.Error("delete orphaned upload", zap.String("key", key), zap.Error(err))
		}
		respondError(w, http.StatusInternalServerError, "could not record upload", "")
		return
	}

	writeJSON(w, http.StatusCreated, Upload{
		ID:        up.ID,
		Filename:  up.OriginalFilename,
		Mime:      up.Mime,
		SizeBytes: up.SizeBytes,
		ObjectKey: up.ObjectKey,
		URL:       up.StorageUrl,
		Text:      text,
		CreatedAt: up.CreatedAt,
	})
}
