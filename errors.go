package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/muhammadolammi/cvboard/internal/generation"
	"github.com/muhammadolammi/cvboard/internal/obs"
	"go.uber.org/zap"
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q is required", e.Field)
}

type field struct {
	name  string
	value string
}

// requireFields returns a ValidationError for the first empty field.
func requireFields(fields ...field) error {
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &ValidationError{Field: f.name}
		}
	}
	return nil
}

func respondValidation(w http.ResponseWriter, err error) {
	respondError(w, http.StatusBadRequest, "validation error", err.Error())
}

// respondGenerationError maps an Invoker error to the JSON error shape.
func (cfg *ApiConfig) respondGenerationError(w http.ResponseWriter, task string, err error) {
	var genErr *generation.Error
	switch {
	case errors.Is(err, generation.ErrConfigNotFound):
		cfg.Logger.Error("task config missing", zap.String("task", task), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "task configuration not found", "")
	case errors.As(err, &genErr):
		cfg.Logger.Error("generation failed", zap.String("task", task), zap.Error(genErr.Err))
		respondError(w, http.StatusInternalServerError, "generation failed", genErr.Details())
	default:
		cfg.Logger.Error("generation error", zap.String("task", task), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error", "")
	}
}

// logParseFailure records a provider response whose shape could not be used.
// It is kept apart from transport failures in both logs and metrics.
func (cfg *ApiConfig) logParseFailure(task, reason, raw string) {
	obs.NormalizationFallback(task)
	cfg.Logger.Warn("parse_failure",
		zap.String("task", task),
		zap.String("reason", reason),
		zap.Int("raw_len", len(raw)),
	)
}
