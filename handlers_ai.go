package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/muhammadolammi/cvboard/internal/generation"
	"github.com/muhammadolammi/cvboard/internal/normalize"
	"github.com/muhammadolammi/cvboard/internal/obs"
	"github.com/muhammadolammi/cvboard/internal/prompt"
	"go.uber.org/zap"
)

// generate runs one blocking generation and counts its outcome.
func (cfg *ApiConfig) generate(ctx context.Context, task string, req prompt.Request) (string, error) {
	raw, err := cfg.Invoker.Generate(ctx, task, prompt.Build(req))
	obs.GenerationCall(task, outcome(err))
	return raw, err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return obs.OutcomeOK
	case errors.Is(err, generation.ErrConfigNotFound):
		return obs.OutcomeBadConfig
	default:
		return obs.OutcomeFailed
	}
}

type achievementsRequest struct {
	Position    string `json:"position"`
	Description string `json:"description"`
}

func (cfg *ApiConfig) handlerSuggestAchievements(w http.ResponseWriter, r *http.Request) {
	var req achievementsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := requireFields(field{"position", req.Position}, field{"description", req.Description}); err != nil {
		respondValidation(w, err)
		return
	}

	raw, err := cfg.generate(r.Context(), generation.TaskSuggestions, achievementsPrompt(req.Position, req.Description))
	if err != nil {
		cfg.respondGenerationError(w, generation.TaskSuggestions, err)
		return
	}

	achievements := normalize.List(raw, normalize.ListOptions{
		MaxItems:        achievementsCount,
		RemoveNumbering: true,
		RemoveBullets:   true,
	})
	if len(achievements) == 0 {
		cfg.logParseFailure(generation.TaskSuggestions, "no usable lines", raw)
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

type skillsRequest struct {
	Position string   `json:"position"`
	Skills   []string `json:"skills"`
}

type skillsResponse struct {
	Suggested    []string          `json:"suggested"`
	Improvements map[string]string `json:"improvements"`
}

// parseSkills splits a skills response into its suggested list and its
// improvements mapping.
func parseSkills(raw string) (skillsResponse, normalize.KeyValueResult, bool) {
	res := skillsResponse{Suggested: []string{}}
	suggested, found := normalize.Section(raw, suggestedMarker)
	if found {
		res.Suggested = normalize.List(suggested, normalize.ListOptions{
			MaxItems:        maxSuggestedSkill,
			RemoveNumbering: true,
			RemoveBullets:   true,
		})
	}
	kv := normalize.KeyValues(raw, improvementMarker)
	res.Improvements = kv.Values
	return res, kv, found
}

func (cfg *ApiConfig) handlerSuggestSkills(w http.ResponseWriter, r *http.Request) {
	var req skillsRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	skills := make([]string, 0, len(req.Skills))
	for _, s := range req.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if err := requireFields(field{"position", req.Position}, field{"skills", strings.Join(skills, "")}); err != nil {
		respondValidation(w, err)
		return
	}

	raw, err := cfg.generate(r.Context(), generation.TaskSkills, skillsPrompt(req.Position, skills))
	if err != nil {
		cfg.respondGenerationError(w, generation.TaskSkills, err)
		return
	}

	res, kv, found := parseSkills(raw)
	if !found {
		cfg.logParseFailure(generation.TaskSkills, "missing "+suggestedMarker+" section", raw)
	}
	if len(kv.Duplicates) > 0 {
		cfg.Logger.Warn("duplicate improvement keys", zap.Strings("keys", kv.Duplicates))
	}
	writeJSON(w, http.StatusOK, res)
}

type alternativesRequest struct {
	Summary  string `json:"summary"`
	Position string `json:"position"`
}

type alternativesResponse struct {
	Alternatives []string `json:"alternatives"`
	Fallback     bool     `json:"fallback"`
}

// parseAlternatives expects a JSON array of exactly alternativesCount
// non-empty strings, optionally fenced.
func parseAlternatives(raw string) ([]string, error) {
	var alts []string
	if err := json.Unmarshal([]byte(CleanJson(raw)), &alts); err != nil {
		return nil, err
	}
	if len(alts) != alternativesCount {
		return nil, errors.New("unexpected number of alternatives")
	}
	for i, a := range alts {
		if alts[i] = strings.TrimSpace(a); alts[i] == "" {
			return nil, errors.New("empty alternative")
		}
	}
	return alts, nil
}

func (cfg *ApiConfig) handlerSummaryAlternatives(w http.ResponseWriter, r *http.Request) {
	var req alternativesRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := requireFields(field{"summary", req.Summary}); err != nil {
		respondValidation(w, err)
		return
	}

	raw, err := cfg.generate(r.Context(), generation.TaskAlternatives, alternativesPrompt(req.Summary, req.Position))
	if err != nil {
		cfg.respondGenerationError(w, generation.TaskAlternatives, err)
		return
	}

	alts, err := parseAlternatives(raw)
	if err != nil {
		cfg.logParseFailure(generation.TaskAlternatives, err.Error(), raw)
		writeJSON(w, http.StatusOK, alternativesResponse{Alternatives: fallbackAlternatives[:], Fallback: true})
		return
	}
	writeJSON(w, http.StatusOK, alternativesResponse{Alternatives: alts})
}

type improveRequest struct {
	Section string `json:"section"`
	Text    string `json:"text"`
	Tone    string `json:"tone"`
}

// handlerImproveStream forwards the provider's output as server-sent events.
// Nothing is written until the first chunk arrives, so a failure before that
// still gets a JSON error response.
func (cfg *ApiConfig) handlerImproveStream(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := requireFields(field{"section", req.Section}, field{"text", req.Text}); err != nil {
		respondValidation(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	started := false
	task := generation.TaskImprovement
	err := cfg.Invoker.Stream(r.Context(), task, prompt.Build(improvePrompt(req.Section, req.Text, req.Tone)), func(chunk string) error {
		if !started {
			w.Header().Set("Content-Type", "text/event-stream")
			w.Header().Set("Cache-Control", "no-cache")
			w.Header().Set("Connection", "keep-alive")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if _, err := w.Write(sseData("", chunk)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	obs.GenerationCall(task, outcome(err))

	if err != nil && !started {
		cfg.respondGenerationError(w, task, err)
		return
	}
	if err != nil {
		cfg.Logger.Error("stream interrupted", zap.String("task", task), zap.Error(err))
		details := "stream interrupted"
		var genErr *generation.Error
		if errors.As(err, &genErr) {
			details = genErr.Details()
		}
		_, _ = w.Write(sseData("error", details))
		flusher.Flush()
		return
	}
	_, _ = w.Write(sseData("done", "[DONE]"))
	flusher.Flush()
}

// sseData encodes payload as one event, one data line per payload line.
func sseData(event, payload string) []byte {
	var b strings.Builder
	if event != "" {
		b.WriteString("event: ")
		b.WriteString(event)
		b.WriteByte('\n')
	}
	for _, line := range strings.Split(payload, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	return []byte(b.String())
}
