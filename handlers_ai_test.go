package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/muhammadolammi/cvboard/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestAchievementsKeepsFirstThree(t *testing.T) {
	p := &fakeProvider{text: strings.Join([]string{
		"1. Reduje la latencia de la API en un 35%",
		"2. Migré 8 servicios a contenedores",
		"3. Automaticé las pruebas de integración",
		"4. Documenté 40 endpoints REST",
		"5. Formé a 3 desarrolladores junior",
	}, "\n")}
	cfg, _ := newTestAPI(t, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/achievements", achievementsRequest{
		Position:    "Backend Developer",
		Description: "Mantengo APIs REST",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out struct {
		Achievements []string `json:"achievements"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{
		"Reduje la latencia de la API en un 35%",
		"Migré 8 servicios a contenedores",
		"Automaticé las pruebas de integración",
	}, out.Achievements)

	sent := p.lastPrompt()
	assert.Contains(t, sent, "\nPuesto: Backend Developer\nDescripción del trabajo: Mantengo APIs REST\n\nSugiere 3 logros")
}

func TestSuggestAchievementsProviderFailure(t *testing.T) {
	p := &fakeProvider{err: errors.New("dial tcp 10.0.0.1:443: connection refused")}
	cfg, _ := newTestAPI(t, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/achievements", achievementsRequest{
		Position:    "Backend Developer",
		Description: "Mantengo APIs REST",
	}, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "generation failed", body["error"])
	assert.Contains(t, body["details"], "connection refused")
	assert.NotContains(t, body, "achievements")
}

func TestSuggestAchievementsValidation(t *testing.T) {
	p := &fakeProvider{text: "no debería llamarse"}
	cfg, _ := newTestAPI(t, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/achievements", achievementsRequest{Position: "  "}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "validation error", body["error"])
	assert.Contains(t, body["details"], `"position"`)
	assert.Empty(t, p.lastPrompt())

	rec = call(t, cfg.routes(), http.MethodPost, "/api/ai/achievements", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestAchievementsMissingTaskConfig(t *testing.T) {
	p := &fakeProvider{text: "x"}
	cfg, _ := newTestAPI(t, p)
	cfg.Invoker = generation.NewInvoker(generation.Registry{}, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/achievements", achievementsRequest{
		Position:    "QA",
		Description: "Pruebas manuales",
	}, "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "task configuration not found", decodeBody(t, rec)["error"])
	assert.Empty(t, p.lastPrompt())
}

func TestSuggestSkillsSplitsSections(t *testing.T) {
	p := &fakeProvider{text: "SUGERIDAS:\nPython\nDocker\n\nMEJORAS:\nSQL: Especifica el dialecto usado"}
	cfg, _ := newTestAPI(t, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/skills", skillsRequest{
		Position: "Data Engineer",
		Skills:   []string{"SQL", " ", "Excel"},
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out skillsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Python", "Docker"}, out.Suggested)
	assert.Equal(t, map[string]string{"SQL": "Especifica el dialecto usado"}, out.Improvements)
	assert.Contains(t, p.lastPrompt(), "Habilidades actuales: SQL, Excel\n")
}

func TestSuggestSkillsRequiresSkills(t *testing.T) {
	cfg, _ := newTestAPI(t, &fakeProvider{})

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/skills", skillsRequest{
		Position: "Data Engineer",
		Skills:   []string{"", "  "},
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["details"], `"skills"`)
}

func TestParseSkillsWithoutMarkers(t *testing.T) {
	res, kv, found := parseSkills("Te recomiendo aprender Go y Kubernetes.")
	assert.False(t, found)
	assert.Empty(t, res.Suggested)
	assert.NotNil(t, res.Suggested)
	assert.Empty(t, kv.Values)
}

func TestParseSkillsDuplicateImprovements(t *testing.T) {
	res, kv, _ := parseSkills("SUGERIDAS:\nGo\n\nMEJORAS:\nSQL: primera\nSQL: segunda")
	assert.Equal(t, "segunda", res.Improvements["SQL"])
	assert.Equal(t, []string{"SQL"}, kv.Duplicates)
}

func TestSummaryAlternatives(t *testing.T) {
	p := &fakeProvider{text: "```json\n[\"Uno.\", \" Dos. \", \"Tres.\"]\n```"}
	cfg, _ := newTestAPI(t, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/summary/alternatives", alternativesRequest{
		Summary: "Desarrollador con 5 años de experiencia.",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out alternativesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, []string{"Uno.", "Dos.", "Tres."}, out.Alternatives)
	assert.False(t, out.Fallback)
	assert.NotContains(t, p.lastPrompt(), "Puesto:")
}

func TestSummaryAlternativesFallback(t *testing.T) {
	for name, raw := range map[string]string{
		"prose":      "Aquí tienes tres versiones de tu resumen...",
		"too few":    `["Uno.", "Dos."]`,
		"empty item": `["Uno.", "", "Tres."]`,
	} {
		t.Run(name, func(t *testing.T) {
			cfg, _ := newTestAPI(t, &fakeProvider{text: raw})

			rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/summary/alternatives", alternativesRequest{
				Summary:  "Desarrollador con 5 años de experiencia.",
				Position: "Backend Developer",
			}, "")
			require.Equal(t, http.StatusOK, rec.Code)

			var out alternativesResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
			assert.True(t, out.Fallback)
			assert.Equal(t, fallbackAlternatives[:], out.Alternatives)
		})
	}
}

func improveBody() improveRequest {
	return improveRequest{Section: "experiencia", Text: "hice apis en go"}
}

func TestImproveStream(t *testing.T) {
	p := &fakeProvider{chunks: []string{"Desarrollé", " APIs en Go.\nCon pruebas."}}
	cfg, _ := newTestAPI(t, p)

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/improve", improveBody(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		"data: Desarrollé\n\n"+
			"data:  APIs en Go.\ndata: Con pruebas.\n\n"+
			"event: done\ndata: [DONE]\n\n",
		rec.Body.String())
	assert.Contains(t, p.lastPrompt(), "Tono: profesional\n")
}

func TestImproveStreamFailsBeforeFirstChunk(t *testing.T) {
	cfg, _ := newTestAPI(t, &fakeProvider{err: errors.New("quota exceeded")})

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/improve", improveBody(), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "generation failed", body["error"])
	assert.Equal(t, "quota exceeded", body["details"])
}

func TestImproveStreamEmptyResponse(t *testing.T) {
	cfg, _ := newTestAPI(t, &fakeProvider{})

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/improve", improveBody(), "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "generation failed", body["error"])
	assert.Equal(t, generation.ErrEmptyResponse.Error(), body["details"])
	assert.NotContains(t, rec.Body.String(), "[DONE]")
}

func TestImproveStreamFailsMidStream(t *testing.T) {
	cfg, _ := newTestAPI(t, &fakeProvider{chunks: []string{"Desarrollé"}, err: errors.New("connection reset")})

	rec := call(t, cfg.routes(), http.MethodPost, "/api/ai/improve", improveBody(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "data: Desarrollé\n\nevent: error\ndata: connection reset\n\n", rec.Body.String())
}

func TestSSEData(t *testing.T) {
	assert.Equal(t, "data: a\n\n", string(sseData("", "a")))
	assert.Equal(t, "event: x\ndata: a\ndata: b\n\n", string(sseData("x", "a\nb")))
}

func TestAIRateLimit(t *testing.T) {
	cfg, _ := newTestAPI(t, &fakeProvider{text: "Logro"})
	cfg.AIRatePerSec, cfg.AIRateBurst = 0.001, 1
	h := cfg.routes()
	body := achievementsRequest{Position: "QA", Description: "Pruebas"}

	rec := call(t, h, http.MethodPost, "/api/ai/achievements", body, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h, http.MethodPost, "/api/ai/achievements", body, "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate limit exceeded", decodeBody(t, rec)["error"])
}
