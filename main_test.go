package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/muhammadolammi/cvboard/internal/auth"
	"github.com/muhammadolammi/cvboard/internal/database"
	"github.com/muhammadolammi/cvboard/internal/generation"
	"github.com/muhammadolammi/cvboard/internal/payment"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	mu      sync.Mutex
	text    string
	chunks  []string
	err     error
	prompts []string
}

func (f *fakeProvider) record(req generation.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range req.Messages {
		f.prompts = append(f.prompts, m.Text)
	}
}

func (f *fakeProvider) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeProvider) Generate(_ context.Context, req generation.Request) (string, error) {
	f.record(req)
	return f.text, f.err
}

func (f *fakeProvider) Stream(_ context.Context, req generation.Request, fn func(string) error) error {
	f.record(req)
	for _, c := range f.chunks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return f.err
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *fakeStore) Upload(_ context.Context, key, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return nil
}

func (s *fakeStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.objects[key], nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) URL(key string) string { return "https://files.example.test/" + key }

type fakeGateway struct {
	checkout payment.Checkout
	status   string
	err      error
	last     payment.CheckoutRequest
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (payment.Checkout, error) {
	g.last = req
	return g.checkout, g.err
}

func (g *fakeGateway) Status(context.Context, string) (string, error) {
	return g.status, g.err
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []ApplicationMessage
	err  error
}

func (p *fakePublisher) PublishApplication(_ context.Context, msg ApplicationMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

const testSecret = "test-secret"

func newTestAPI(t *testing.T, p generation.Provider) (*ApiConfig, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	verifier, err := auth.NewVerifier(testSecret, "")
	require.NoError(t, err)

	return &ApiConfig{
		DB:           database.New(db),
		DBConn:       db,
		Invoker:      generation.NewInvoker(generation.DefaultRegistry(), p),
		Storage:      &fakeStore{},
		Payments:     &fakeGateway{},
		Publisher:    &fakePublisher{},
		Auth:         verifier,
		Logger:       zap.NewNop(),
		AIRatePerSec: 100,
		AIRateBurst:  100,
	}, mock
}

func tokenFor(t *testing.T, cfg *ApiConfig, userID string) string {
	t.Helper()
	tok, err := cfg.Auth.Sign(userID, userID+"@example.test", time.Hour)
	require.NoError(t, err)
	return tok
}

// call sends a request through the full router. body is JSON-encoded unless
// it is already a string.
func call(t *testing.T, h http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(v)
	default:
		b, err := json.Marshal(v)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
