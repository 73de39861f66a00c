package generation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	text   string
	chunks []string
	err    error
	calls  int
	last   Request
}

func (s *stubProvider) Generate(_ context.Context, req Request) (string, error) {
	s.calls++
	s.last = req
	return s.text, s.err
}

func (s *stubProvider) Stream(_ context.Context, req Request, fn func(string) error) error {
	s.calls++
	s.last = req
	for _, c := range s.chunks {
		if err := fn(c); err != nil {
			return err
		}
	}
	return s.err
}

func TestGenerateUsesTaskConfig(t *testing.T) {
	p := &stubProvider{text: "1. uno\n2. dos"}
	inv := NewInvoker(DefaultRegistry(), p)

	out, err := inv.Generate(context.Background(), TaskSuggestions, "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "1. uno\n2. dos", out)
	assert.Equal(t, 1, p.calls)

	cfg := DefaultTasks()[TaskSuggestions]
	assert.Equal(t, cfg.Model, p.last.Model)
	assert.Equal(t, cfg.Temperature, p.last.Temperature)
	assert.Equal(t, cfg.MaxTokens, p.last.MaxTokens)
	assert.Equal(t, []Message{{Role: RoleUser, Text: "prompt text"}}, p.last.Messages)
}

func TestGenerateUnknownTask(t *testing.T) {
	p := &stubProvider{text: "x"}
	_, err := NewInvoker(DefaultRegistry(), p).Generate(context.Background(), "NOPE", "p")
	require.ErrorIs(t, err, ErrConfigNotFound)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
	assert.Zero(t, p.calls, "no provider call for unknown task")
}

func TestGenerateProviderFailure(t *testing.T) {
	netErr := errors.New("dial tcp: connection refused")
	p := &stubProvider{err: netErr}
	_, err := NewInvoker(DefaultRegistry(), p).Generate(context.Background(), TaskSkills, "p")

	require.ErrorIs(t, err, ErrGenerationFailed)
	require.ErrorIs(t, err, netErr)
	var genErr *Error
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, TaskSkills, genErr.Task)
	assert.Equal(t, netErr.Error(), genErr.Details())
	assert.Equal(t, 1, p.calls, "no retries")
}

func TestGenerateEmptyText(t *testing.T) {
	p := &stubProvider{text: "  \n "}
	_, err := NewInvoker(DefaultRegistry(), p).Generate(context.Background(), TaskSkills, "p")
	require.ErrorIs(t, err, ErrGenerationFailed)
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestStreamForwardsChunks(t *testing.T) {
	p := &stubProvider{chunks: []string{"Hola", " mundo", "\n"}}
	var got []string
	err := NewInvoker(DefaultRegistry(), p).Stream(context.Background(), TaskImprovement, "p", func(c string) error {
		got = append(got, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hola", " mundo", "\n"}, got)
}

func TestStreamSinkErrorIsNotGenerationFailure(t *testing.T) {
	sinkErr := errors.New("client went away")
	p := &stubProvider{chunks: []string{"a", "b"}}
	err := NewInvoker(DefaultRegistry(), p).Stream(context.Background(), TaskImprovement, "p", func(string) error {
		return sinkErr
	})
	assert.ErrorIs(t, err, sinkErr)
	assert.NotErrorIs(t, err, ErrGenerationFailed)
}

func TestStreamProviderFailure(t *testing.T) {
	p := &stubProvider{chunks: []string{"a"}, err: errors.New("rate limited")}
	err := NewInvoker(DefaultRegistry(), p).Stream(context.Background(), TaskImprovement, "p", func(string) error { return nil })
	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestStreamWithoutTextFails(t *testing.T) {
	for name, chunks := range map[string][]string{
		"no chunks":  nil,
		"whitespace": {" ", "\n"},
	} {
		t.Run(name, func(t *testing.T) {
			p := &stubProvider{chunks: chunks}
			err := NewInvoker(DefaultRegistry(), p).Stream(context.Background(), TaskImprovement, "p", func(string) error { return nil })
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestNewRegistryValidates(t *testing.T) {
	_, err := NewRegistry(map[string]TaskConfig{"X": {Model: "m", Temperature: 1.5, MaxTokens: 10}})
	assert.Error(t, err)
	_, err = NewRegistry(map[string]TaskConfig{"X": {Temperature: 0.5, MaxTokens: 10}})
	assert.Error(t, err)
	_, err = NewRegistry(map[string]TaskConfig{"X": {Model: "m", Temperature: 0.5}})
	assert.Error(t, err)
}

func TestRegistryIsACopy(t *testing.T) {
	tasks := map[string]TaskConfig{"X": {Model: "m", Temperature: 0.1, MaxTokens: 10}}
	r, err := NewRegistry(tasks)
	require.NoError(t, err)
	tasks["X"] = TaskConfig{Model: "other", Temperature: 0.1, MaxTokens: 10}
	delete(tasks, "X")

	cfg, err := r.Lookup("X")
	require.NoError(t, err)
	assert.Equal(t, "m", cfg.Model)
}

func TestLoadRegistryOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	data := "SUGGESTIONS:\n  model: gemini-2.5-pro\n  temperature: 0.2\n  max_tokens: 300\nCOVER_LETTER:\n  model: gemini-2.5-flash\n  temperature: 0.9\n  max_tokens: 1200\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	r, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultTasks())+1, r.Len())

	cfg, err := r.Lookup(TaskSuggestions)
	require.NoError(t, err)
	assert.Equal(t, TaskConfig{Model: "gemini-2.5-pro", Temperature: 0.2, MaxTokens: 300}, cfg)

	_, err = r.Lookup(TaskSkills)
	assert.NoError(t, err)
}

func TestLoadRegistryEmptyPath(t *testing.T) {
	r, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultTasks()), r.Len())
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
