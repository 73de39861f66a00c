// Package generation resolves task configurations and calls the
// text-generation provider.
package generation

import (
	"context"
	"strings"
)

// Roles of message turns.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message is one role-tagged turn of a conversation.
type Message struct {
	Role string
	Text string
}

// Request is what a Provider receives for a single call.
type Request struct {
	Model       string
	Temperature float32
	MaxTokens   int32
	Messages    []Message
}

// Provider performs text generation. Stream calls fn for every chunk in
// order and stops at the first error fn returns.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Stream(ctx context.Context, req Request, fn func(chunk string) error) error
}

// Invoker sends prompts to a Provider using the registry's task parameters.
// It does not retry and imposes no deadline of its own.
type Invoker struct {
	tasks    Registry
	provider Provider
}

func NewInvoker(tasks Registry, provider Provider) *Invoker {
	return &Invoker{tasks: tasks, provider: provider}
}

func (i *Invoker) request(task, prompt string) (Request, error) {
	cfg, err := i.tasks.Lookup(task)
	if err != nil {
		return Request{}, err
	}
	return Request{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Messages:    []Message{{Role: RoleUser, Text: prompt}},
	}, nil
}

// Generate makes one blocking provider call and returns the raw text.
func (i *Invoker) Generate(ctx context.Context, task, prompt string) (string, error) {
	req, err := i.request(task, prompt)
	if err != nil {
		return "", err
	}
	text, err := i.provider.Generate(ctx, req)
	if err != nil {
		return "", &Error{Task: task, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Task: task, Err: ErrEmptyResponse}
	}
	return text, nil
}

// Stream makes one streaming provider call, forwarding chunks to fn
// verbatim. An error returned by fn ends the stream and is returned as is.
// A stream that carries no text fails like an empty Generate.
func (i *Invoker) Stream(ctx context.Context, task, prompt string, fn func(chunk string) error) error {
	req, err := i.request(task, prompt)
	if err != nil {
		return err
	}
	var sinkErr error
	gotText := false
	err = i.provider.Stream(ctx, req, func(chunk string) error {
		if strings.TrimSpace(chunk) != "" {
			gotText = true
		}
		if err := fn(chunk); err != nil {
			sinkErr = err
			return err
		}
		return nil
	})
	if sinkErr != nil {
		return sinkErr
	}
	if err != nil {
		return &Error{Task: task, Err: err}
	}
	if !gotText {
		return &Error{Task: task, Err: ErrEmptyResponse}
	}
	return nil
}
