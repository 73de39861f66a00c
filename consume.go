package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/muhammadolammi/cvboard/internal/database"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/session"
	"google.golang.org/genai"
)

var errNoCV = errors.New("applicant has no saved cv")

// retry retries fn up to attempts times with linear backoff.
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(time.Duration(500*(i+1)) * time.Millisecond)
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func aggregateResult(resultStr string, hasError bool, errorMsg string) AnalysesResult {
	result := AnalysesResult{}
	switch {
	case hasError:
		result.IsErrorResult = true
		result.Error = errorMsg

	case strings.TrimSpace(resultStr) == "":
		result.IsErrorResult = true
		result.Error = "empty response from agent"

	default:
		cleaned := CleanJson(resultStr)

		if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
			result = AnalysesResult{
				IsErrorResult: true,
				Error:         "json unmarshal error: " + err.Error(),
			}
		}
	}
	return result
}

func analysisInput(job database.Job, cvText string) string {
	return fmt.Sprintf(
		"Job Title:\n%s\n\nCompany:\n%s\n\nJob Description:\n%s\n\nCV:\n%s",
		job.Title,
		job.Company,
		job.Description,
		cvText,
	)
}

// cvText returns the text the applicant applied with: the uploaded file when
// the application references one, the saved CV document otherwise.
func (workerConfig *WorkerConfig) cvText(ctx context.Context, msg ApplicationMessage) (string, error) {
	if msg.UploadID != nil {
		up, err := workerConfig.DB.GetUpload(ctx, *msg.UploadID)
		if err != nil {
			return "", fmt.Errorf("get upload: %w", err)
		}
		fileBytes, err := retry(3, func() ([]byte, error) {
			return workerConfig.Storage.Download(ctx, up.ObjectKey)
		})
		if err != nil {
			return "", fmt.Errorf("file download error: %w", err)
		}
		text, err := ExtractCVText(up.Mime, fileBytes)
		if err != nil {
			return "", fmt.Errorf("text extraction error: %w", err)
		}
		return text, nil
	}

	cv, err := workerConfig.DB.GetCVByUser(ctx, msg.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNoCV
	}
	if err != nil {
		return "", fmt.Errorf("get cv: %w", err)
	}
	return string(cv.Document), nil
}

// runAgent sends input to the matcher agent once and returns its final text.
func (workerConfig *WorkerConfig) runAgent(ctx context.Context, msg ApplicationMessage, input string) (string, error) {
	agentSession, err := workerConfig.AgentSessionService.Create(ctx, &session.CreateRequest{
		AppName:   workerConfig.AgentName,
		UserID:    msg.UserID,
		SessionID: msg.ApplicationID.String(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create agent session: %w", err)
	}
	defer func() {
		err := workerConfig.AgentSessionService.Delete(ctx, &session.DeleteRequest{
			AppName:   agentSession.Session.AppName(),
			UserID:    agentSession.Session.UserID(),
			SessionID: agentSession.Session.ID(),
		})
		if err != nil {
			workerConfig.Logger.Warn("failed to delete agent session", zap.Error(err))
		}
	}()

	stream := workerConfig.AgentRunner.Run(ctx, agentSession.Session.UserID(), agentSession.Session.ID(), &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: input},
		},
	}, agent.RunConfig{})

	var output string
	for event, err := range stream {
		if err != nil {
			return "", err
		}
		if event != nil && event.IsFinalResponse() && event.Content != nil && len(event.Content.Parts) > 0 {
			output = event.Content.Parts[0].Text
		}
	}
	if output == "" {
		return "", fmt.Errorf("empty agent response")
	}
	return output, nil
}

// analyze matches the application's CV against its job and stores the
// result. Failures to read the CV or run the agent are stored as error
// results; only a failure to store is returned.
func (workerConfig *WorkerConfig) analyze(ctx context.Context, msg ApplicationMessage) error {
	job, err := workerConfig.DB.GetJob(ctx, msg.JobID)
	if err != nil {
		return fmt.Errorf("error getting job %s: %w", msg.JobID, err)
	}

	var result AnalysesResult
	text, err := workerConfig.cvText(ctx, msg)
	if err != nil {
		workerConfig.Logger.Warn("cv unavailable", zap.String("application_id", msg.ApplicationID.String()), zap.Error(err))
		result = aggregateResult("", true, err.Error())
	} else {
		output, err := workerConfig.runAgent(ctx, msg, analysisInput(job, text))
		if err != nil {
			workerConfig.Logger.Warn("agent failed", zap.String("application_id", msg.ApplicationID.String()), zap.Error(err))
			result = aggregateResult("", true, fmt.Sprintf("agent stream error: %v", err))
		} else {
			result = aggregateResult(output, false, "")
		}
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal analyses result: %w", err)
	}
	_, err = retry(3, func() (any, error) {
		return nil, workerConfig.DB.CreateOrUpdateAnalysesResult(ctx, database.CreateOrUpdateAnalysesResultParams{
			Result:        resultJSON,
			ApplicationID: msg.ApplicationID,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save agent result after retries: %w", err)
	}
	return nil
}

func (workerConfig *WorkerConfig) setStatus(ctx context.Context, msg ApplicationMessage, status, message string) {
	if err := workerConfig.DB.UpdateApplicationStatus(ctx, database.UpdateApplicationStatusParams{
		Status: status,
		ID:     msg.ApplicationID,
	}); err != nil {
		workerConfig.Logger.Error("failed to update application status", zap.String("status", status), zap.Error(err))
	}
	update := map[string]any{
		"application_id": msg.ApplicationID,
		"status":         status,
		"message":        message,
		"timestamp":      time.Now(),
	}
	if err := publishApplicationUpdate(workerConfig.RabbitConn, msg.ApplicationID.String(), update); err != nil {
		workerConfig.Logger.Warn("failed to publish update", zap.Error(err))
	}
}

func (workerConfig *WorkerConfig) handleDelivery(ctx context.Context, id int, body []byte) {
	msg := ApplicationMessage{}
	if err := json.Unmarshal(body, &msg); err != nil {
		workerConfig.Logger.Error("error unmarshalling message body", zap.Error(err))
		return
	}
	workerConfig.Logger.Info("processing application",
		zap.Int("worker", id+1),
		zap.String("application_id", msg.ApplicationID.String()),
	)
	workerConfig.setStatus(ctx, msg, StatusProcessing, "analysis started")

	if err := workerConfig.analyze(ctx, msg); err != nil {
		workerConfig.Logger.Error("error analyzing application",
			zap.String("application_id", msg.ApplicationID.String()),
			zap.Error(err),
		)
		workerConfig.setStatus(ctx, msg, StatusFailed, "analysis failed")
		return
	}
	workerConfig.setStatus(ctx, msg, StatusCompleted, "analysis completed")
}

var errDeliveriesClosed = errors.New("rabbitmq closed the delivery channel")

// worker consumes until ctx is done. A delivery already being processed is
// finished and acked before the worker returns.
func (workerConfig *WorkerConfig) worker(ctx context.Context, id int) error {
	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	if err := declareApplicationsQueue(ch); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		applicationsQueue, // queue name
		"",                // consumer tag
		false,             // auto-ack
		false,             // exclusive
		false,             // no-local
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq message: %w", err)
	}

	deliveryCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			workerConfig.handleDelivery(deliveryCtx, id, msg.Body)
			if err := msg.Ack(false); err != nil {
				workerConfig.Logger.Warn("failed to ack message", zap.Error(err))
			}
		}
	}
}

// StartConsumerWorkerPool runs numWorkers consumers until ctx is done or one
// of them fails. The first worker error stops the others and is returned.
func (workerConfig *WorkerConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) error {
	ch, err := workerConfig.RabbitConn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(applicationUpdatesTopic, "topic", true, false, false, false, nil)
	ch.Close()
	if err != nil {
		return fmt.Errorf("declare updates exchange: %w", err)
	}

	return runPool(ctx, numWorkers, func(ctx context.Context, i int) error {
		workerConfig.Logger.Info("worker started", zap.Int("worker", i+1))
		err := workerConfig.worker(ctx, i)
		workerConfig.Logger.Info("worker stopped", zap.Int("worker", i+1), zap.Error(err))
		return err
	})
}

// runPool runs n copies of fn and waits for all of them. The first error
// cancels the context the others run with.
func runPool(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	wg.Add(n)
	for i := range n {
		go func() {
			defer wg.Done()
			if err := fn(ctx, i); err != nil {
				once.Do(func() {
					firstErr = fmt.Errorf("worker %d: %w", i+1, err)
					cancel()
				})
			}
		}()
	}
	wg.Wait()
	return firstErr
}
