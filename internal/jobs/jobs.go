// Copyright (c) 2026 SecureAuth. All rights reserved.

/*
Package jobs defines the asynchronous task layer built on asynq.

The authentication core publishes best-effort notifications here (currently
only the post-reset confirmation email). Tasks are durable Redis-backed
payloads processed by the worker binary; an enqueue failure is logged by the
caller and never fails the user-visible operation.
*/
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TypeResetSuccessEmail is the task type for post-reset confirmation emails.
const TypeResetSuccessEmail = "email:reset_success"

// Task delivery tuning.
const (
	taskMaxRetry = 3
	taskTimeout  = 30 * time.Second
)

// ResetSuccessPayload is the durable payload of a [TypeResetSuccessEmail] task.
type ResetSuccessPayload struct {
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ResetTime time.Time `json:"reset_time"`
}

// # Producer

// Enqueuer publishes tasks onto the Redis-backed queue.
type Enqueuer struct {
	client *asynq.Client
}

// NewEnqueuer creates a task producer from a Redis URL.
func NewEnqueuer(redisURL string) (*Enqueuer, error) {
	connOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("jobs: invalid redis URL: %w", err)
	}
	return &Enqueuer{client: asynq.NewClient(connOpt)}, nil
}

// Close releases the underlying Redis connections.
func (enqueuer *Enqueuer) Close() error {
	return enqueuer.client.Close()
}

/*
EnqueueResetSuccess queues the reset-confirmation email job.

Parameters:
  - context: context.Context
  - email: string
  - name: string
  - resetTime: time.Time

Returns:
  - error: Serialization or enqueue failures
*/
func (enqueuer *Enqueuer) EnqueueResetSuccess(context context.Context, email, name string, resetTime time.Time) error {
	payload, err := json.Marshal(ResetSuccessPayload{
		Email:     email,
		Name:      name,
		ResetTime: resetTime,
	})
	if err != nil {
		return fmt.Errorf("jobs: failed to marshal payload: %w", err)
	}

	task := asynq.NewTask(TypeResetSuccessEmail, payload)
	if _, err := enqueuer.client.EnqueueContext(context, task,
		asynq.MaxRetry(taskMaxRetry),
		asynq.Timeout(taskTimeout),
	); err != nil {
		return fmt.Errorf("jobs: enqueue failed: %w", err)
	}

	return nil
}

// # Consumer

// ResetSuccessMailer is the mail capability the worker needs.
type ResetSuccessMailer interface {
	SendResetSuccess(ctx context.Context, email, name string, resetTime time.Time) error
}

// Worker processes queued tasks.
type Worker struct {
	mailer ResetSuccessMailer
	logger *slog.Logger
}

// NewWorker constructs a task consumer.
func NewWorker(mailer ResetSuccessMailer, logger *slog.Logger) *Worker {
	return &Worker{mailer: mailer, logger: logger}
}

// Mux returns the task router for the asynq server.
func (worker *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeResetSuccessEmail, worker.handleResetSuccess)
	return mux
}

// handleResetSuccess delivers one confirmation email. Returning an error
// lets asynq retry with backoff up to the task's MaxRetry.
func (worker *Worker) handleResetSuccess(ctx context.Context, task *asynq.Task) error {
	var payload ResetSuccessPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// Malformed payloads can never succeed. Skip retries.
		worker.logger.Error("reset_success_payload_invalid", slog.Any("error", err))
		return fmt.Errorf("jobs: invalid payload: %w: %w", err, asynq.SkipRetry)
	}

	if err := worker.mailer.SendResetSuccess(ctx, payload.Email, payload.Name, payload.ResetTime); err != nil {
		worker.logger.Warn("reset_success_email_failed",
			slog.String("email", payload.Email),
			slog.Any("error", err),
		)
		return err
	}

	worker.logger.Info("reset_success_email_sent", slog.String("email", payload.Email))
	return nil
}
