// Copyright (c) 2026 SecureAuth. All rights reserved.

// Command worker is the entry point for the SecureAuth background worker.
//
// It consumes the Redis-backed task queue and delivers the asynchronous
// notification emails the API server enqueues. The worker shares the API's
// configuration surface — same Redis, same SMTP credentials.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/adewumi/secureauth/internal/jobs"
	"github.com/adewumi/secureauth/internal/mail"
	"github.com/adewumi/secureauth/internal/platform/config"
)

const workerConcurrency = 5

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	log := rawLog.With(slog.String("app", "secureauth-worker"))
	slog.SetDefault(log)

	log.Info("[SecureAuth] worker_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	// ── 3. Mailer ─────────────────────────────────────────────────────────
	mailer, err := mail.NewSMTPMailer(cfg)
	must(log, err, "initialize smtp mailer")

	// ── 4. Task Server ────────────────────────────────────────────────────
	connOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	must(log, err, "parse redis URL")

	srv := asynq.NewServer(connOpt, asynq.Config{
		Concurrency: workerConcurrency,
		Logger:      asynqLogger{log: log},
	})

	worker := jobs.NewWorker(mailer, log)

	// ── 5. Run until signalled ────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Run(worker.Mux()); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("worker startup error", slog.Any("error", err))
		os.Exit(1)
	}

	srv.Shutdown()
	log.Info("worker stopped cleanly")
}

// asynqLogger bridges asynq's internal logging onto slog.
type asynqLogger struct {
	log *slog.Logger
}

func (l asynqLogger) Debug(args ...any) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...any)  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...any)  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...any) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...any) {
	l.log.Error(fmt.Sprint(args...))
	os.Exit(1)
}

// must logs a structured fatal error and terminates the process if err is non-nil.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
