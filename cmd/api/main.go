package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/jobalink/backend/internal/audit"
	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/config"
	"github.com/jobalink/backend/internal/dashboard"
	"github.com/jobalink/backend/internal/escrow"
	"github.com/jobalink/backend/internal/gateway"
	"github.com/jobalink/backend/internal/payout"
	"github.com/jobalink/backend/internal/repository"
	"github.com/jobalink/backend/internal/router"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database successfully!")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	projectRepo := repository.NewProjectRepo(pool)
	transactionRepo := repository.NewTransactionRepo(pool)
	auditRepo := audit.NewRepository(pool)

	// Payout enqueue func is set after the River client is created
	// (breaks the init cycle between the ledger and the worker).
	var insertMu sync.Mutex
	var insertFn escrow.EnqueuePayoutTxFunc
	enqueuePayout := func(ctx context.Context, tx pgx.Tx, args payout.CreditPayoutArgs) error {
		insertMu.Lock()
		fn := insertFn
		insertMu.Unlock()
		if fn == nil {
			panic("river insert not wired")
		}
		return fn(ctx, tx, args)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, payout.NewCreditPayoutWorker(userRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertMu.Lock()
	insertFn = func(ctx context.Context, tx pgx.Tx, args payout.CreditPayoutArgs) error {
		_, err := riverClient.InsertTx(ctx, tx, args, nil)
		return err
	}
	insertMu.Unlock()

	// Mobile money gateway simulator
	gw := gateway.NewSimulator(cfg.GatewayLatency, time.Now().UnixNano())
	gw.CollectFailureRate = cfg.CollectFailureRate
	gw.DisburseFailureRate = cfg.DisburseFailureRate

	// Auth
	authSvc := auth.NewService(userRepo, cfg.JWTSecret)
	monitor := audit.NewMonitor(auditRepo)
	authHandler := auth.NewHandler(authSvc, auditRepo, monitor, logger)

	dashHandler := dashboard.NewHandler(authSvc, userRepo, transactionRepo, logger)

	publicRouter := router.New(authHandler, dashHandler)

	mux := http.NewServeMux()
	mux.Handle("/api/", publicRouter)
	mux.Handle("GET /metrics", promhttp.Handler())

	RegisterV1Routes(mux, pool, projectRepo, transactionRepo, auditRepo, authSvc, gw, enqueuePayout, logger)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	}).Handler(mux)

	// Start River client (processes payout jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr, "env", cfg.Env)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
