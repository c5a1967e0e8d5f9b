package main

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobalink/backend/internal/audit"
	"github.com/jobalink/backend/internal/auth"
	"github.com/jobalink/backend/internal/escrow"
	"github.com/jobalink/backend/internal/gateway"
	"github.com/jobalink/backend/internal/handlers"
	"github.com/jobalink/backend/internal/middleware"
	"github.com/jobalink/backend/internal/projects"
	"github.com/jobalink/backend/internal/repository"
	"github.com/jobalink/backend/internal/screening"
)

// RegisterV1Routes adds the authenticated /v1/ API endpoints to the
// given mux. Middleware chain: JWTAuth -> handler; role checks live in
// the handlers.
func RegisterV1Routes(
	mux *http.ServeMux,
	pool *pgxpool.Pool,
	projectRepo *repository.ProjectRepo,
	transactionRepo *repository.TransactionRepo,
	auditRepo *audit.Repository,
	authSvc auth.Service,
	gw gateway.Gateway,
	enqueuePayout escrow.EnqueuePayoutTxFunc,
	logger *slog.Logger,
) {
	escrowSvc := escrow.NewService(pool, projectRepo, transactionRepo, auditRepo, gw, enqueuePayout, logger)
	screener := screening.Default()

	ph := &handlers.PaymentHandler{
		Escrow:       escrowSvc,
		Transactions: transactionRepo,
		Audits:       auditRepo,
		AuditLog:     auditRepo,
		Screener:     screener,
		Logger:       logger,
	}

	projectSvc := projects.NewService(projectRepo, screener, auditRepo, logger)
	prj := &projects.Handler{Svc: projectSvc, Logger: logger}

	authMW := middleware.JWTAuth(authSvc)
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, authMW(h))
	}

	handle("POST /v1/projects", prj.Create)
	handle("GET /v1/projects", prj.List)
	handle("GET /v1/projects/{id}", prj.Get)
	handle("POST /v1/projects/{id}/assign", prj.Assign)

	handle("POST /v1/projects/{id}/deposit", ph.Deposit)
	handle("POST /v1/projects/{id}/release", ph.Release)
	handle("POST /v1/projects/{id}/refund", ph.Refund)
	handle("GET /v1/projects/{id}/transactions", ph.ListProjectTransactions)
	handle("GET /v1/projects/{id}/audit", ph.ListProjectAudit)

	handle("GET /v1/transactions", ph.ListMyTransactions)
	handle("GET /v1/me/audit", ph.ListMyAudit)
	handle("POST /v1/screening", ph.ScreenContent)
}
