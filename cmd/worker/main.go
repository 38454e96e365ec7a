package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/shiv-furniture/shiverp/internal/app"
	"github.com/shiv-furniture/shiverp/internal/budgets"
	"github.com/shiv-furniture/shiverp/internal/catalog"
	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
	jobmetrics "github.com/shiv-furniture/shiverp/internal/jobs"
	"github.com/shiv-furniture/shiverp/internal/notifications"
	"github.com/shiv-furniture/shiverp/internal/platform/cache"
	"github.com/shiv-furniture/shiverp/internal/platform/db"
	"github.com/shiv-furniture/shiverp/internal/reports"
	"github.com/shiv-furniture/shiverp/internal/shared"
	"github.com/shiv-furniture/shiverp/internal/users"
	"github.com/shiv-furniture/shiverp/jobs"
	"github.com/shiv-furniture/shiverp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	contactsService := contacts.NewService(contacts.NewRepository(pool))
	catalogService := catalog.NewService(catalog.NewRepository(pool))
	auditLogger := shared.NewAuditLogger(pool)
	docService := documents.NewService(documents.NewRepository(pool), catalogService, contactsService, nil, nil, auditLogger)

	artifactStore, err := report.NewFileStore(cfg.ArtifactDir, cfg.ArtifactBaseURL)
	if err != nil {
		logger.Error("init artifact store", slog.Any("error", err))
		os.Exit(1)
	}
	renderer := report.NewRenderer(report.NewClient(cfg.GotenbergURL), artifactStore, cfg.BusinessName)

	reportsRepo := reports.NewRepository(pool)
	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	budgetsService := budgets.NewService(budgets.NewRepository(pool), nil)
	reportsService := reports.NewService(reportsRepo, budgetsService, reportsCache)

	notificationsService := notifications.NewService(notifications.NewRepository(pool))
	usersRepo := users.NewRepository(pool)

	mailJob := jobs.NewSendEmailJob(jobs.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom), logger, metrics)
	pdfJob := jobs.NewDocumentPDFJob(docService, renderer, logger, metrics)
	overdueJob := jobs.NewOverdueScanJob(reportsRepo, usersRepo, notificationsService, logger, metrics)
	refreshJob := jobs.NewReportsRefreshJob(reportsService, logger, metrics)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: mailJob.Handle},
			{Type: jobs.TaskTypeDocumentPDF, Handler: pdfJob.Handle},
			{Type: jobs.TaskTypeOverdueScan, Handler: overdueJob.Handle},
			{Type: jobs.TaskTypeReportsRefresh, Handler: refreshJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "30 2 * * *", Task: jobs.NewReportsRefreshTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: jobs.NewOverdueScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
