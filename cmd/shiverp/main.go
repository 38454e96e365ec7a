package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/shiv-furniture/shiverp/internal/analytical"
	"github.com/shiv-furniture/shiverp/internal/app"
	"github.com/shiv-furniture/shiverp/internal/auth"
	"github.com/shiv-furniture/shiverp/internal/budgets"
	"github.com/shiv-furniture/shiverp/internal/catalog"
	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/notifications"
	"github.com/shiv-furniture/shiverp/internal/observability"
	"github.com/shiv-furniture/shiverp/internal/payments"
	"github.com/shiv-furniture/shiverp/internal/platform/cache"
	"github.com/shiv-furniture/shiverp/internal/platform/db"
	"github.com/shiv-furniture/shiverp/internal/portal"
	"github.com/shiv-furniture/shiverp/internal/reports"
	"github.com/shiv-furniture/shiverp/internal/shared"
	"github.com/shiv-furniture/shiverp/internal/users"
	"github.com/shiv-furniture/shiverp/jobs"
	"github.com/shiv-furniture/shiverp/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	sessionManager := shared.NewSessionManager(redisClient, "shiverp_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, logger)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	usersService := users.NewService(users.NewRepository(pool), authRepo)
	usersHandler := users.NewHandler(logger, usersService)

	contactsService := contacts.NewService(contacts.NewRepository(pool))
	contactsHandler := contacts.NewHandler(logger, contactsService)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	analyticalRepo := analytical.NewRepository(pool)
	analyticalService := analytical.NewService(analyticalRepo)
	analyticalHandler := analytical.NewHandler(logger, analyticalService)
	assigner := analytical.NewAssigner(analyticalRepo, catalogService)

	budgetsService := budgets.NewService(budgets.NewRepository(pool), analyticalService)
	budgetsHandler := budgets.NewHandler(logger, budgetsService)

	reportsCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportsService := reports.NewService(reports.NewRepository(pool), budgetsService, reportsCache)
	reportsHandler := reports.NewHandler(logger, reportsService)

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	postedHook := jobs.NewPostedHook(jobsClient, reportsService, logger)

	docService := documents.NewService(documents.NewRepository(pool), catalogService, contactsService, assigner, postedHook, auditLogger)

	artifactStore, err := report.NewFileStore(cfg.ArtifactDir, cfg.ArtifactBaseURL)
	if err != nil {
		logger.Error("init artifact store", slog.Any("error", err))
		os.Exit(1)
	}
	renderer := report.NewRenderer(report.NewClient(cfg.GotenbergURL), artifactStore, cfg.BusinessName)
	docMailer := jobs.NewDocumentMailer(jobsClient, contactsService, cfg.BusinessName)

	var documentHandlers []*documents.Handler
	for _, kind := range documents.Kinds() {
		kindCfg, _ := documents.ConfigFor(kind)
		documentHandlers = append(documentHandlers, documents.NewHandler(logger, kindCfg, docService, renderer, docMailer))
	}

	paymentsService := payments.NewService(payments.NewRepository(pool), docService)
	paymentsHandler := payments.NewHandler(logger, paymentsService)

	notificationsService := notifications.NewService(notifications.NewRepository(pool))
	notificationsHandler := notifications.NewHandler(logger, notificationsService)

	gateway := payments.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	portalService := portal.NewService(docService, contactsService, paymentsService, portal.NewRepository(pool), gateway, idempotencyStore)
	portalHandler := portal.NewHandler(logger, portalService, renderer)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		Metrics:              metrics,
		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		ContactsHandler:      contactsHandler,
		CatalogHandler:       catalogHandler,
		AnalyticalHandler:    analyticalHandler,
		BudgetsHandler:       budgetsHandler,
		PaymentsHandler:      paymentsHandler,
		ReportsHandler:       reportsHandler,
		NotificationsHandler: notificationsHandler,
		PortalHandler:        portalHandler,
		DocumentHandlers:     documentHandlers,
		JobHandler:           jobHandler,
		ArtifactDir:          cfg.ArtifactDir,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
