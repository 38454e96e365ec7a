package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shiv-furniture/shiverp/internal/analytical"
	"github.com/shiv-furniture/shiverp/internal/auth"
	"github.com/shiv-furniture/shiverp/internal/budgets"
	"github.com/shiv-furniture/shiverp/internal/catalog"
	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/notifications"
	"github.com/shiv-furniture/shiverp/internal/observability"
	"github.com/shiv-furniture/shiverp/internal/payments"
	"github.com/shiv-furniture/shiverp/internal/portal"
	"github.com/shiv-furniture/shiverp/internal/reports"
	"github.com/shiv-furniture/shiverp/internal/shared"
	"github.com/shiv-furniture/shiverp/internal/users"
	"github.com/shiv-furniture/shiverp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	ContactsHandler      *contacts.Handler
	CatalogHandler       *catalog.Handler
	AnalyticalHandler    *analytical.Handler
	BudgetsHandler       *budgets.Handler
	PaymentsHandler      *payments.Handler
	ReportsHandler       *reports.Handler
	NotificationsHandler *notifications.Handler
	PortalHandler        *portal.Handler
	DocumentHandlers     []*documents.Handler
	JobHandler           *jobs.Handler

	// ArtifactDir is served under /files/documents for PDF downloads.
	ArtifactDir string
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Back-office surface, admin only.
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.ContactsHandler != nil {
			r.Route("/contacts", params.ContactsHandler.MountRoutes)
		}
		if params.CatalogHandler != nil {
			r.Route("/products", params.CatalogHandler.MountRoutes)
		}
		if params.AnalyticalHandler != nil {
			r.Route("/analytical-accounts", params.AnalyticalHandler.MountAccountRoutes)
			r.Route("/auto-analytical-models", params.AnalyticalHandler.MountModelRoutes)
		}
		if params.BudgetsHandler != nil {
			r.Route("/budgets", params.BudgetsHandler.MountRoutes)
		}
		if params.PaymentsHandler != nil {
			r.Route("/payments", params.PaymentsHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		for _, h := range params.DocumentHandlers {
			r.Route("/"+h.Collection(), h.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	// Any authenticated account.
	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)
		if params.NotificationsHandler != nil {
			r.Route("/notifications", params.NotificationsHandler.MountRoutes)
		}
		if params.PortalHandler != nil {
			r.Route("/portal", params.PortalHandler.MountRoutes)
		}
		if params.ArtifactDir != "" {
			fileServer := http.StripPrefix("/files/documents/", http.FileServer(http.Dir(params.ArtifactDir)))
			r.Handle("/files/documents/*", artifactCacheHandler(fileServer))
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// artifactCacheHandler wraps the artifact file server with Cache-Control
// headers. Rendered PDFs never change once written, so an hour is safe.
func artifactCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "private, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
