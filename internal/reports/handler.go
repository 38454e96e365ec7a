package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
)

// Handler exposes report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
	r.Get("/receivables-aging", h.receivablesAging)
	r.Get("/payables-aging", h.payablesAging)
	r.Get("/monthly-trends", h.monthlyTrends)
	r.Get("/sales-summary", h.salesSummary)
	r.Get("/purchase-summary", h.purchaseSummary)
	r.Get("/analytical-account-summary", h.analyticalSummary)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.fail(w, "dashboard summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) receivablesAging(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ReceivablesAging(r.Context(), asOfParam(r))
	if err != nil {
		h.fail(w, "receivables aging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) payablesAging(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.PayablesAging(r.Context(), asOfParam(r))
	if err != nil {
		h.fail(w, "payables aging", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) monthlyTrends(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	points, err := h.service.MonthlyTrends(r.Context(), year)
	if err != nil {
		h.fail(w, "monthly trends", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"points": points})
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	from, to := rangeParams(r)
	summary, err := h.service.SalesSummary(r.Context(), from, to)
	if err != nil {
		h.fail(w, "sales summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) purchaseSummary(w http.ResponseWriter, r *http.Request) {
	from, to := rangeParams(r)
	summary, err := h.service.PurchaseSummary(r.Context(), from, to)
	if err != nil {
		h.fail(w, "purchase summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) analyticalSummary(w http.ResponseWriter, r *http.Request) {
	from, to := rangeParams(r)
	rows, err := h.service.AnalyticalSummary(r.Context(), from, to)
	if err != nil {
		h.fail(w, "analytical summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func asOfParam(r *http.Request) time.Time {
	if v := r.URL.Query().Get("as_of"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rangeParams(r *http.Request) (from, to time.Time) {
	if v := r.URL.Query().Get("from"); v != "" {
		from, _ = time.Parse("2006-01-02", v)
	}
	if v := r.URL.Query().Get("to"); v != "" {
		to, _ = time.Parse("2006-01-02", v)
	}
	return from, to
}
