package budgets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

// Handler exposes budget endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers budget routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/performance", h.allPerformance)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Get("/{id}/performance", h.performance)
	r.Get("/{id}/revisions", h.revisions)
	r.Post("/{id}/archive", h.archive)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	filters := ListFilters{
		BudgetType: BudgetType(r.URL.Query().Get("budget_type")),
		Page:       page,
		PerPage:    perPage,
	}
	if v := r.URL.Query().Get("account_id"); v != "" {
		filters.AccountID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("archived"); v != "" {
		archived := v == "true"
		filters.Archived = &archived
	}

	budgets, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list budgets", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      budgets,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input BudgetInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	budget, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create budget", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, budget)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	budget, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get budget", err)
		return
	}
	httpx.JSON(w, http.StatusOK, budget)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input BudgetInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	budget, err := h.service.Update(r.Context(), id, input, h.actorID(r))
	if err != nil {
		h.respondError(w, "update budget", err)
		return
	}
	httpx.JSON(w, http.StatusOK, budget)
}

func (h *Handler) performance(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	perf, err := h.service.Performance(r.Context(), id)
	if err != nil {
		h.respondError(w, "budget performance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, perf)
}

func (h *Handler) allPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.service.AllPerformance(r.Context())
	if err != nil {
		h.respondError(w, "budget performance", err)
		return
	}
	if perf == nil {
		perf = []Performance{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": perf})
}

func (h *Handler) revisions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	revisions, err := h.service.Revisions(r.Context(), id)
	if err != nil {
		h.respondError(w, "budget revisions", err)
		return
	}
	if revisions == nil {
		revisions = []Revision{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": revisions})
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	archived := r.URL.Query().Get("restore") != "true"
	if err := h.service.Archive(r.Context(), id, archived); err != nil {
		h.respondError(w, "archive budget", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "budget not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "budget id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) actorID(r *http.Request) int64 {
	session := shared.SessionFromContext(r.Context())
	if session == nil {
		return 0
	}
	id, _ := strconv.ParseInt(session.User(), 10, 64)
	return id
}
