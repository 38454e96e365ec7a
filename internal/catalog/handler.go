package catalog

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

// Handler exposes catalog endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/categories", h.categories)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/archive", h.archive)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	filters := ListFilters{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		Page:     page,
		PerPage:  perPage,
	}
	if v := r.URL.Query().Get("archived"); v != "" {
		archived := v == "true"
		filters.Archived = &archived
	}

	products, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      products,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input ProductInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	product, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	archived := r.URL.Query().Get("restore") != "true"
	if err := h.service.Archive(r.Context(), id, archived); err != nil {
		h.respondError(w, "archive product", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "product not found")
	case errors.Is(err, ErrDuplicateSKU):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "sku already in use")
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
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "product id must be a positive integer")
		return 0, false
	}
	return id, true
}
