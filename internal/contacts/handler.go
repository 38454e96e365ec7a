package contacts

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

// Handler exposes contact endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers contact routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/customers", h.listCustomers)
	r.Get("/vendors", h.listVendors)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Post("/{id}/archive", h.archive)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, "")
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, TypeCustomer)
}

func (h *Handler) listVendors(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, TypeVendor)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, contactType ContactType) {
	page, perPage := shared.PageParams(r)
	filters := ListFilters{
		Type:    contactType,
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	if v := r.URL.Query().Get("archived"); v != "" {
		archived := v == "true"
		filters.Archived = &archived
	}

	contacts, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list contacts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      contacts,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateContactInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contact, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.respondError(w, "create contact", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, contact)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get contact", err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input CreateContactInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contact, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update contact", err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) archive(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	archived := r.URL.Query().Get("restore") != "true"
	if err := h.service.Archive(r.Context(), id, archived); err != nil {
		h.respondError(w, "archive contact", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "contact not found")
	case errors.Is(err, ErrDuplicateEmail):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "email already in use")
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
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "contact id must be a positive integer")
		return 0, false
	}
	return id, true
}
