package payments

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

// Handler exposes payment endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/methods", h.methods)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/reconcile", h.reconcile)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	filters := ListFilters{
		PaymentType: PaymentType(r.URL.Query().Get("payment_type")),
		Search:      r.URL.Query().Get("search"),
		Page:        page,
		PerPage:     perPage,
	}
	if v := r.URL.Query().Get("contact_id"); v != "" {
		filters.ContactID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := r.URL.Query().Get("document_id"); v != "" {
		filters.DocumentID, _ = strconv.ParseInt(v, 10, 64)
	}

	payments, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list payments", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      payments,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) methods(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{"methods": Methods})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreatePaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payment, err := h.service.Create(r.Context(), input, h.actorID(r))
	if err != nil {
		h.respondError(w, "create payment", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input UpdatePaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	payment, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete payment", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	payment, err := h.service.Reconcile(r.Context(), id)
	if err != nil {
		h.respondError(w, "reconcile payment", err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, documents.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrAlreadyReconciled):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, documents.ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, documents.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "payment id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
