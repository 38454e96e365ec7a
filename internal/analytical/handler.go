package analytical

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
)

// Handler exposes analytical account and auto-analytical model endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountAccountRoutes registers /analytical-accounts routes.
func (h *Handler) MountAccountRoutes(r chi.Router) {
	r.Get("/", h.listAccounts)
	r.Post("/", h.createAccount)
	r.Get("/tree", h.accountTree)
	r.Get("/{id}", h.getAccount)
	r.Put("/{id}", h.updateAccount)
	r.Post("/{id}/archive", h.archiveAccount)
}

// MountModelRoutes registers /auto-analytical-models routes.
func (h *Handler) MountModelRoutes(r chi.Router) {
	r.Get("/", h.listModels)
	r.Post("/", h.createModel)
	r.Get("/rule-types", h.ruleTypes)
	r.Put("/{id}", h.updateModel)
	r.Post("/{id}/toggle-active", h.toggleModel)
	r.Delete("/{id}", h.deleteModel)
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	filters := AccountFilters{
		Search:      r.URL.Query().Get("search"),
		AccountType: AccountType(r.URL.Query().Get("account_type")),
	}
	if v := r.URL.Query().Get("archived"); v != "" {
		archived := v == "true"
		filters.Archived = &archived
	}
	accounts, err := h.service.ListAccounts(r.Context(), filters)
	if err != nil {
		h.logger.Error("list analytical accounts", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if accounts == nil {
		accounts = []Account{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": accounts})
}

func (h *Handler) accountTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.service.AccountTree(r.Context())
	if err != nil {
		h.logger.Error("analytical account tree", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if tree == nil {
		tree = []*AccountNode{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tree": tree})
}

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var input AccountInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.CreateAccount(r.Context(), input)
	if err != nil {
		h.respondError(w, "create analytical account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, account)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.respondError(w, "get analytical account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input AccountInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.UpdateAccount(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update analytical account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) archiveAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	archived := r.URL.Query().Get("restore") != "true"
	if err := h.service.ArchiveAccount(r.Context(), id, archived); err != nil {
		h.respondError(w, "archive analytical account", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) listModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.service.ListModels(r.Context())
	if err != nil {
		h.logger.Error("list auto-analytical models", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if models == nil {
		models = []Model{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": models})
}

func (h *Handler) ruleTypes(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rule_types": []RuleType{RuleProduct, RuleProductCategory, RuleContact, RuleAmountRange},
	})
}

func (h *Handler) createModel(w http.ResponseWriter, r *http.Request) {
	var input ModelInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	model, err := h.service.CreateModel(r.Context(), input)
	if err != nil {
		h.respondError(w, "create auto-analytical model", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, model)
}

func (h *Handler) updateModel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var input ModelInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	model, err := h.service.UpdateModel(r.Context(), id, input)
	if err != nil {
		h.respondError(w, "update auto-analytical model", err)
		return
	}
	httpx.JSON(w, http.StatusOK, model)
}

func (h *Handler) toggleModel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	model, err := h.service.ToggleModelActive(r.Context(), id)
	if err != nil {
		h.respondError(w, "toggle auto-analytical model", err)
		return
	}
	httpx.JSON(w, http.StatusOK, model)
}

func (h *Handler) deleteModel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteModel(r.Context(), id); err != nil {
		h.respondError(w, "delete auto-analytical model", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "record not found")
	case errors.Is(err, ErrDuplicateCode):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "account code already in use")
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
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}
