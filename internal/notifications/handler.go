package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

// Handler exposes notification endpoints. Every route works on the
// authenticated user's own notifications.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/read-all", h.readAll)
	r.Post("/{id}/read", h.read)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	page, perPage := shared.PageParams(r)
	filters := ListFilters{
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Category:   Category(r.URL.Query().Get("category")),
		Page:       page,
		PerPage:    perPage,
	}
	items, total, err := h.service.List(r.Context(), userID, filters)
	if err != nil {
		h.logger.Error("list notifications", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if items == nil {
		items = []Notification{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		h.logger.Error("unread count", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"unread_count": count})
}

func (h *Handler) read(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "notification id must be a positive integer")
		return
	}
	if err := h.service.MarkRead(r.Context(), userID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "notification not found")
			return
		}
		h.logger.Error("mark read", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) readAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("mark all read", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session required")
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "session required")
		return 0, false
	}
	return id, true
}
