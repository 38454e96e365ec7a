package documents

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

// PDFRenderer produces a stored artifact URL for a document.
type PDFRenderer interface {
	RenderDocument(ctx context.Context, cfg KindConfig, doc Document) (string, error)
}

// Mailer delivers a posted document to its party by email.
type Mailer interface {
	SendDocument(ctx context.Context, cfg KindConfig, doc Document) error
}

// Handler exposes one document collection over HTTP. The same handler type is
// mounted once per kind.
type Handler struct {
	logger   *slog.Logger
	cfg      KindConfig
	service  *Service
	renderer PDFRenderer
	mailer   Mailer
	validate *validator.Validate
}

// NewHandler builds a Handler for the given kind. renderer and mailer are
// optional; the related routes answer 503 when absent.
func NewHandler(logger *slog.Logger, cfg KindConfig, service *Service, renderer PDFRenderer, mailer Mailer) *Handler {
	return &Handler{
		logger:   logger,
		cfg:      cfg,
		service:  service,
		renderer: renderer,
		mailer:   mailer,
		validate: validator.New(),
	}
}

// Collection returns the URL path segment this handler is mounted under.
func (h *Handler) Collection() string {
	return h.cfg.Collection
}

// MountRoutes registers the collection routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/{action:confirm|deliver|receive|post|cancel}", h.applyAction)
	r.Get("/{id}/pdf", h.pdf)
	if h.cfg.Kind == KindCustomerInvoice {
		r.Post("/{id}/send-email", h.sendEmail)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, perPage := shared.PageParams(r)
	filters := ListFilters{
		Status:  Status(r.URL.Query().Get("status")),
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	if v := r.URL.Query().Get("contact_id"); v != "" {
		filters.ContactID, _ = strconv.ParseInt(v, 10, 64)
	}

	docs, total, err := h.service.List(r.Context(), h.cfg.Kind, filters)
	if err != nil {
		h.logger.Error("list documents", slog.String("kind", string(h.cfg.Kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, NewDocumentResponse(h.cfg, doc))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.Create(r.Context(), h.cfg.Kind, req, actorID(r))
	if err != nil {
		h.respondServiceError(w, "create document", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewDocumentResponse(h.cfg, *doc))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), h.cfg.Kind, id)
	if err != nil {
		h.respondServiceError(w, "get document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDocumentResponse(h.cfg, *doc))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	doc, err := h.service.Update(r.Context(), h.cfg.Kind, id, req, actorID(r))
	if err != nil {
		h.respondServiceError(w, "update document", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDocumentResponse(h.cfg, *doc))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), h.cfg.Kind, id, actorID(r)); err != nil {
		h.respondServiceError(w, "delete document", err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) applyAction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	action := Action(chi.URLParam(r, "action"))

	doc, err := h.service.Apply(r.Context(), h.cfg.Kind, id, action, actorID(r))
	if err != nil {
		h.respondServiceError(w, "apply action", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewDocumentResponse(h.cfg, *doc))
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "document rendering is not configured")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), h.cfg.Kind, id)
	if err != nil {
		h.respondServiceError(w, "get document", err)
		return
	}
	if doc.DocumentURL != nil && *doc.DocumentURL != "" {
		httpx.JSON(w, http.StatusOK, map[string]string{"url": *doc.DocumentURL})
		return
	}

	url, err := h.renderer.RenderDocument(r.Context(), h.cfg, *doc)
	if err != nil {
		h.logger.Error("render document", slog.String("kind", string(h.cfg.Kind)), slog.Int64("id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "document could not be rendered")
		return
	}
	if err := h.service.SetDocumentURL(r.Context(), h.cfg.Kind, id, url); err != nil {
		h.logger.Warn("store document url", slog.Int64("id", id), slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Mail Unavailable", "mail delivery is not configured")
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.Get(r.Context(), h.cfg.Kind, id)
	if err != nil {
		h.respondServiceError(w, "get document", err)
		return
	}
	if doc.Status != StatusPosted {
		httpx.Problem(w, http.StatusConflict, "Conflict", "only posted documents can be emailed")
		return
	}
	if err := h.mailer.SendDocument(r.Context(), h.cfg, *doc); err != nil {
		h.logger.Error("send document email", slog.Int64("id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Send Failed", "email could not be queued")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "document not found")
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error(op, slog.String("kind", string(h.cfg.Kind)), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "document id must be a positive integer")
		return 0, false
	}
	return id, true
}

func actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
