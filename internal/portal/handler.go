package portal

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/shiv-furniture/shiverp/internal/auth"
	"github.com/shiv-furniture/shiverp/internal/contacts"
	"github.com/shiv-furniture/shiverp/internal/documents"
	"github.com/shiv-furniture/shiverp/internal/payments"
	"github.com/shiv-furniture/shiverp/internal/platform/httpx"
	"github.com/shiv-furniture/shiverp/internal/shared"
)

// portalKinds maps the portal URL segments to document kinds. The portal uses
// the customer-facing names rather than the admin collection names.
var portalKinds = map[string]documents.Kind{
	"sales-orders":    documents.KindSalesOrder,
	"purchase-orders": documents.KindPurchaseOrder,
	"invoices":        documents.KindCustomerInvoice,
	"bills":           documents.KindVendorBill,
}

// Handler serves the contact-scoped portal surface. Every route resolves the
// contact from the session; admin accounts have no contact and are rejected.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	renderer documents.PDFRenderer
	validate *validator.Validate
}

// NewHandler constructs the portal handler. renderer may be nil; download
// routes then answer 503.
func NewHandler(logger *slog.Logger, service *Service, renderer documents.PDFRenderer) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		renderer: renderer,
		validate: validator.New(),
	}
}

// MountRoutes registers the portal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/profile", h.profile)
	r.Put("/profile", h.updateProfile)
	r.Get("/payments/razorpay-key", h.razorpayKey)
	r.Post("/invoices/{id}/create-payment-order", h.createPaymentOrder)
	r.Post("/invoices/{id}/verify-payment", h.verifyPayment)
	r.Get("/{collection:sales-orders|purchase-orders|invoices|bills}", h.listDocuments)
	r.Get("/{collection:sales-orders|purchase-orders|invoices|bills}/{id}", h.getDocument)
	r.Get("/{collection:sales-orders|purchase-orders|invoices|bills}/{id}/download", h.download)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.ContactSummary(r.Context(), contactID)
	if err != nil {
		h.logger.Error("portal summary", slog.Int64("contact_id", contactID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Profile(r.Context(), contactID)
	if err != nil {
		h.respondServiceError(w, "portal profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	var req ProfileInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	contact, err := h.service.UpdateProfile(r.Context(), contactID, req)
	if err != nil {
		h.respondServiceError(w, "portal update profile", err)
		return
	}
	httpx.JSON(w, http.StatusOK, contact)
}

func (h *Handler) razorpayKey(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.contactID(w, r); !ok {
		return
	}
	key, err := h.service.RazorpayKey()
	if err != nil {
		h.respondServiceError(w, "portal razorpay key", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"key_id": key})
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	cfg, _ := documents.ConfigFor(kind)

	page, perPage := shared.PageParams(r)
	filters := documents.ListFilters{
		Status:  documents.Status(r.URL.Query().Get("status")),
		Search:  r.URL.Query().Get("search"),
		Page:    page,
		PerPage: perPage,
	}
	docs, total, err := h.service.ListDocuments(r.Context(), kind, contactID, filters)
	if err != nil {
		h.logger.Error("portal list documents", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]documents.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, documents.NewDocumentResponse(cfg, doc))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, perPage, total),
	})
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GetDocument(r.Context(), kind, id, contactID)
	if err != nil {
		h.respondServiceError(w, "portal get document", err)
		return
	}
	cfg, _ := documents.ConfigFor(kind)
	httpx.JSON(w, http.StatusOK, documents.NewDocumentResponse(cfg, *doc))
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "PDF Unavailable", "document rendering is not configured")
		return
	}
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	doc, err := h.service.GetDocument(r.Context(), kind, id, contactID)
	if err != nil {
		h.respondServiceError(w, "portal get document", err)
		return
	}
	if doc.DocumentURL != nil && *doc.DocumentURL != "" {
		httpx.JSON(w, http.StatusOK, map[string]string{"url": *doc.DocumentURL})
		return
	}

	cfg, _ := documents.ConfigFor(kind)
	url, err := h.renderer.RenderDocument(r.Context(), cfg, *doc)
	if err != nil {
		h.logger.Error("portal render document", slog.String("kind", string(kind)), slog.Int64("id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Render Failed", "document could not be rendered")
		return
	}
	if err := h.service.StoreDocumentURL(r.Context(), kind, id, url); err != nil {
		h.logger.Warn("portal store document url", slog.Int64("id", id), slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) createPaymentOrder(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	order, err := h.service.CreatePaymentOrder(r.Context(), id, contactID)
	if err != nil {
		h.respondServiceError(w, "portal create payment order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req VerifyPaymentInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	payment, err := h.service.VerifyPayment(r.Context(), id, contactID, userID(r), req)
	if err != nil {
		h.respondServiceError(w, "portal verify payment", err)
		return
	}
	if payment == nil {
		// Retried capture callback; the payment is already on file.
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "already_recorded"})
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "portal access requires a linked contact")
	case errors.Is(err, documents.ErrNotFound), errors.Is(err, contacts.ErrNotFound), errors.Is(err, payments.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "resource not found")
	case errors.Is(err, documents.ErrValidation), errors.Is(err, contacts.ErrValidation), errors.Is(err, payments.ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// contactID resolves the portal contact from the session. Sessions without a
// portal role or a linked contact are rejected.
func (h *Handler) contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Role() != string(auth.RolePortalUser) {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "portal access requires a portal account")
		return 0, false
	}
	id, err := strconv.ParseInt(sess.ContactID(), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "portal account has no linked contact")
		return 0, false
	}
	return id, true
}

func (h *Handler) pathKind(w http.ResponseWriter, r *http.Request) (documents.Kind, bool) {
	kind, ok := portalKinds[chi.URLParam(r, "collection")]
	if !ok {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown collection")
		return "", false
	}
	return kind, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func userID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
