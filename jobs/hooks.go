package jobs

import (
	"context"
	"log/slog"

	"github.com/shiv-furniture/shiverp/internal/documents"
)

// PostedHook reacts to a document reaching posted: it queues the PDF render
// and bumps the report cache so dashboards pick the numbers up. It satisfies
// the document service's Notifier port.
type PostedHook struct {
	Client  *Client
	Reports CacheInvalidator
	Logger  *slog.Logger
}

// NewPostedHook wires the hook. Client and Reports may be nil; the hook then
// skips the corresponding step.
func NewPostedHook(client *Client, reports CacheInvalidator, logger *slog.Logger) *PostedHook {
	return &PostedHook{Client: client, Reports: reports, Logger: logger}
}

// DocumentPosted enqueues follow-up work. Failures are logged, never
// propagated: posting must not roll back because Redis hiccuped.
func (h *PostedHook) DocumentPosted(ctx context.Context, kind documents.Kind, id int64) error {
	if h == nil {
		return nil
	}
	if h.Client != nil {
		if _, err := h.Client.EnqueueDocumentPDF(ctx, DocumentPDFPayload{Kind: string(kind), DocumentID: id}); err != nil {
			h.Logger.Warn("enqueue document pdf", slog.String("kind", string(kind)), slog.Int64("id", id), slog.Any("error", err))
		}
	}
	if h.Reports != nil {
		if err := h.Reports.InvalidateCache(ctx); err != nil {
			h.Logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	return nil
}
