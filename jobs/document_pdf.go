package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/shiv-furniture/shiverp/internal/documents"
	jobmetrics "github.com/shiv-furniture/shiverp/internal/jobs"
)

// DocumentSource is the slice of the document service the PDF job needs.
type DocumentSource interface {
	Get(ctx context.Context, kind documents.Kind, id int64) (*documents.Document, error)
	SetDocumentURL(ctx context.Context, kind documents.Kind, id int64, url string) error
}

// DocumentPDFJob renders a document to PDF in the background, so posting a
// document never blocks on Gotenberg.
type DocumentPDFJob struct {
	Docs     DocumentSource
	Renderer documents.PDFRenderer
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewDocumentPDFJob wires dependencies for the render handler.
func NewDocumentPDFJob(docs DocumentSource, renderer documents.PDFRenderer, logger *slog.Logger, metrics *jobmetrics.Metrics) *DocumentPDFJob {
	return &DocumentPDFJob{Docs: docs, Renderer: renderer, Logger: logger, Metrics: metrics}
}

// Handle renders one document and stores the artifact URL.
func (j *DocumentPDFJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Docs == nil || j.Renderer == nil {
		return errors.New("document pdf: handler not configured")
	}
	var payload DocumentPDFPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	cfg, ok := documents.ConfigFor(documents.Kind(payload.Kind))
	if !ok || payload.DocumentID <= 0 {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeDocumentPDF)
	err := j.render(ctx, cfg, payload.DocumentID)
	if err != nil {
		j.Logger.Error("render document pdf",
			slog.String("kind", payload.Kind),
			slog.Int64("id", payload.DocumentID),
			slog.Any("error", err))
	}
	return tracker.End(err)
}

func (j *DocumentPDFJob) render(ctx context.Context, cfg documents.KindConfig, id int64) error {
	doc, err := j.Docs.Get(ctx, cfg.Kind, id)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			// Deleted between enqueue and run; nothing to do.
			return nil
		}
		return err
	}
	if doc.DocumentURL != nil && *doc.DocumentURL != "" {
		return nil
	}
	url, err := j.Renderer.RenderDocument(ctx, cfg, *doc)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return j.Docs.SetDocumentURL(ctx, cfg.Kind, id, url)
}
