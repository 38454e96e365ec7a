// Package jobs holds the asynq task definitions and handlers for background
// work: transactional mail, document PDF generation, the nightly overdue
// invoice scan and report cache refreshes.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskTypeSendEmail delivers one transactional email.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeDocumentPDF renders and stores the PDF artifact of a document.
	TaskTypeDocumentPDF = "document:pdf"
	// TaskTypeOverdueScan looks for posted invoices past their due date and
	// alerts the admins. Scheduled daily.
	TaskTypeOverdueScan = "documents:overdue-scan"
	// TaskTypeReportsRefresh invalidates the cached report aggregates.
	// Scheduled nightly so dashboards never serve stale numbers for long
	// even without write traffic.
	TaskTypeReportsRefresh = "reports:refresh"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an asynq task for one email.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// DocumentPDFPayload identifies the document to render.
type DocumentPDFPayload struct {
	Kind       string `json:"kind"`
	DocumentID int64  `json:"document_id"`
}

// NewDocumentPDFTask constructs an asynq task for one document render.
func NewDocumentPDFTask(payload DocumentPDFPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDocumentPDF, data), nil
}

// NewOverdueScanTask constructs the scheduled overdue scan task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil)
}

// NewReportsRefreshTask constructs the scheduled report refresh task.
func NewReportsRefreshTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReportsRefresh, nil)
}
