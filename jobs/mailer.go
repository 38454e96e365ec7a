package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/shiv-furniture/shiverp/internal/jobs"
)

// Mailer delivers one email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends plain-text mail through a relay. Development setups point
// it at Mailpit.
type SMTPMailer struct {
	addr string
	from string
}

// NewSMTPMailer constructs a mailer for the given relay address and sender.
func NewSMTPMailer(addr, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

// Send delivers the message. The context is accepted for interface symmetry;
// net/smtp carries no deadline hook beyond the dial.
func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	if m == nil || m.addr == "" {
		return errors.New("mailer: not configured")
	}
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")
	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
}

// SendEmailJob processes mail:send tasks.
type SendEmailJob struct {
	Mailer  Mailer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewSendEmailJob wires dependencies for the mail handler.
func NewSendEmailJob(mailer Mailer, logger *slog.Logger, metrics *jobmetrics.Metrics) *SendEmailJob {
	return &SendEmailJob{Mailer: mailer, Logger: logger, Metrics: metrics}
}

// Handle delivers one queued email.
func (j *SendEmailJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Mailer == nil {
		return errors.New("send email: handler not configured")
	}
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.To == "" {
		return asynq.SkipRetry
	}

	tracker := j.Metrics.Track(TaskTypeSendEmail)
	err := j.Mailer.Send(ctx, payload.To, payload.Subject, payload.Body)
	if err != nil {
		j.Logger.Error("send email", slog.String("to", payload.To), slog.Any("error", err))
		return tracker.End(fmt.Errorf("send email: %w", err))
	}
	j.Logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return tracker.End(nil)
}
