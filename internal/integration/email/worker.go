// Package email provides email sending functionality.
package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/email/templates"
)

// Worker drains the outbox: it claims due jobs, renders them and hands them
// to the EmailSender. Several workers may share one outbox.
type Worker struct {
	queue    adapter.EmailQueueRepository
	sender   adapter.EmailSender
	renderer *templates.Renderer
	metrics  adapter.AuthMetrics
	config   WorkerConfig
	now      func() time.Time
}

// WorkerConfig holds configuration for the email worker.
type WorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	// Lease is how long a claimed job stays reserved. A job whose worker
	// died mid-send becomes due again once its lease runs out.
	Lease time.Duration
}

// DefaultWorkerConfig returns the default worker configuration.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    10,
		Lease:        5 * time.Minute,
	}
}

// NewWorker creates a new email worker. Zero config fields take their defaults.
func NewWorker(
	queue adapter.EmailQueueRepository,
	sender adapter.EmailSender,
	renderer *templates.Renderer,
	metrics adapter.AuthMetrics,
	config WorkerConfig,
) *Worker {
	if metrics == nil {
		metrics = adapter.NopAuthMetrics{}
	}
	defaults := DefaultWorkerConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = defaults.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = defaults.BatchSize
	}
	if config.Lease <= 0 {
		config.Lease = defaults.Lease
	}
	return &Worker{
		queue:    queue,
		sender:   sender,
		renderer: renderer,
		metrics:  metrics,
		config:   config,
		now:      time.Now,
	}
}

// Start runs the polling loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	slog.Info("Email worker started",
		"poll_interval", w.config.PollInterval,
		"batch_size", w.config.BatchSize,
		"lease", w.config.Lease,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	w.processBatch(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Email worker shutting down")
			return
		case <-ticker.C:
			w.processBatch(ctx)
		}
	}
}

// ProcessNow processes one batch of due emails immediately.
func (w *Worker) ProcessNow(ctx context.Context) {
	w.processBatch(ctx)
}

func (w *Worker) processBatch(ctx context.Context) {
	jobs, err := w.queue.ClaimDue(ctx, w.now().UTC(), w.config.Lease, w.config.BatchSize)
	if err != nil {
		slog.Error("Failed to claim email jobs", "error", err)
		return
	}
	if len(jobs) == 0 {
		return
	}

	slog.Debug("Processing email batch", "count", len(jobs))

	for _, job := range jobs {
		if ctx.Err() != nil {
			// Unsent claims are picked up again when their lease expires.
			return
		}
		w.deliver(ctx, job)
	}
}

func (w *Worker) deliver(ctx context.Context, job *entity.EmailJob) {
	logger := slog.With(
		"job_id", job.ID,
		"template", job.TemplateType,
		"accountID", job.AccountID,
	)
	leasedUntil := job.ScheduledAt

	msg, err := w.render(job)
	if err != nil {
		logger.Error("Failed to render email template", "error", err)
		w.recordFailure(ctx, logger, job, leasedUntil, err)
		return
	}

	result, err := w.sender.Send(ctx, adapter.SendEmailInput{
		To:      job.RecipientEmail,
		Name:    job.RecipientName,
		Subject: job.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
	})
	if err != nil {
		logger.Error("Failed to send email", "error", err)
		w.recordFailure(ctx, logger, job, leasedUntil, err)
		return
	}

	job.MarkSent(result.ProviderID)
	if !w.complete(ctx, logger, job, leasedUntil) {
		return
	}

	w.metrics.ObserveEmail(string(job.TemplateType), "sent")
	logger.Info("Email sent", "provider_id", result.ProviderID)
}

// render fails permanently: a template that cannot render now will not
// render on retry either.
func (w *Worker) render(job *entity.EmailJob) (templates.Message, error) {
	if _, known := subjects[job.TemplateType]; !known {
		return templates.Message{}, domainerror.NewEmailError(
			domainerror.ErrCodeInvalidTemplate,
			"unknown template type "+string(job.TemplateType),
			domainerror.ErrInvalidTemplate,
		)
	}
	msg, err := w.renderer.Render(string(job.TemplateType), templates.AccountEmailData{
		Name:      job.TemplateData[dataName],
		ActionURL: job.TemplateData[dataActionURL],
		ExpiresIn: job.TemplateData[dataExpiresIn],
	})
	if err != nil {
		return templates.Message{}, domainerror.NewEmailError(domainerror.ErrCodeInvalidTemplate, err.Error(), domainerror.ErrInvalidTemplate)
	}
	return msg, nil
}

// complete stores the attempt's outcome. It returns false when the outcome
// was not recorded, either because the store failed or because the job was
// cancelled or re-claimed while this worker held it.
func (w *Worker) complete(ctx context.Context, logger *slog.Logger, job *entity.EmailJob, leasedUntil time.Time) bool {
	ok, err := w.queue.Complete(ctx, job, leasedUntil)
	if err != nil {
		logger.Error("Failed to store email job outcome", "status", job.Status, "error", err)
		return false
	}
	if !ok {
		logger.Warn("Email job changed while leased, outcome discarded", "status", job.Status)
		return false
	}
	return true
}

func (w *Worker) recordFailure(ctx context.Context, logger *slog.Logger, job *entity.EmailJob, leasedUntil time.Time, err error) {
	job.MarkFailed(err, domainerror.IsPermanentEmailFailure(err))

	if !w.complete(ctx, logger, job, leasedUntil) {
		return
	}

	if job.Status == entity.EmailStatusFailed {
		w.metrics.ObserveEmail(string(job.TemplateType), "failed")
		logger.Warn("Email job failed permanently",
			"attempts", job.Attempts,
			"last_error", job.LastError,
		)
		return
	}

	w.metrics.ObserveEmail(string(job.TemplateType), "retry")
	logger.Info("Email job scheduled for retry",
		"attempts", job.Attempts,
		"scheduled_at", job.ScheduledAt,
	)
}
