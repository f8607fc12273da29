// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// EmailStatus represents the status of an email job in the queue.
type EmailStatus string

const (
	EmailStatusPending    EmailStatus = "pending"
	EmailStatusProcessing EmailStatus = "processing"
	EmailStatusSent       EmailStatus = "sent"
	EmailStatusFailed     EmailStatus = "failed"
	EmailStatusCancelled  EmailStatus = "cancelled"
)

// EmailTemplateType represents the type of email template.
type EmailTemplateType string

const (
	TemplateEmailConfirmation EmailTemplateType = "email_confirmation"
	TemplatePasswordReset     EmailTemplateType = "password_reset"
)

const defaultEmailMaxAttempts = 3

// retryDelays is indexed by the number of attempts already made.
var retryDelays = []time.Duration{0, 1 * time.Minute, 5 * time.Minute}

// EmailJob is an outbox entry for an account email. While a job is
// processing, ScheduledAt holds the end of the worker's lease.
type EmailJob struct {
	ID             uuid.UUID
	AccountID      uuid.UUID
	TemplateType   EmailTemplateType
	RecipientEmail string
	RecipientName  string
	Subject        string
	TemplateData   map[string]string
	Status         EmailStatus
	Attempts       int
	MaxAttempts    int
	LastError      string
	ProviderID     string
	CreatedAt      time.Time
	ScheduledAt    time.Time
	ProcessedAt    *time.Time
}

// NewEmailJob creates a pending EmailJob scheduled for immediate delivery.
func NewEmailJob(
	accountID uuid.UUID,
	templateType EmailTemplateType,
	recipientEmail, recipientName, subject string,
	data map[string]string,
) *EmailJob {
	now := time.Now().UTC()
	if data == nil {
		data = map[string]string{}
	}
	return &EmailJob{
		ID:             uuid.New(),
		AccountID:      accountID,
		TemplateType:   templateType,
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		Subject:        subject,
		TemplateData:   data,
		Status:         EmailStatusPending,
		MaxAttempts:    defaultEmailMaxAttempts,
		CreatedAt:      now,
		ScheduledAt:    now,
	}
}

// Claim leases the job to a worker until now+lease. The lease end is kept at
// microsecond precision so it compares equal after a database round trip.
func (e *EmailJob) Claim(now time.Time, lease time.Duration) {
	e.Status = EmailStatusProcessing
	e.ScheduledAt = now.UTC().Add(lease).Truncate(time.Microsecond)
}

// Cancel stops an undelivered job. Delivered and failed jobs are left as is.
func (e *EmailJob) Cancel() bool {
	if e.Status != EmailStatusPending && e.Status != EmailStatusProcessing {
		return false
	}
	e.Status = EmailStatusCancelled
	now := time.Now().UTC()
	e.ProcessedAt = &now
	return true
}

// MarkSent marks the email job as delivered to the provider.
func (e *EmailJob) MarkSent(providerID string) {
	e.Status = EmailStatusSent
	e.ProviderID = providerID
	now := time.Now().UTC()
	e.ProcessedAt = &now
}

// MarkFailed records a failed attempt. Permanent failures and exhausted jobs
// become failed; anything else goes back to pending with a backoff.
func (e *EmailJob) MarkFailed(err error, permanent bool) {
	e.Attempts++
	e.LastError = err.Error()

	if permanent || e.Attempts >= e.MaxAttempts {
		e.Status = EmailStatusFailed
		now := time.Now().UTC()
		e.ProcessedAt = &now
		return
	}

	e.Status = EmailStatusPending
	e.ScheduledAt = time.Now().UTC().Add(e.nextRetryDelay())
}

func (e *EmailJob) nextRetryDelay() time.Duration {
	if e.Attempts < len(retryDelays) {
		return retryDelays[e.Attempts]
	}
	return retryDelays[len(retryDelays)-1]
}

// IsReadyToProcess reports whether the job is due: pending and scheduled, or
// processing with an expired lease.
func (e *EmailJob) IsReadyToProcess(now time.Time) bool {
	if e.Status != EmailStatusPending && e.Status != EmailStatusProcessing {
		return false
	}
	return !now.Before(e.ScheduledAt)
}
