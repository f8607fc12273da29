// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"
)

// SendEmailInput represents the input for sending an email.
type SendEmailInput struct {
	To      string
	Name    string
	Subject string
	HTML    string
	Text    string
}

// SendEmailResult represents the result of sending an email.
type SendEmailResult struct {
	ProviderID string
}

// EmailSender defines the interface for sending emails via an external provider.
type EmailSender interface {
	// Send sends an email via the email provider (e.g., Resend).
	Send(ctx context.Context, input SendEmailInput) (*SendEmailResult, error)
}

// EmailService defines the interface for queueing account emails.
type EmailService interface {
	// QueueEmailConfirmation queues the confirmation email sent after registration.
	QueueEmailConfirmation(ctx context.Context, input QueueAccountEmailInput) error

	// QueuePasswordResetEmail queues a password reset email.
	QueuePasswordResetEmail(ctx context.Context, input QueueAccountEmailInput) error

	// CancelPendingEmails drops every undelivered email of an account.
	CancelPendingEmails(ctx context.Context, accountID uuid.UUID) error
}

// QueueAccountEmailInput represents the input for queueing an account email.
type QueueAccountEmailInput struct {
	AccountID    uuid.UUID
	AccountEmail string
	AccountName  string
	ActionURL    string
	ExpiresIn    string
}
