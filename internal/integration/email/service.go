// Package email provides email sending functionality.
package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
)

// Template data keys shared by the queue producer and the worker.
const (
	dataName      = "name"
	dataActionURL = "action_url"
	dataExpiresIn = "expires_in"
)

var subjects = map[entity.EmailTemplateType]string{
	entity.TemplateEmailConfirmation: "Confirm your EthergyX account",
	entity.TemplatePasswordReset:     "Reset your EthergyX password",
}

// Service writes account emails to the outbox. Delivery happens later in Worker.
type Service struct {
	queue adapter.EmailQueueRepository
}

// NewService creates a new email service.
func NewService(queue adapter.EmailQueueRepository) *Service {
	return &Service{queue: queue}
}

// QueueEmailConfirmation queues the post-registration confirmation email.
func (s *Service) QueueEmailConfirmation(ctx context.Context, input adapter.QueueAccountEmailInput) error {
	return s.enqueue(ctx, entity.TemplateEmailConfirmation, input)
}

// QueuePasswordResetEmail queues a password reset email.
func (s *Service) QueuePasswordResetEmail(ctx context.Context, input adapter.QueueAccountEmailInput) error {
	return s.enqueue(ctx, entity.TemplatePasswordReset, input)
}

// CancelPendingEmails drops the undelivered emails of a deleted account so
// no link is mailed for an account that no longer exists.
func (s *Service) CancelPendingEmails(ctx context.Context, accountID uuid.UUID) error {
	cancelled, err := s.queue.CancelPending(ctx, accountID)
	if err != nil {
		return err
	}
	if cancelled > 0 {
		slog.Info("Cancelled pending account emails", "accountID", accountID, "count", cancelled)
	}
	return nil
}

func (s *Service) enqueue(ctx context.Context, template entity.EmailTemplateType, input adapter.QueueAccountEmailInput) error {
	job := entity.NewEmailJob(
		input.AccountID,
		template,
		input.AccountEmail,
		input.AccountName,
		subjects[template],
		map[string]string{
			dataName:      input.AccountName,
			dataActionURL: input.ActionURL,
			dataExpiresIn: input.ExpiresIn,
		},
	)
	return s.queue.Enqueue(ctx, job)
}

var _ adapter.EmailService = (*Service)(nil)
