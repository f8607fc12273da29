// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/domain/entity"
)

// EmailQueueRepository is the outbox of account emails drained by the worker.
type EmailQueueRepository interface {
	// Enqueue stores a new pending job.
	Enqueue(ctx context.Context, job *entity.EmailJob) error

	// ClaimDue leases up to limit due jobs to the caller. A claimed job stays
	// invisible to other workers until now+lease.
	ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.EmailJob, error)

	// Complete writes back the outcome of a delivery attempt, but only while the
	// job is still processing under the lease that ends at leasedUntil. It
	// reports false when the job was cancelled or re-claimed in the meantime.
	Complete(ctx context.Context, job *entity.EmailJob, leasedUntil time.Time) (bool, error)

	// ListByRecipient returns the jobs addressed to an email, newest first.
	ListByRecipient(ctx context.Context, email string) ([]*entity.EmailJob, error)

	// CancelPending cancels every undelivered job of an account and reports how many.
	CancelPending(ctx context.Context, accountID uuid.UUID) (int64, error)
}
