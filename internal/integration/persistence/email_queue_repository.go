// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

var claimableStatuses = []string{
	string(entity.EmailStatusPending),
	string(entity.EmailStatusProcessing),
}

// emailQueueRepository implements the adapter.EmailQueueRepository interface.
type emailQueueRepository struct {
	db *gorm.DB
}

// NewEmailQueueRepository creates a new email queue repository instance.
func NewEmailQueueRepository(db *gorm.DB) adapter.EmailQueueRepository {
	return &emailQueueRepository{db: db}
}

// Enqueue stores a new pending job.
func (r *emailQueueRepository) Enqueue(ctx context.Context, job *entity.EmailJob) error {
	if err := r.db.WithContext(ctx).Create(model.EmailQueueModelFromEntity(job)).Error; err != nil {
		return domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, "failed to enqueue email job", err)
	}
	return nil
}

// ClaimDue selects due jobs and leases each one with a conditional update.
// A row another worker claimed first no longer matches the condition and is
// skipped, so concurrent workers never send the same job twice within a lease.
func (r *emailQueueRepository) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]*entity.EmailJob, error) {
	now = now.UTC()
	var claimed []*entity.EmailJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []model.EmailQueueModel
		err := tx.
			Where("status IN ? AND scheduled_at <= ?", claimableStatuses, now).
			Order("scheduled_at ASC").
			Limit(limit).
			Find(&candidates).Error
		if err != nil {
			return err
		}

		for i := range candidates {
			job := candidates[i].ToEntity()
			job.Claim(now, lease)

			result := tx.Model(&model.EmailQueueModel{}).
				Where("id = ? AND status IN ? AND scheduled_at <= ?", job.ID, claimableStatuses, now).
				Updates(map[string]any{
					"status":       string(job.Status),
					"scheduled_at": job.ScheduledAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 1 {
				claimed = append(claimed, job)
			}
		}
		return nil
	})
	if err != nil {
		return nil, domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, "failed to claim email jobs", err)
	}
	return claimed, nil
}

// Complete writes back a delivery outcome guarded by the worker's lease. A
// cancelled or re-claimed row no longer matches and is left untouched.
func (r *emailQueueRepository) Complete(ctx context.Context, job *entity.EmailJob, leasedUntil time.Time) (bool, error) {
	row := model.EmailQueueModelFromEntity(job)
	result := r.db.WithContext(ctx).
		Model(&model.EmailQueueModel{}).
		Where("id = ? AND status = ? AND scheduled_at = ?", job.ID, string(entity.EmailStatusProcessing), leasedUntil.UTC()).
		Updates(map[string]any{
			"status":       row.Status,
			"attempts":     row.Attempts,
			"last_error":   row.LastError,
			"provider_id":  row.ProviderID,
			"scheduled_at": row.ScheduledAt,
			"processed_at": row.ProcessedAt,
		})
	if result.Error != nil {
		return false, domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, "failed to complete email job", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// ListByRecipient returns the jobs addressed to an email, newest first.
func (r *emailQueueRepository) ListByRecipient(ctx context.Context, email string) ([]*entity.EmailJob, error) {
	var models []model.EmailQueueModel
	err := r.db.WithContext(ctx).
		Where("recipient_email = ?", email).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]*entity.EmailJob, len(models))
	for i := range models {
		jobs[i] = models[i].ToEntity()
	}
	return jobs, nil
}

// CancelPending cancels every undelivered job of an account.
func (r *emailQueueRepository) CancelPending(ctx context.Context, accountID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.EmailQueueModel{}).
		Where("account_id = ? AND status IN ?", accountID, claimableStatuses).
		Updates(map[string]any{
			"status":       string(entity.EmailStatusCancelled),
			"processed_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return 0, domainerror.NewEmailError(domainerror.ErrCodeEmailQueueFailed, "failed to cancel email jobs", result.Error)
	}
	return result.RowsAffected, nil
}
