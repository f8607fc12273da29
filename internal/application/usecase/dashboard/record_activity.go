// Package dashboard contains dashboard-related use cases.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// RecordActivityInput represents the input for recording an energy activity.
type RecordActivityInput struct {
	AccountID    uuid.UUID
	Type         string
	Status       entity.ActivityStatus
	EnergyKWh    decimal.Decimal
	CostSavings  decimal.Decimal
	CarbonOffset decimal.Decimal
	OccurredAt   time.Time
}

// RecordActivityUseCase stores an energy activity reported for an account.
type RecordActivityUseCase struct {
	activityRepo adapter.EnergyActivityRepository
}

// NewRecordActivityUseCase creates a new RecordActivityUseCase instance.
func NewRecordActivityUseCase(activityRepo adapter.EnergyActivityRepository) *RecordActivityUseCase {
	return &RecordActivityUseCase{
		activityRepo: activityRepo,
	}
}

// Execute validates and stores the activity.
func (uc *RecordActivityUseCase) Execute(ctx context.Context, input RecordActivityInput) (*entity.EnergyActivity, error) {
	activityType := strings.TrimSpace(input.Type)
	if activityType == "" {
		return nil, domainerror.NewDashboardValidationError(domainerror.ErrMissingActivityType)
	}

	if input.Status == "" {
		input.Status = entity.ActivityStatusCompleted
	}
	if !input.Status.IsValid() {
		return nil, domainerror.NewDashboardValidationError(domainerror.ErrInvalidActivityStatus)
	}

	if input.EnergyKWh.IsNegative() || input.CostSavings.IsNegative() || input.CarbonOffset.IsNegative() {
		return nil, domainerror.NewDashboardValidationError(domainerror.ErrNegativeQuantity)
	}

	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	activity := entity.NewEnergyActivity(
		input.AccountID,
		activityType,
		input.Status,
		input.EnergyKWh,
		input.CostSavings,
		input.CarbonOffset,
		occurredAt,
	)

	if err := uc.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return activity, nil
}
