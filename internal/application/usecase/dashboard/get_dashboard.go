// Package dashboard contains dashboard-related use cases.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

const (
	// DefaultPeriodDays is the window the dashboard summarizes when none is given.
	DefaultPeriodDays = 30
	maxPeriodDays     = 365
	recentActivities  = 5

	// DefaultStoreTimeout bounds the dashboard's store calls when none is configured.
	DefaultStoreTimeout = 3 * time.Second
)

// GetDashboardInput represents the input for loading the dashboard.
type GetDashboardInput struct {
	AccountID  uuid.UUID
	PeriodDays int
	Now        time.Time
}

// GetDashboardOutput is the protected landing page of a signed-in account.
type GetDashboardOutput struct {
	WelcomeName      string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	EnergyUsageKWh   decimal.Decimal
	CostSavings      decimal.Decimal
	CarbonOffset     decimal.Decimal
	RecentActivities []*entity.EnergyActivity
}

// GetDashboardUseCase summarizes an account's recent energy activity.
type GetDashboardUseCase struct {
	accountRepo  adapter.AccountRepository
	activityRepo adapter.EnergyActivityRepository
	storeTimeout time.Duration
}

// NewGetDashboardUseCase creates a new GetDashboardUseCase instance.
func NewGetDashboardUseCase(
	accountRepo adapter.AccountRepository,
	activityRepo adapter.EnergyActivityRepository,
	storeTimeout time.Duration,
) *GetDashboardUseCase {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	return &GetDashboardUseCase{
		accountRepo:  accountRepo,
		activityRepo: activityRepo,
		storeTimeout: storeTimeout,
	}
}

// Execute builds the dashboard for the given account.
func (uc *GetDashboardUseCase) Execute(ctx context.Context, input GetDashboardInput) (*GetDashboardOutput, error) {
	days := input.PeriodDays
	if days == 0 {
		days = DefaultPeriodDays
	}
	if days < 1 || days > maxPeriodDays {
		return nil, domainerror.NewDashboardValidationError(domainerror.ErrInvalidPeriod)
	}

	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}
	end := now.UTC()
	start := end.AddDate(0, 0, -days)

	storeCtx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	account, err := uc.accountRepo.FindByID(storeCtx, input.AccountID)
	if err != nil {
		if errors.Is(err, domainerror.ErrAccountNotFound) {
			return nil, domainerror.NewDashboardError(domainerror.ErrCodeDashboardNoAccount, "account not found", err)
		}
		return nil, storeError("failed to load account", err)
	}

	totals, err := uc.activityRepo.SumSince(storeCtx, input.AccountID, start)
	if err != nil {
		return nil, storeError("failed to sum activities", err)
	}

	recent, err := uc.activityRepo.ListRecent(storeCtx, input.AccountID, recentActivities)
	if err != nil {
		return nil, storeError("failed to list activities", err)
	}

	return &GetDashboardOutput{
		WelcomeName:      account.Name,
		PeriodStart:      start,
		PeriodEnd:        end,
		EnergyUsageKWh:   totals.EnergyKWh.Round(2),
		CostSavings:      totals.CostSavings.Round(2),
		CarbonOffset:     totals.CarbonOffset.Round(3),
		RecentActivities: recent,
	}, nil
}

// storeError reports deadline and connectivity failures as StoreUnavailable.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domainerror.ErrStoreUnavailable) {
		return domainerror.NewStoreUnavailableError(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
