// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethergyx/backend/internal/domain/entity"
)

// EnergyTotals aggregates activity quantities over a period.
type EnergyTotals struct {
	EnergyKWh    decimal.Decimal
	CostSavings  decimal.Decimal
	CarbonOffset decimal.Decimal
}

// EnergyActivityRepository defines persistence for dashboard activity data.
type EnergyActivityRepository interface {
	// Create records an activity.
	Create(ctx context.Context, activity *entity.EnergyActivity) error

	// ListRecent returns the account's latest activities, newest first.
	ListRecent(ctx context.Context, accountID uuid.UUID, limit int) ([]*entity.EnergyActivity, error)

	// SumSince totals completed activities that occurred at or after since.
	SumSince(ctx context.Context, accountID uuid.UUID, since time.Time) (*EnergyTotals, error)
}
