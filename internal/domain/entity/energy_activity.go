// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityStatus represents the lifecycle state of an energy activity.
type ActivityStatus string

const (
	ActivityStatusCompleted  ActivityStatus = "completed"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusScheduled  ActivityStatus = "scheduled"
	ActivityStatusCancelled  ActivityStatus = "cancelled"
)

// EnergyActivity is a single optimization event recorded for an account
// (battery discharge, demand response, grid integration...).
type EnergyActivity struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	Type         string
	Status       ActivityStatus
	EnergyKWh    decimal.Decimal
	CostSavings  decimal.Decimal // USD
	CarbonOffset decimal.Decimal // metric tons
	OccurredAt   time.Time
	CreatedAt    time.Time
}

// NewEnergyActivity creates a new EnergyActivity.
func NewEnergyActivity(
	accountID uuid.UUID,
	activityType string,
	status ActivityStatus,
	energyKWh decimal.Decimal,
	costSavings decimal.Decimal,
	carbonOffset decimal.Decimal,
	occurredAt time.Time,
) *EnergyActivity {
	return &EnergyActivity{
		ID:           uuid.New(),
		AccountID:    accountID,
		Type:         activityType,
		Status:       status,
		EnergyKWh:    energyKWh,
		CostSavings:  costSavings,
		CarbonOffset: carbonOffset,
		OccurredAt:   occurredAt.UTC(),
		CreatedAt:    time.Now().UTC(),
	}
}

// IsValid checks if the activity status is one of the known values.
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusCompleted, ActivityStatusInProgress, ActivityStatusScheduled, ActivityStatusCancelled:
		return true
	}
	return false
}
