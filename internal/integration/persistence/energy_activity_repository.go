// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

// energyActivityRepository implements the adapter.EnergyActivityRepository interface.
type energyActivityRepository struct {
	db *gorm.DB
}

// NewEnergyActivityRepository creates a new energy activity repository instance.
func NewEnergyActivityRepository(db *gorm.DB) adapter.EnergyActivityRepository {
	return &energyActivityRepository{
		db: db,
	}
}

// Create records an activity.
func (r *energyActivityRepository) Create(ctx context.Context, activity *entity.EnergyActivity) error {
	if err := r.db.WithContext(ctx).Create(model.EnergyActivityModelFromEntity(activity)).Error; err != nil {
		return classify("create energy activity", err)
	}
	return nil
}

// ListRecent returns the account's latest activities, newest first.
func (r *energyActivityRepository) ListRecent(ctx context.Context, accountID uuid.UUID, limit int) ([]*entity.EnergyActivity, error) {
	var models []model.EnergyActivityModel
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&models)
	if result.Error != nil {
		return nil, classify("list energy activities", result.Error)
	}

	activities := make([]*entity.EnergyActivity, len(models))
	for i := range models {
		activities[i] = models[i].ToEntity()
	}
	return activities, nil
}

// SumSince totals completed activities that occurred at or after since.
// Rows are summed as decimals in Go so SQLite's floating point SUM never leaks into totals.
func (r *energyActivityRepository) SumSince(ctx context.Context, accountID uuid.UUID, since time.Time) (*adapter.EnergyTotals, error) {
	var models []model.EnergyActivityModel
	result := r.db.WithContext(ctx).
		Select("energy_kwh", "cost_savings", "carbon_offset").
		Where("account_id = ? AND status = ? AND occurred_at >= ?", accountID, entity.ActivityStatusCompleted, since.UTC()).
		Find(&models)
	if result.Error != nil {
		return nil, classify("sum energy activities", result.Error)
	}

	totals := &adapter.EnergyTotals{}
	for _, m := range models {
		totals.EnergyKWh = totals.EnergyKWh.Add(m.EnergyKWh)
		totals.CostSavings = totals.CostSavings.Add(m.CostSavings)
		totals.CarbonOffset = totals.CarbonOffset.Add(m.CarbonOffset)
	}
	return totals, nil
}
