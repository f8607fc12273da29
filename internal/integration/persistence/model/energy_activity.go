// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ethergyx/backend/internal/domain/entity"
)

// EnergyActivityModel represents the energy_activities table in the database.
type EnergyActivityModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_activity_account_occurred,priority:1"`
	Type         string          `gorm:"type:varchar(100);not null"`
	Status       string          `gorm:"type:varchar(20);not null;default:'completed'"`
	EnergyKWh    decimal.Decimal `gorm:"column:energy_kwh;type:decimal(14,3);not null;default:0"`
	CostSavings  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CarbonOffset decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0"`
	OccurredAt   time.Time       `gorm:"not null;index:idx_activity_account_occurred,priority:2"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for the EnergyActivityModel.
func (EnergyActivityModel) TableName() string {
	return "energy_activities"
}

// ToEntity converts an EnergyActivityModel to a domain EnergyActivity entity.
func (m *EnergyActivityModel) ToEntity() *entity.EnergyActivity {
	return &entity.EnergyActivity{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Type:         m.Type,
		Status:       entity.ActivityStatus(m.Status),
		EnergyKWh:    m.EnergyKWh,
		CostSavings:  m.CostSavings,
		CarbonOffset: m.CarbonOffset,
		OccurredAt:   m.OccurredAt.UTC(),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

// EnergyActivityModelFromEntity creates an EnergyActivityModel from a domain entity.
func EnergyActivityModelFromEntity(a *entity.EnergyActivity) *EnergyActivityModel {
	return &EnergyActivityModel{
		ID:           a.ID,
		AccountID:    a.AccountID,
		Type:         a.Type,
		Status:       string(a.Status),
		EnergyKWh:    a.EnergyKWh,
		CostSavings:  a.CostSavings,
		CarbonOffset: a.CarbonOffset,
		OccurredAt:   a.OccurredAt,
		CreatedAt:    a.CreatedAt,
	}
}
