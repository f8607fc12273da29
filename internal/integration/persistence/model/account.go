// Package model defines database models for persistence layer.
package model

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/ethergyx/backend/internal/domain/entity"
)

// AccountModel represents the accounts table in the database.
// Emails are stored normalized, so the unique index is case-insensitive in effect.
type AccountModel struct {
	ID               uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Name             string       `gorm:"type:varchar(100);not null"`
	Email            string       `gorm:"type:varchar(255);uniqueIndex:idx_accounts_email;not null"`
	PasswordHash     string       `gorm:"type:varchar(255);not null"`
	EmailConfirmedAt sql.NullTime
	CreatedAt        time.Time    `gorm:"not null"`
	UpdatedAt        time.Time    `gorm:"not null"`
}

// TableName returns the table name for the AccountModel.
func (AccountModel) TableName() string {
	return "accounts"
}

// ToEntity converts an AccountModel to a domain Account entity.
func (m *AccountModel) ToEntity() *entity.Account {
	var confirmedAt *time.Time
	if m.EmailConfirmedAt.Valid {
		t := m.EmailConfirmedAt.Time.UTC()
		confirmedAt = &t
	}
	return &entity.Account{
		ID:               m.ID,
		Name:             m.Name,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		EmailConfirmedAt: confirmedAt,
		CreatedAt:        m.CreatedAt.UTC(),
		UpdatedAt:        m.UpdatedAt.UTC(),
	}
}

// AccountModelFromEntity creates an AccountModel from a domain Account entity.
func AccountModelFromEntity(account *entity.Account) *AccountModel {
	var confirmedAt sql.NullTime
	if account.EmailConfirmedAt != nil {
		confirmedAt = sql.NullTime{Time: *account.EmailConfirmedAt, Valid: true}
	}
	return &AccountModel{
		ID:               account.ID,
		Name:             account.Name,
		Email:            account.Email,
		PasswordHash:     account.PasswordHash,
		EmailConfirmedAt: confirmedAt,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}
}
