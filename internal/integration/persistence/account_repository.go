// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/integration/persistence/model"
)

// accountRepository implements the adapter.AccountRepository interface on gorm.
// Uniqueness of the email is delegated to the idx_accounts_email unique index.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance.
func NewAccountRepository(db *gorm.DB) adapter.AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// Insert creates a new account in the database.
func (r *accountRepository) Insert(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).Create(model.AccountModelFromEntity(account))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domainerror.ErrAccountAlreadyExists
		}
		return classify("insert account", result.Error)
	}
	return nil
}

// FindByID retrieves an account by its ID.
func (r *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail retrieves an account by its normalized email address.
func (r *accountRepository) FindByEmail(ctx context.Context, normalizedEmail string) (*entity.Account, error) {
	return r.findOne(ctx, "email = ?", normalizedEmail)
}

func (r *accountRepository) findOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	var accountModel model.AccountModel
	result := r.db.WithContext(ctx).Where(query, arg).First(&accountModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrAccountNotFound
		}
		return nil, classify("find account", result.Error)
	}
	return accountModel.ToEntity(), nil
}

// UpdatePasswordHash replaces the stored credential of an account.
func (r *accountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, map[string]any{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	})
}

// MarkEmailConfirmed records the confirmation time once; later calls keep the first one.
func (r *accountRepository) MarkEmailConfirmed(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ? AND email_confirmed_at IS NULL", id).
		Updates(map[string]any{
			"email_confirmed_at": sql.NullTime{Time: now, Valid: true},
			"updated_at":         now,
		})
	if result.Error != nil {
		return classify("confirm account email", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes an account from the database.
func (r *accountRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.AccountModel{}, "id = ?", id)
	if result.Error != nil {
		return classify("delete account", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrAccountNotFound
	}
	return nil
}

func (r *accountRepository) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	result := r.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return classify("update account", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainerror.ErrAccountNotFound
	}
	return nil
}
