// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
	"github.com/ethergyx/backend/internal/domain/valueobject"
)

// RegisterAccountInput represents the input for account registration.
type RegisterAccountInput struct {
	Name     string
	Email    string
	Password string
}

// RegisterAccountOutput represents the output of account registration.
type RegisterAccountOutput struct {
	Account *entity.Account
}

// RegistrationOptions configures the non-critical parts of registration.
type RegistrationOptions struct {
	StoreTimeout    time.Duration
	AppBaseURL      string
	ConfirmationTTL time.Duration
}

// RegisterAccountUseCase creates accounts. At most one account exists per
// normalized email; the store's unique constraint settles concurrent attempts.
type RegisterAccountUseCase struct {
	accountRepo        adapter.AccountRepository
	passwordService    adapter.PasswordService
	confirmationTokens adapter.OneTimeTokenService
	emailService       adapter.EmailService
	metrics            adapter.AuthMetrics
	opts               RegistrationOptions
}

// NewRegisterAccountUseCase creates a new RegisterAccountUseCase instance.
// confirmationTokens and emailService may be nil, which disables the confirmation email.
func NewRegisterAccountUseCase(
	accountRepo adapter.AccountRepository,
	passwordService adapter.PasswordService,
	confirmationTokens adapter.OneTimeTokenService,
	emailService adapter.EmailService,
	metrics adapter.AuthMetrics,
	opts RegistrationOptions,
) *RegisterAccountUseCase {
	if metrics == nil {
		metrics = adapter.NopAuthMetrics{}
	}
	if opts.ConfirmationTTL <= 0 {
		opts.ConfirmationTTL = 24 * time.Hour
	}
	return &RegisterAccountUseCase{
		accountRepo:        accountRepo,
		passwordService:    passwordService,
		confirmationTokens: confirmationTokens,
		emailService:       emailService,
		metrics:            metrics,
		opts:               opts,
	}
}

// Execute performs the account registration.
func (uc *RegisterAccountUseCase) Execute(ctx context.Context, input RegisterAccountInput) (*RegisterAccountOutput, error) {
	account, err := uc.register(ctx, input)
	uc.metrics.ObserveRegistration(registrationOutcome(err))
	if err != nil {
		return nil, err
	}

	uc.queueConfirmation(ctx, account)

	return &RegisterAccountOutput{Account: account}, nil
}

func (uc *RegisterAccountUseCase) register(ctx context.Context, input RegisterAccountInput) (*entity.Account, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeMissingFields,
			"please fill in all fields",
			domainerror.ErrMissingField,
		).WithDetails(missing...)
	}

	var tooLong []string
	if utf8.RuneCountInString(name) > entity.MaxAccountNameLength {
		tooLong = append(tooLong, "name")
	}
	if utf8.RuneCountInString(email) > entity.MaxAccountEmailLength {
		tooLong = append(tooLong, "email")
	}
	if len(tooLong) > 0 {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeFieldTooLong,
			fmt.Sprintf("name must be at most %d characters and email at most %d",
				entity.MaxAccountNameLength, entity.MaxAccountEmailLength),
			domainerror.ErrFieldTooLong,
		).WithDetails(tooLong...)
	}

	normalizedEmail := valueobject.NormalizeEmail(email)
	if !valueobject.IsValidEmailFormat(normalizedEmail) {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidEmail,
			"invalid email format",
			domainerror.ErrInvalidEmail,
		)
	}

	evaluation := valueobject.EvaluatePassword(input.Password)
	if !evaluation.Valid {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeWeakPassword,
			evaluation.Message(),
			domainerror.ErrWeakPassword,
		).WithDetails(evaluation.Unmet()...)
	}

	storeCtx, cancel := withStoreTimeout(ctx, uc.opts.StoreTimeout)
	defer cancel()

	// Fast path; the unique constraint on Insert is what actually guarantees uniqueness.
	_, err := uc.accountRepo.FindByEmail(storeCtx, normalizedEmail)
	switch {
	case err == nil:
		return nil, duplicateAccountError()
	case !errors.Is(err, domainerror.ErrAccountNotFound):
		return nil, storeError("failed to look up account", err)
	}

	passwordHash, err := uc.passwordService.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := entity.NewAccount(name, normalizedEmail, passwordHash)

	if err := uc.accountRepo.Insert(storeCtx, account); err != nil {
		if errors.Is(err, domainerror.ErrAccountAlreadyExists) {
			return nil, duplicateAccountError()
		}
		return nil, storeError("failed to create account", err)
	}

	slog.Info("Account registered", "accountID", account.ID, "email", account.Email)
	return account, nil
}

// queueConfirmation issues a confirmation token and queues the email.
// Failures are logged only: the account already exists.
func (uc *RegisterAccountUseCase) queueConfirmation(ctx context.Context, account *entity.Account) {
	if uc.confirmationTokens == nil || uc.emailService == nil {
		return
	}

	token, err := uc.confirmationTokens.Generate(ctx, adapter.PurposeEmailConfirmation, account.ID, account.Email)
	if err != nil {
		slog.Error("Failed to generate confirmation token", "error", err, "accountID", account.ID)
		return
	}

	err = uc.emailService.QueueEmailConfirmation(ctx, adapter.QueueAccountEmailInput{
		AccountID:    account.ID,
		AccountEmail: account.Email,
		AccountName:  account.Name,
		ActionURL:    fmt.Sprintf("%s/confirm-email?token=%s", uc.opts.AppBaseURL, token.Token),
		ExpiresIn:    humanizeTTL(uc.opts.ConfirmationTTL),
	})
	if err != nil {
		slog.Error("Failed to queue confirmation email", "error", err, "accountID", account.ID)
	}
}

func duplicateAccountError() *domainerror.AuthError {
	return domainerror.NewAuthError(
		domainerror.ErrCodeEmailExists,
		"an account with this email already exists",
		domainerror.ErrEmailAlreadyExists,
	)
}

func registrationOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domainerror.ErrMissingField):
		return "missing_field"
	case errors.Is(err, domainerror.ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, domainerror.ErrWeakPassword):
		return "weak_password"
	case errors.Is(err, domainerror.ErrEmailAlreadyExists):
		return "duplicate"
	case errors.Is(err, domainerror.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
