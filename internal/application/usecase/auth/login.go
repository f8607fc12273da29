// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	domainerror "github.com/ethergyx/backend/internal/domain/error"
)

// LoginInput represents the input for account login.
type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

// LoginOutput represents the output of account login.
type LoginOutput struct {
	Tokens  *adapter.TokenPair
	Account *entity.Account
}

// LoginUseCase handles login: credential check, optional confirmation gate and session tokens.
type LoginUseCase struct {
	verifier                 *VerifyCredentialsUseCase
	tokenService             adapter.TokenService
	metrics                  adapter.AuthMetrics
	requireEmailConfirmation bool
}

// NewLoginUseCase creates a new LoginUseCase instance.
func NewLoginUseCase(
	verifier *VerifyCredentialsUseCase,
	tokenService adapter.TokenService,
	metrics adapter.AuthMetrics,
	requireEmailConfirmation bool,
) *LoginUseCase {
	if metrics == nil {
		metrics = adapter.NopAuthMetrics{}
	}
	return &LoginUseCase{
		verifier:                 verifier,
		tokenService:             tokenService,
		metrics:                  metrics,
		requireEmailConfirmation: requireEmailConfirmation,
	}
}

// Execute performs the login.
func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	output, err := uc.login(ctx, input)
	uc.metrics.ObserveLogin(loginOutcome(err))
	return output, err
}

func (uc *LoginUseCase) login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	account, err := uc.verifier.Execute(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	// Checked after the password so the response reveals nothing to someone without it.
	if uc.requireEmailConfirmation && !account.IsEmailConfirmed() {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeEmailNotConfirmed,
			"please confirm your email address before signing in",
			domainerror.ErrEmailNotConfirmed,
		)
	}

	tokens, err := uc.tokenService.GenerateTokenPair(ctx, account.ID, account.Email, input.RememberMe)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &LoginOutput{
		Tokens:  tokens,
		Account: account,
	}, nil
}

func loginOutcome(err error) string {
	var authErr *domainerror.AuthError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &authErr) && authErr.Code == domainerror.ErrCodeInvalidCredentials:
		if errors.Is(authErr.Reason, domainerror.ErrUnknownAccount) {
			return "unknown_account"
		}
		return "bad_password"
	case errors.Is(err, domainerror.ErrEmailNotConfirmed):
		return "email_not_confirmed"
	case errors.Is(err, domainerror.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
