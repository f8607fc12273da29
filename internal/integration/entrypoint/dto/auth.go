// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/ethergyx/backend/internal/application/adapter"
	"github.com/ethergyx/backend/internal/domain/entity"
	"github.com/ethergyx/backend/internal/domain/valueobject"
)

// RegisterRequest represents the request body for account registration.
// Field validation is left to the registration use case so every failure
// carries its own error code.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest represents the request body for logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest represents the request body for forgot password.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// ResetPasswordRequest represents the request body for password reset.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// PasswordStrengthRequest represents the request body for password strength feedback.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// DeleteAccountRequest represents the request body for account deletion.
type DeleteAccountRequest struct {
	Password     string `json:"password" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

// AuthResponse represents the response for login.
type AuthResponse struct {
	AccessToken      string          `json:"access_token"`
	RefreshToken     string          `json:"refresh_token"`
	AccessExpiresAt  time.Time       `json:"access_expires_at"`
	RefreshExpiresAt time.Time       `json:"refresh_expires_at"`
	Account          AccountResponse `json:"account"`
}

// TokenResponse represents the response for token refresh.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// RegisterResponse represents the response for a successful registration.
type RegisterResponse struct {
	Message string          `json:"message"`
	Account AccountResponse `json:"account"`
}

// MessageResponse represents a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountResponse represents the account data in API responses.
// The password hash is never part of it.
type AccountResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// PasswordStrengthResponse is the server-side evaluation the UI renders as is.
type PasswordStrengthResponse struct {
	Requirements  valueobject.PasswordRequirements `json:"requirements"`
	TypesMet      int                              `json:"types_met"`
	StrengthScore int                              `json:"strength_score"`
	Label         string                           `json:"label"`
	Valid         bool                             `json:"valid"`
	Missing       []string                         `json:"missing"`
	Message       string                           `json:"message,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// ToAccountResponse converts a domain Account entity to an AccountResponse DTO.
func ToAccountResponse(account *entity.Account) AccountResponse {
	return AccountResponse{
		ID:             account.ID.String(),
		Name:           account.Name,
		Email:          account.Email,
		EmailConfirmed: account.IsEmailConfirmed(),
		CreatedAt:      account.CreatedAt,
	}
}

// ToAuthResponse converts a token pair and account to an AuthResponse DTO.
func ToAuthResponse(tokens *adapter.TokenPair, account *entity.Account) AuthResponse {
	return AuthResponse{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
		Account:          ToAccountResponse(account),
	}
}

// ToTokenResponse converts a token pair to a TokenResponse DTO.
func ToTokenResponse(tokens *adapter.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		AccessExpiresAt:  tokens.AccessExpiresAt,
		RefreshExpiresAt: tokens.RefreshExpiresAt,
	}
}

// ToPasswordStrengthResponse converts a password evaluation to its DTO.
func ToPasswordStrengthResponse(evaluation valueobject.PasswordEvaluation) PasswordStrengthResponse {
	return PasswordStrengthResponse{
		Requirements:  evaluation.Requirements,
		TypesMet:      evaluation.TypesMet,
		StrengthScore: evaluation.StrengthScore,
		Label:         string(evaluation.Label()),
		Valid:         evaluation.Valid,
		Missing:       evaluation.Missing(),
		Message:       evaluation.Message(),
	}
}
